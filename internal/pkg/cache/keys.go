package cache

import "strconv"

const (
	ClubsPrefix  = "clubs:"
	EventsPrefix = "events:"

	ClubListKey  = ClubsPrefix + "list"
	EventListKey = EventsPrefix + "list"
)

func ClubKey(id int64) string {
	return ClubsPrefix + strconv.FormatInt(id, 10)
}

func EventKey(id int64) string {
	return EventsPrefix + strconv.FormatInt(id, 10)
}
