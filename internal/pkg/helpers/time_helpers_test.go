package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "rfc3339 with offset", input: "2026-05-01T10:00:00+02:00", want: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)},
		{name: "datetime-local", input: "2026-05-01T10:30", want: time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)},
		{name: "date only", input: " 2026-05-01 ", want: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseDateTime("next tuesday")
	assert.ErrorIs(t, err, ErrUnrecognizedTime)
	_, err = ParseDateTime("")
	assert.ErrorIs(t, err, ErrUnrecognizedTime)
}
