package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/services"
	"github.com/aman-gurjar-dev/TechnoHack/internal/middleware"
)

// EventController handles event related operations
type EventController struct {
	eventService services.EventService
	now          func() time.Time
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{eventService: eventService, now: time.Now}
}

// ListEvents returns every event ordered by date
// @Summary List events
// @Tags events
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Events"
// @Failure 503 {object} dto.APIResponse "Database unavailable"
// @Router /events [get]
func (ec *EventController) ListEvents(c *gin.Context) {
	events, err := ec.eventService.ListEvents(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewEventListResponse(events, ec.now()), ""))
}

// GetEvent returns one event with its derived status
// @Summary Get event by ID
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Event"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /events/{id} [get]
func (ec *EventController) GetEvent(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	event, err := ec.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewEventResponse(event, ec.now()), ""))
}

// CreateEvent handles creating a new event for a club
// @Summary Create an event
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param date formData string true "RFC 3339 or 2006-01-02T15:04"
// @Param location formData string true "Location"
// @Param type formData string true "online or offline"
// @Param club formData int true "Owning club ID"
// @Param fee formData number false "Fee, default 0"
// @Param label formData string false "Label"
// @Param image formData file false "Event image (jpeg, png or gif)"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse} "Event created"
// @Failure 400 {object} dto.APIResponse "Missing fields or invalid club"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /events [post]
func (ec *EventController) CreateEvent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.HandleAPIError(c, errNotAuthenticated)
		return
	}

	var req dto.CreateEventRequest
	if err := middleware.BindRequest(c, &req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	image, err := optionalImage(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	event, err := ec.eventService.CreateEvent(c.Request.Context(), user.ID, &req, image)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewEventResponse(event, ec.now()), "Event created successfully"))
}

// UpdateEvent handles updating an existing event
// @Summary Update an event
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param date formData string false "Date"
// @Param location formData string false "Location"
// @Param type formData string false "online or offline"
// @Param club formData int false "Owning club ID"
// @Param fee formData number false "Fee"
// @Param label formData string false "Label"
// @Param image formData file false "Replacement image"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Event updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /events/{id} [put]
func (ec *EventController) UpdateEvent(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	var req dto.UpdateEventRequest
	if err := middleware.BindRequest(c, &req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	image, err := optionalImage(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	event, err := ec.eventService.UpdateEvent(c.Request.Context(), id, &req, image)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewEventResponse(event, ec.now()), "Event updated successfully"))
}

// DeleteEvent removes an event and its registrations
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse "Event deleted"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /events/{id} [delete]
func (ec *EventController) DeleteEvent(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	if err := ec.eventService.DeleteEvent(c.Request.Context(), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Event deleted successfully"))
}

// RegisterForEvent registers the caller for an upcoming event
// @Summary Register for an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Registered"
// @Failure 400 {object} dto.APIResponse "Event in the past"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Failure 409 {object} dto.APIResponse "Already registered"
// @Router /events/{id}/register [post]
func (ec *EventController) RegisterForEvent(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.HandleAPIError(c, errNotAuthenticated)
		return
	}

	event, err := ec.eventService.RegisterForEvent(c.Request.Context(), id, user.ID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewEventResponse(event, ec.now()), "Registered for event successfully"))
}

// ListRegistrations returns who registered for an event
// @Summary List event registrations
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.RegistrationResponse} "Registrations"
// @Failure 404 {object} dto.APIResponse "Event not found"
// @Router /events/{id}/registrations [get]
func (ec *EventController) ListRegistrations(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	regs, err := ec.eventService.ListRegistrations(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewRegistrationListResponse(regs), ""))
}
