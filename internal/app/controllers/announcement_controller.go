package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/services"
	"github.com/aman-gurjar-dev/TechnoHack/internal/middleware"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/helpers"
)

// AnnouncementController handles announcement related operations
type AnnouncementController struct {
	announcementService services.AnnouncementService
}

// NewAnnouncementController creates a new AnnouncementController
func NewAnnouncementController(announcementService services.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{announcementService: announcementService}
}

// ListAnnouncements returns one page of announcements visible to the caller
// @Summary List announcements
// @Description Non-admins only see active announcements that have not expired.
// @Tags announcements
// @Produce json
// @Param status query string false "draft, active or archived (admins only)"
// @Param priority query string false "low, medium or high"
// @Param targetAudience query string false "all, students, faculty or admin"
// @Param page query int false "Page number" default(1) minimum(1)
// @Param limit query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=[]dto.AnnouncementResponse} "Announcements"
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Router /announcements [get]
func (ac *AnnouncementController) ListAnnouncements(c *gin.Context) {
	var query dto.AnnouncementQuery
	if err := middleware.BindQuery(c, &query); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	query.Page, query.Limit = helpers.ParsePaginationParams(c)

	viewer, _ := middleware.CurrentUser(c)
	items, pagination, err := ac.announcementService.ListAnnouncements(c.Request.Context(), viewer, &query)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(dto.NewAnnouncementListResponse(items), pagination))
}

// GetAnnouncement returns one announcement. Drafts are only shown to admins and the creator.
// @Summary Get announcement by ID
// @Tags announcements
// @Produce json
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementResponse} "Announcement"
// @Failure 404 {object} dto.APIResponse "Announcement not found"
// @Router /announcements/{id} [get]
func (ac *AnnouncementController) GetAnnouncement(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	viewer, _ := middleware.CurrentUser(c)
	a, err := ac.announcementService.GetAnnouncement(c.Request.Context(), viewer, id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAnnouncementResponse(a), ""))
}

// CreateAnnouncement handles creating a new announcement
// @Summary Create an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} dto.APIResponse{data=dto.AnnouncementResponse} "Announcement created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /announcements [post]
func (ac *AnnouncementController) CreateAnnouncement(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.HandleAPIError(c, errNotAuthenticated)
		return
	}

	var req dto.CreateAnnouncementRequest
	if err := middleware.BindRequest(c, &req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	a, err := ac.announcementService.CreateAnnouncement(c.Request.Context(), user, &req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewAnnouncementResponse(a), "Announcement created successfully"))
}

// UpdateAnnouncement applies a partial update
// @Summary Update an announcement
// @Description Creator or admin. Status may only move draft to active or active to archived.
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Param request body dto.UpdateAnnouncementRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementResponse} "Announcement updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Not the creator"
// @Failure 404 {object} dto.APIResponse "Announcement not found"
// @Router /announcements/{id} [put]
func (ac *AnnouncementController) UpdateAnnouncement(c *gin.Context) {
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

	var req dto.UpdateAnnouncementRequest
	if err := middleware.BindRequest(c, &req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	a, err := ac.announcementService.UpdateAnnouncement(c.Request.Context(), user, id, &req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAnnouncementResponse(a), "Announcement updated successfully"))
}

// DeleteAnnouncement removes an announcement
// @Summary Delete an announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.APIResponse "Announcement deleted"
// @Failure 403 {object} dto.APIResponse "Not the creator"
// @Failure 404 {object} dto.APIResponse "Announcement not found"
// @Router /announcements/{id} [delete]
func (ac *AnnouncementController) DeleteAnnouncement(c *gin.Context) {
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

	if err := ac.announcementService.DeleteAnnouncement(c.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Announcement deleted successfully"))
}

// ArchiveAnnouncement archives an announcement regardless of its state
// @Summary Archive an announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementResponse} "Archived"
// @Failure 404 {object} dto.APIResponse "Announcement not found"
// @Router /announcements/{id}/archive [patch]
func (ac *AnnouncementController) ArchiveAnnouncement(c *gin.Context) {
	ac.transition(c, ac.announcementService.ArchiveAnnouncement, "Announcement archived successfully")
}

// PublishAnnouncement moves a draft to active
// @Summary Publish a draft announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementResponse} "Published"
// @Failure 400 {object} dto.APIResponse "Invalid status transition"
// @Failure 404 {object} dto.APIResponse "Announcement not found"
// @Router /announcements/{id}/publish [patch]
func (ac *AnnouncementController) PublishAnnouncement(c *gin.Context) {
	ac.transition(c, ac.announcementService.PublishAnnouncement, "Announcement published successfully")
}

// ArchiveExpired runs the expiry sweep on demand
// @Summary Archive expired announcements
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ArchiveExpiredResponse} "Sweep result"
// @Router /announcements/archive-expired [post]
func (ac *AnnouncementController) ArchiveExpired(c *gin.Context) {
	n, err := ac.announcementService.ArchiveExpired(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ArchiveExpiredResponse{Archived: n}, ""))
}

func (ac *AnnouncementController) transition(c *gin.Context, op transitionFunc, message string) {
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

	a, err := op(c.Request.Context(), user, id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAnnouncementResponse(a), message))
}
