package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/services"
	"github.com/aman-gurjar-dev/TechnoHack/internal/middleware"
)

// ClubController handles club related operations
type ClubController struct {
	clubService services.ClubService
}

// NewClubController creates a new ClubController
func NewClubController(clubService services.ClubService) *ClubController {
	return &ClubController{clubService: clubService}
}

// ListClubs returns every club
// @Summary List clubs
// @Tags clubs
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.ClubResponse} "Clubs"
// @Failure 503 {object} dto.APIResponse "Database unavailable"
// @Router /clubs [get]
func (cc *ClubController) ListClubs(c *gin.Context) {
	clubs, err := cc.clubService.ListClubs(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewClubListResponse(clubs), ""))
}

// GetClub returns one club with its members and event ids
// @Summary Get club by ID
// @Tags clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse} "Club"
// @Failure 400 {object} dto.APIResponse "Invalid club ID"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Router /clubs/{id} [get]
func (cc *ClubController) GetClub(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	club, err := cc.clubService.GetClub(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewClubResponse(club), ""))
}

// CreateClub handles creating a new club
// @Summary Create a club
// @Tags clubs
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Club name"
// @Param description formData string true "Description"
// @Param category formData string true "Technical, Cultural, Sports, Academic or Other"
// @Param image formData file false "Club image (jpeg, png or gif)"
// @Success 201 {object} dto.APIResponse{data=dto.ClubResponse} "Club created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Failure 409 {object} dto.APIResponse "Club name taken"
// @Router /clubs [post]
func (cc *ClubController) CreateClub(c *gin.Context) {
	var req dto.CreateClubRequest
	if err := middleware.BindRequest(c, &req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	image, err := optionalImage(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	club, err := cc.clubService.CreateClub(c.Request.Context(), &req, image)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewClubResponse(club), "Club created successfully"))
}

// UpdateClub handles updating an existing club
// @Summary Update a club
// @Tags clubs
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Param name formData string false "Club name"
// @Param description formData string false "Description"
// @Param category formData string false "Category"
// @Param image formData file false "Replacement image"
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse} "Club updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Router /clubs/{id} [put]
func (cc *ClubController) UpdateClub(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	var req dto.UpdateClubRequest
	if err := middleware.BindRequest(c, &req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	image, err := optionalImage(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	club, err := cc.clubService.UpdateClub(c.Request.Context(), id, &req, image)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewClubResponse(club), "Club updated successfully"))
}

// DeleteClub removes a club with its events and memberships
// @Summary Delete a club
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse "Club deleted"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Router /clubs/{id} [delete]
func (cc *ClubController) DeleteClub(c *gin.Context) {
	id, err := middleware.ParseIDParam(c, "id")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	if err := cc.clubService.DeleteClub(c.Request.Context(), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Club deleted successfully"))
}

// JoinClub adds the caller to a club
// @Summary Join a club
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse} "Joined"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Failure 409 {object} dto.APIResponse "Already a member"
// @Router /clubs/{id}/join [post]
func (cc *ClubController) JoinClub(c *gin.Context) {
	cc.membership(c, cc.clubService.JoinClub, "Joined club successfully")
}

// LeaveClub removes the caller from a club
// @Summary Leave a club
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Club ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse} "Left"
// @Failure 400 {object} dto.APIResponse "Not a member"
// @Failure 404 {object} dto.APIResponse "Club not found"
// @Router /clubs/{id}/leave [post]
func (cc *ClubController) LeaveClub(c *gin.Context) {
	cc.membership(c, cc.clubService.LeaveClub, "Left club successfully")
}

func (cc *ClubController) membership(c *gin.Context, op membershipFunc, message string) {
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

	club, err := op(c.Request.Context(), id, user.ID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewClubResponse(club), message))
}
