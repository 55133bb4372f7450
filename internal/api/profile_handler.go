package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileHandler holds the profile service dependency.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// --- Request Structs ---

type UpdateProfileRequest struct {
	Name        *string         `json:"name"`
	Address     *domain.Address `json:"address"`
	AcresFarmed *float64        `json:"acresFarmed" binding:"omitempty,gte=0"`
	PhotoURL    *string         `json:"photoUrl"`
}

type SetBannedRequest struct {
	Banned bool `json:"banned"`
}

// --- Handler Methods ---

// GetMe returns the caller's own profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	user, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetProfile returns another farmer's public profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	user, err := h.profileService.Get(c.Request.Context(), targetID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe applies partial updates to the caller's profile.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.profileService.Update(c.Request.Context(), userID, service.ProfileUpdate{
		Name:        req.Name,
		Address:     req.Address,
		AcresFarmed: req.AcresFarmed,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// SetBanned bans or unbans a farmer. Admin only (enforced by RoleMiddleware
// on the route and double-checked in the service).
func (h *ProfileHandler) SetBanned(c *gin.Context) {
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	targetID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var req SetBannedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.profileService.SetBanned(c.Request.Context(), adminID, targetID, req.Banned); err != nil {
		switch {
		case errors.Is(err, service.ErrAdminOnly):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update ban state")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// RainfallYear returns the caller's monthly and yearly rainfall totals.
func (h *ProfileHandler) RainfallYear(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}

	summary, err := h.profileService.RainfallYear(c.Request.Context(), userID, year)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load rainfall records")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ClearYearRainfall wipes the caller's rainfall records for a year.
func (h *ProfileHandler) ClearYearRainfall(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}

	if err := h.profileService.ClearYearRainfall(c.Request.Context(), userID, year); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to clear rainfall records")
		return
	}

	c.Status(http.StatusNoContent)
}
