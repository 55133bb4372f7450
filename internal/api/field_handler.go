package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/calebc9298-pixel/fencepost/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldHandler holds the field service dependency.
type FieldHandler struct {
	fieldService service.FieldService
}

// NewFieldHandler creates a new FieldHandler.
func NewFieldHandler(fieldService service.FieldService) *FieldHandler {
	return &FieldHandler{fieldService: fieldService}
}

// --- Request Structs ---

type CreateFieldRequest struct {
	Name  string  `json:"name" binding:"required"`
	Acres float64 `json:"acres" binding:"omitempty,gte=0"`
}

type RecordFieldCostRequest struct {
	Cost float64 `json:"cost" binding:"required,gt=0"`
	Year int     `json:"year" binding:"required,gte=1970"`
}

// --- Handler Methods ---

// CreateField registers a new field on the caller's account.
func (h *FieldHandler) CreateField(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	var req CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	field, err := h.fieldService.AddField(c.Request.Context(), userID, req.Name, req.Acres)
	if err != nil {
		if errors.Is(err, service.ErrFieldNameRequired) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create field")
		}
		return
	}

	c.JSON(http.StatusCreated, field)
}

// ListFields returns the caller's fields.
func (h *FieldHandler) ListFields(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	fields, err := h.fieldService.ListFields(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load fields")
		return
	}

	c.JSON(http.StatusOK, fields)
}

// DeleteField removes one of the caller's fields and its cost data.
func (h *FieldHandler) DeleteField(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	fieldID, err := primitive.ObjectIDFromHex(c.Param("fieldId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid field ID format")
		return
	}

	if err := h.fieldService.DeleteField(c.Request.Context(), userID, fieldID); err != nil {
		switch {
		case errors.Is(err, service.ErrFieldNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotFieldOwner):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete field")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// RecordCost adds an input cost to a field's yearly total.
func (h *FieldHandler) RecordCost(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	fieldID, err := primitive.ObjectIDFromHex(c.Param("fieldId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid field ID format")
		return
	}

	var req RecordFieldCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.fieldService.RecordCost(c.Request.Context(), userID, fieldID, req.Year, req.Cost); err != nil {
		switch {
		case errors.Is(err, service.ErrFieldNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotFieldOwner):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidCost):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to record cost")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// YearTotals returns the caller's per-field cost totals for a year.
func (h *FieldHandler) YearTotals(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}

	totals, err := h.fieldService.YearTotals(c.Request.Context(), userID, year)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load cost totals")
		return
	}

	c.JSON(http.StatusOK, totals)
}

// ClearYear wipes the caller's cost totals for a year across all fields.
func (h *FieldHandler) ClearYear(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}

	if err := h.fieldService.ClearYearCosts(c.Request.Context(), userID, year); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to clear cost totals")
		return
	}

	c.Status(http.StatusNoContent)
}

// yearParam parses the :year route parameter, aborting the request when it
// is not a plausible year.
func yearParam(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1970 || year > 9999 {
		abortWithError(c, http.StatusBadRequest, "Invalid year")
		return 0, false
	}
	return year, true
}
