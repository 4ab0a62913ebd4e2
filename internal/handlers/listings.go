package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GetListings returns the caller's listings, optionally filtered by
// part_id and status query parameters.
func (h *Handlers) GetListings(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var partID *uint
	if value := c.Query("part_id"); value != "" {
		parsed, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid part_id"})
			return
		}
		id := uint(parsed)
		partID = &id
	}

	results, err := h.repo.ListListings(c.Request.Context(), userID, partID, c.Query("status"))
	if err != nil {
		logrus.Errorf("Error listing listings: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch listings"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// UpdateListing applies a status/is_new transition to one listing.
// These transitions are driven by the user-facing triage flows.
func (h *Handlers) UpdateListing(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid listing ID"})
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	// Any transition past "new" clears the new flag unless the caller
	// says otherwise.
	isNew := false
	if req.IsNew != nil {
		isNew = *req.IsNew
	}

	if err := h.repo.UpdateListingStatus(c.Request.Context(), uint(id), req.Status, isNew); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Listing not found"})
			return
		}
		logrus.Errorf("Error updating listing %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update listing"})
		return
	}

	listing, err := h.repo.GetListing(c.Request.Context(), uint(id))
	if err != nil || listing == nil {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	c.JSON(http.StatusOK, listing)
}
