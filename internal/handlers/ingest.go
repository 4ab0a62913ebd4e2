package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"part-scout-go/internal/ingest"
)

// maxEmailSize caps the uploaded .eml body at 10 MiB; alert emails are
// a few hundred KiB at most.
const maxEmailSize = 10 << 20

// IngestEmail handles POST /api/v1/ingest/eml: a multipart upload of
// one .eml file, owned by the principal identified by the X-User-ID
// header (set by the upstream auth proxy).
func (h *Handlers) IngestEmail(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file provided"})
		return
	}
	if fileHeader.Size > maxEmailSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read file"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxEmailSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read file"})
		return
	}

	start := time.Now()
	summary, err := h.coordinator.Ingest(c.Request.Context(), raw, userID)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrNoHTMLContent):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No HTML content found in email"})
		case errors.Is(err, ingest.ErrNoListingsFound):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No listings found in email"})
		default:
			logrus.Errorf("Error ingesting email: %v", err)
			h.metrics.IngestionFailures.Inc()
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to ingest email"})
		}
		return
	}
	h.metrics.ProcessingTime.Observe(time.Since(start).Seconds())

	if summary.AlreadyProcessed {
		c.JSON(http.StatusOK, AlreadyProcessedResponse{
			Message:       "Email already processed",
			ListingsCount: summary.ListingsCreated,
		})
		return
	}

	c.JSON(http.StatusOK, IngestResponse{
		Success:         true,
		ListingsFound:   summary.ListingsFound,
		ListingsCreated: summary.ListingsCreated,
		ListingsMatched: summary.ListingsMatched,
	})
}
