package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartScheduler starts the mailbox poller
func (h *Handlers) StartScheduler(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Mailbox polling is not configured"})
		return
	}
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scheduler started"})
}

// StopScheduler stops the mailbox poller
func (h *Handlers) StopScheduler(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Mailbox polling is not configured"})
		return
	}
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scheduler stopped"})
}

// RunSchedulerOnce triggers one poll cycle immediately
func (h *Handlers) RunSchedulerOnce(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Mailbox polling is not configured"})
		return
	}
	if err := h.scheduler.RunOnce(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Poll cycle triggered"})
}

// GetSchedulerStatus reports the poller state
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	status := SchedulerStatusResponse{}
	if h.scheduler != nil && h.scheduler.IsRunning() {
		status.Running = true
		next := h.scheduler.GetNextRun()
		if !next.IsZero() {
			status.NextRun = &next
		}
		last := h.scheduler.GetLastRun()
		if !last.IsZero() {
			status.LastRun = &last
		}
	}
	c.JSON(http.StatusOK, status)
}
