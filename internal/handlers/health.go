package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/internal/services"
	"github.com/huangang/venturelink/pkg/response"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the database and the mail pipeline.
type HealthHandler struct {
	db    *gorm.DB
	queue services.TaskQueue
}

func NewHealthHandler(db *gorm.DB, queue services.TaskQueue) *HealthHandler {
	return &HealthHandler{db: db, queue: queue}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var pending, failed int64
	if overall == "healthy" {
		h.db.WithContext(c.Request.Context()).Model(&models.NotificationOutbox{}).
			Where("status = ?", models.OutboxPending).Count(&pending)
		h.db.WithContext(c.Request.Context()).Model(&models.NotificationOutbox{}).
			Where("status = ?", models.OutboxFailed).Count(&failed)
	}

	data := gin.H{
		"status":  overall,
		"service": "venturelink",
		"components": gin.H{
			"database":              dbStatus,
			"queue_mode":            queueMode,
			"pending_notifications": pending,
			"failed_notifications":  failed,
		},
	}
	if overall != "healthy" {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Status:  response.StatusError,
			Message: "Service unhealthy",
			Data:    data,
		})
		return
	}
	response.Success(c, "Service healthy", data)
}
