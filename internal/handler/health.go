package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	realtimePort int
}

func NewHealthHandler(realtimePort int) *HealthHandler {
	return &HealthHandler{realtimePort: realtimePort}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "restaurant-chat",
	})
}

// RealtimePort — discovery-endpoint: фактический порт realtime-листенера
// (выделенный или основной после фолбэка). Клиенты не хардкодят порт.
func (h *HealthHandler) RealtimePort(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"port": h.realtimePort,
	})
}
