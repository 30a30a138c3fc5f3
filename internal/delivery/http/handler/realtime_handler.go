package handler

import (
	"github.com/gin-gonic/gin"

	"neighbornet/internal/realtime"
)

// RealtimeHandler wires the two realtime channel kinds into the router.
type RealtimeHandler struct {
	ws  *realtime.WSGateway
	sse *realtime.SSEGateway
}

func NewRealtimeHandler(ws *realtime.WSGateway, sse *realtime.SSEGateway) *RealtimeHandler {
	return &RealtimeHandler{ws: ws, sse: sse}
}

func (h *RealtimeHandler) RegisterRoutes(router *gin.RouterGroup) {
	rt := router.Group("/realtime")
	{
		rt.GET("/ws", h.ws.Handle)
		rt.GET("/sse", h.sse.Handle)
	}
}
