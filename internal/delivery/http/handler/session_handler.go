package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neighbornet/internal/middleware"
	"neighbornet/internal/usecase/session"
	"neighbornet/pkg/utils"
)

type SessionHandler struct {
	service *session.Service
}

func NewSessionHandler(service *session.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("/start", h.StartSession)
		sessions.POST("/:id/end", h.EndSession)
		sessions.GET("", h.GetHistory)
		sessions.GET("/device", h.GetDeviceHistory)
		sessions.GET("/active", h.GetActive)
		sessions.GET("/usage", h.GetUsage)
		sessions.GET("/:id", h.GetSession)
	}
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	var req session.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.service.Start(c.Request.Context(), &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Session started", sess)
}

func (h *SessionHandler) EndSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid session ID")
		return
	}

	var req session.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.service.End(c.Request.Context(), sessionID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Session ended", sess)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid session ID")
		return
	}

	sess, err := h.service.Get(c.Request.Context(), sessionID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Session retrieved", sess)
}

func (h *SessionHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User identity required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	sessions, err := h.service.HistoryForUser(c.Request.Context(), userID, limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Session history retrieved", sessions)
}

func (h *SessionHandler) GetDeviceHistory(c *gin.Context) {
	deviceID, ok := middleware.CurrentDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Device identity required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	sessions, err := h.service.HistoryForDevice(c.Request.Context(), deviceID, limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device session history retrieved", sessions)
}

func (h *SessionHandler) GetActive(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User identity required")
		return
	}

	sessions, err := h.service.ActiveForUser(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Active sessions retrieved", sessions)
}

func (h *SessionHandler) GetUsage(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User identity required")
		return
	}

	usage, err := h.service.TotalBytesForUser(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Usage computed", usage)
}
