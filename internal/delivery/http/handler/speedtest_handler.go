package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"neighbornet/internal/middleware"
	"neighbornet/internal/usecase/speedtest"
	"neighbornet/pkg/utils"
)

type SpeedtestHandler struct {
	service *speedtest.Service
}

func NewSpeedtestHandler(service *speedtest.Service) *SpeedtestHandler {
	return &SpeedtestHandler{service: service}
}

func (h *SpeedtestHandler) RegisterRoutes(router *gin.RouterGroup) {
	tests := router.Group("/speedtest")
	{
		tests.POST("/report", h.ReportSample)
		tests.GET("/samples", h.GetSamples)
		tests.GET("/stats", h.GetStats)
	}
}

// RegisterPublicRoutes exposes aggregate stats without authentication.
func (h *SpeedtestHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/speedtest/global-stats", h.GetGlobalStats)
}

func (h *SpeedtestHandler) ReportSample(c *gin.Context) {
	deviceID, ok := middleware.CurrentDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Device identity required")
		return
	}

	var req speedtest.ReportSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.RecordSample(c.Request.Context(), deviceID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Speed sample recorded", result)
}

func (h *SpeedtestHandler) GetSamples(c *gin.Context) {
	deviceID, ok := middleware.CurrentDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Device identity required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	samples, err := h.service.DeviceSamples(c.Request.Context(), deviceID, limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Speed samples retrieved", samples)
}

func (h *SpeedtestHandler) GetStats(c *gin.Context) {
	deviceID, ok := middleware.CurrentDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Device identity required")
		return
	}

	stats, err := h.service.DeviceStats(c.Request.Context(), deviceID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device stats computed", stats)
}

func (h *SpeedtestHandler) GetGlobalStats(c *gin.Context) {
	stats, err := h.service.GlobalStats(c.Request.Context())
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Global stats computed", stats)
}
