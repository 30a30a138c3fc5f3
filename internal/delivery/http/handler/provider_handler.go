package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neighbornet/internal/middleware"
	"neighbornet/internal/usecase/provider"
	"neighbornet/pkg/utils"
)

type ProviderHandler struct {
	service *provider.Service
}

func NewProviderHandler(service *provider.Service) *ProviderHandler {
	return &ProviderHandler{service: service}
}

func (h *ProviderHandler) RegisterRoutes(router *gin.RouterGroup) {
	providers := router.Group("/providers")
	{
		providers.POST("/availability", h.SetAvailability)
		providers.POST("/stop-sharing", h.StopSharing)
		providers.GET("/nearby", h.GetNearbyProviders)
		providers.GET("/best", h.GetBestProvider)
		providers.GET("/:deviceId/status", h.GetProviderStatus)
	}
}

// SetAvailability upserts the calling device's availability record.
func (h *ProviderHandler) SetAvailability(c *gin.Context) {
	deviceID, ok := middleware.CurrentDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Device identity required")
		return
	}

	var req provider.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	availability, err := h.service.SetAvailability(c.Request.Context(), deviceID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Availability updated", availability)
}

// StopSharing forces the calling device out of the provider pool.
func (h *ProviderHandler) StopSharing(c *gin.Context) {
	deviceID, ok := middleware.CurrentDeviceID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Device identity required")
		return
	}

	availability, err := h.service.StopSharing(c.Request.Context(), deviceID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Sharing stopped", availability)
}

func (h *ProviderHandler) GetNearbyProviders(c *gin.Context) {
	var req provider.NearbyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid coordinates")
		return
	}

	rankings, err := h.service.RankProviders(c.Request.Context(), req.Latitude, req.Longitude, req.RadiusKm)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Providers ranked", rankings)
}

func (h *ProviderHandler) GetBestProvider(c *gin.Context) {
	var req provider.NearbyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid coordinates")
		return
	}

	best, err := h.service.BestProvider(c.Request.Context(), req.Latitude, req.Longitude, req.RadiusKm)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Best provider selected", best)
}

func (h *ProviderHandler) GetProviderStatus(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("deviceId"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	status, err := h.service.ProviderStatus(c.Request.Context(), deviceID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Provider status retrieved", status)
}
