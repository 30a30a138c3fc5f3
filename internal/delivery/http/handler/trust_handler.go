package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neighbornet/internal/middleware"
	"neighbornet/internal/usecase/trust"
	"neighbornet/pkg/utils"
)

type TrustHandler struct {
	service *trust.Service
}

func NewTrustHandler(service *trust.Service) *TrustHandler {
	return &TrustHandler{service: service}
}

func (h *TrustHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/trust-score", h.GetTrustScore)
		users.POST("/trust-score/adjust", h.AdjustTrustScore)
	}
}

func (h *TrustHandler) GetTrustScore(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User identity required")
		return
	}

	score, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trust score retrieved", gin.H{
		"user_id": userID,
		"score":   score,
	})
}

type adjustTrustRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Delta  int       `json:"delta" binding:"required"`
}

// AdjustTrustScore applies a delta on behalf of an external trigger such as
// a session review or an abuse report.
func (h *TrustHandler) AdjustTrustScore(c *gin.Context) {
	var req adjustTrustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	score, err := h.service.Adjust(c.Request.Context(), req.UserID, req.Delta)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trust score adjusted", gin.H{
		"user_id": req.UserID,
		"score":   score,
	})
}
