package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meechain/internal/services"
)

type TierHandler struct {
	tierService *services.TierService
}

func NewTierHandler(tierService *services.TierService) *TierHandler {
	return &TierHandler{tierService: tierService}
}

// GetStatus returns the user's tier, progress and unlocked rewards
// GET /api/user-tier/status?userId=
func (h *TierHandler) GetStatus(c *gin.Context) {
	userID := c.Query("userId")

	status, err := h.tierService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}

// UpdateTier stores new progress counters and applies any tier upgrade
// POST /api/user-tier/update
func (h *TierHandler) UpdateTier(c *gin.Context) {
	var req struct {
		UserID            string  `json:"userId"`
		MissionsCompleted *int64  `json:"missionsCompleted"`
		TokensEarned      *int64  `json:"tokensEarned"`
		Referrals         *int64  `json:"referrals"`
		NewTier           *string `json:"newTier"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeMissingFields, err.Error())
		return
	}

	result, err := h.tierService.UpdateProgress(
		c.Request.Context(),
		req.UserID,
		req.MissionsCompleted,
		req.TokensEarned,
		req.Referrals,
		req.NewTier,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
