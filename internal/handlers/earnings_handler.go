package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meechain/internal/models"
	"meechain/internal/services"
)

type EarningsHandler struct {
	earningService  *services.EarningService
	transferService *services.TransferService
}

func NewEarningsHandler(earningService *services.EarningService, transferService *services.TransferService) *EarningsHandler {
	return &EarningsHandler{
		earningService:  earningService,
		transferService: transferService,
	}
}

// GetSummary returns total balances plus today's completed earnings
// GET /api/earnings/summary?userId=
func (h *EarningsHandler) GetSummary(c *gin.Context) {
	userID := c.Query("userId")

	summary, err := h.earningService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total":   summary.Total,
			"today":   summary.Today,
			"summary": summary,
		},
	})
}

// GetHistory returns a page of the user's earning history
// GET /api/earnings/history?userId=&limit=&offset=
func (h *EarningsHandler) GetHistory(c *gin.Context) {
	userID := c.Query("userId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, pagination, err := h.earningService.GetHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       records,
		"pagination": pagination,
	})
}

// RecordEarning appends an earning event
// POST /api/earnings/record
func (h *EarningsHandler) RecordEarning(c *gin.Context) {
	var req struct {
		UserID   string `json:"userId"`
		Activity string `json:"activity"`
		Amount   string `json:"amount"`
		Token    string `json:"token"`
		Status   string `json:"status"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeMissingFields, err.Error())
		return
	}

	record, err := h.earningService.RecordEarning(
		c.Request.Context(),
		req.UserID,
		req.Activity,
		req.Amount,
		req.Token,
		models.EarningStatus(req.Status),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}

// Transfer moves earned balance to an external wallet
// POST /api/earnings/transfer
func (h *EarningsHandler) Transfer(c *gin.Context) {
	var req struct {
		UserID        string `json:"userId"`
		WalletAddress string `json:"walletAddress"`
		Token         string `json:"token"`
		Amount        string `json:"amount"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeMissingFields, err.Error())
		return
	}

	result, err := h.transferService.Transfer(
		c.Request.Context(),
		req.UserID,
		req.WalletAddress,
		req.Token,
		req.Amount,
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
