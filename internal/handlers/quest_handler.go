package handlers

import (
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"meechain/internal/services"
)

type QuestHandler struct {
	questService *services.QuestService
}

func NewQuestHandler(questService *services.QuestService) *QuestHandler {
	return &QuestHandler{questService: questService}
}

// CreateQuest registers a new quest definition (owner only)
// POST /api/quest/create
func (h *QuestHandler) CreateQuest(c *gin.Context) {
	var req struct {
		Name             string `json:"name"`
		Description      string `json:"description"`
		RewardAmount     string `json:"rewardAmount"`
		RewardType       string `json:"rewardType"`
		BadgeName        string `json:"badgeName"`
		BadgeDescription string `json:"badgeDescription"`
		BadgeTokenURI    string `json:"badgeTokenURI"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeMissingFields, err.Error())
		return
	}

	result, err := h.questService.CreateQuest(c.Request.Context(), services.CreateQuestInput{
		Name:             req.Name,
		Description:      req.Description,
		RewardAmount:     req.RewardAmount,
		RewardType:       req.RewardType,
		BadgeName:        req.BadgeName,
		BadgeDescription: req.BadgeDescription,
		BadgeTokenURI:    req.BadgeTokenURI,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

// SetActive toggles a quest's active flag (owner only)
// POST /api/quest/:questId/active
func (h *QuestHandler) SetActive(c *gin.Context) {
	questID, err := parseQuestID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeMissingFields, "invalid questId")
		return
	}

	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeMissingFields, err.Error())
		return
	}

	if err := h.questService.SetQuestActive(c.Request.Context(), questID, *req.IsActive); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Quest updated",
	})
}

// CompleteQuest records a one-time quest completion and mints the reward
// POST /api/quest/:questId/complete
func (h *QuestHandler) CompleteQuest(c *gin.Context) {
	questID, err := parseQuestID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeMissingFields, "invalid questId")
		return
	}

	var req struct {
		UserAddress string `json:"userAddress"`
		PrivateKey  string `json:"privateKey"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeMissingFields, err.Error())
		return
	}

	if req.UserAddress == "" {
		respondError(c, http.StatusBadRequest, CodeMissingFields, "userAddress is required")
		return
	}

	// When the caller supplies a signing key it must belong to the claimed
	// address; a mismatch means someone is claiming rewards for a wallet
	// they do not hold.
	if req.PrivateKey != "" {
		wallet, err := solana.WalletFromPrivateKeyBase58(req.PrivateKey)
		if err != nil {
			respondError(c, http.StatusBadRequest, CodeMissingFields, "invalid private key format")
			return
		}
		if wallet.PublicKey().String() != req.UserAddress {
			respondError(c, http.StatusBadRequest, CodeMissingFields, "private key does not match userAddress")
			return
		}
	}

	result, err := h.questService.CompleteQuest(c.Request.Context(), req.UserAddress, questID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetQuestStatus returns one quest with the user's completion state
// GET /api/quest/:questId/status/:userAddress
func (h *QuestHandler) GetQuestStatus(c *gin.Context) {
	questID, err := parseQuestID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeMissingFields, "invalid questId")
		return
	}

	quest, err := h.questService.GetQuestWithStatus(c.Request.Context(), questID, c.Param("userAddress"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quest,
	})
}

// GetAllQuests returns every quest with per-user status
// GET /api/quests/all?userAddress=
func (h *QuestHandler) GetAllQuests(c *gin.Context) {
	quests, err := h.questService.ListQuestsWithStatus(c.Request.Context(), c.Query("userAddress"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quests,
		"count":   len(quests),
	})
}

func parseQuestID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("questId"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
