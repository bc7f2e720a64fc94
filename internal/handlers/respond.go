package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"meechain/internal/services"
)

// Stable API error codes
const (
	CodeMissingUserID       = "MISSING_USER_ID"
	CodeMissingFields       = "MISSING_FIELDS"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidTier         = "INVALID_TIER"
	CodeNotFound            = "NOT_FOUND"
	CodeQuestInactive       = "QUEST_INACTIVE"
	CodeAlreadyCompleted    = "ALREADY_COMPLETED"
	CodeInternalError       = "INTERNAL_ERROR"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   code,
		"message": message,
	})
}

// respondServiceError maps service errors to stable codes. Validation errors
// surface their message; anything unexpected is logged in full server-side
// and returned as a generic INTERNAL_ERROR.
func respondServiceError(c *gin.Context, err error) {
	var insufficient *services.InsufficientBalanceError

	switch {
	case errors.Is(err, services.ErrMissingUserID):
		respondError(c, http.StatusBadRequest, CodeMissingUserID, err.Error())
	case errors.Is(err, services.ErrMissingFields):
		respondError(c, http.StatusBadRequest, CodeMissingFields, err.Error())
	case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidStatus):
		respondError(c, http.StatusBadRequest, CodeInvalidAmount, err.Error())
	case errors.Is(err, services.ErrInvalidTier):
		respondError(c, http.StatusBadRequest, CodeInvalidTier, err.Error())
	case errors.Is(err, services.ErrQuestNotFound):
		respondError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, services.ErrQuestInactive):
		respondError(c, http.StatusBadRequest, CodeQuestInactive, err.Error())
	case errors.Is(err, services.ErrQuestAlreadyCompleted):
		respondError(c, http.StatusBadRequest, CodeAlreadyCompleted, "Quest already completed")
	case errors.As(err, &insufficient):
		respondError(c, http.StatusBadRequest, CodeInsufficientBalance, err.Error())
	default:
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		respondError(c, http.StatusInternalServerError, CodeInternalError, "internal server error")
	}
}
