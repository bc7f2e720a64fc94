package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meechain/internal/models"
	"meechain/internal/repository"
	"meechain/internal/services"
)

func setupRouter(t *testing.T, name string) (*gin.Engine, *repository.Repository) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.EarningRecord{}, &models.UserBalance{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	repo := repository.NewRepository(db)
	handler := NewEarningsHandler(
		services.NewEarningService(repo, "MEE"),
		services.NewTransferService(repo),
	)

	router := gin.New()
	router.GET("/api/earnings/summary", handler.GetSummary)
	router.POST("/api/earnings/transfer", handler.Transfer)
	return router, repo
}

type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func TestSummaryRequiresUserID(t *testing.T) {
	router, _ := setupRouter(t, "handler_summary")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/earnings/summary", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body apiError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Success {
		t.Error("expected success=false")
	}
	if body.Error != CodeMissingUserID {
		t.Errorf("expected error code %s, got %s", CodeMissingUserID, body.Error)
	}
}

func TestTransferErrorCodes(t *testing.T) {
	router, repo := setupRouter(t, "handler_transfer")

	if err := repo.AddToBalance(context.Background(), "user-1", "MEE", decimal.RequireFromString("5")); err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}

	post := func(payload string) (*httptest.ResponseRecorder, apiError) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/earnings/transfer", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		var body apiError
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		return w, body
	}

	w, body := post(`{"userId":"user-1","token":"MEE","amount":"5"}`)
	if w.Code != http.StatusBadRequest || body.Error != CodeMissingFields {
		t.Errorf("missing wallet: expected 400 %s, got %d %s", CodeMissingFields, w.Code, body.Error)
	}

	w, body = post(`{"userId":"user-1","walletAddress":"w1","token":"MEE","amount":"-2"}`)
	if w.Code != http.StatusBadRequest || body.Error != CodeInvalidAmount {
		t.Errorf("negative amount: expected 400 %s, got %d %s", CodeInvalidAmount, w.Code, body.Error)
	}

	w, body = post(`{"userId":"user-1","walletAddress":"w1","token":"MEE","amount":"10"}`)
	if w.Code != http.StatusBadRequest || body.Error != CodeInsufficientBalance {
		t.Errorf("overdraw: expected 400 %s, got %d %s", CodeInsufficientBalance, w.Code, body.Error)
	}

	w, _ = post(`{"userId":"user-1","walletAddress":"w1","token":"MEE","amount":"3"}`)
	if w.Code != http.StatusOK {
		t.Errorf("valid transfer: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var success struct {
		Success bool `json:"success"`
		Data    struct {
			Status     string `json:"status"`
			NewBalance string `json:"newBalance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &success); err != nil {
		t.Fatalf("failed to decode success response: %v", err)
	}
	if !success.Success || success.Data.Status != "success" || success.Data.NewBalance != "2" {
		t.Errorf("unexpected success payload: %+v", success)
	}
}
