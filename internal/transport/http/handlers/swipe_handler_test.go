package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/playpal-app/backend/internal/repo/redis"
	authsvc "github.com/playpal-app/backend/internal/services/auth"
	ratesvc "github.com/playpal-app/backend/internal/services/rate"
	swipesvc "github.com/playpal-app/backend/internal/services/swipes"
)

func TestSwipeHandlerReturnsTooFastOnThirdSwipeBurst(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = redisClient.Close() }()

	rateRepo := redrepo.NewRateRepo(redisClient)
	rateLimiter := ratesvc.NewLimiter(rateRepo, 30, 2)

	svc := swipesvc.NewService(nil, nil, nil, rateLimiter, nil, nil)

	h := NewSwipeHandler(svc)

	for i := 0; i < 2; i++ {
		_ = performSwipeRequest(t, h, 1000+int64(i), "right").Code
	}

	resp := performSwipeRequest(t, h, 1002, "right")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status on third swipe: got %d want %d", resp.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		Message       string `json:"message"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if payload.Code != "TOO_FAST" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "TOO_FAST")
	}
	if payload.RetryAfterSec <= 0 {
		t.Fatalf("expected positive retry_after_sec, got %d", payload.RetryAfterSec)
	}
}

func TestSwipeHandlerRejectsUnauthenticated(t *testing.T) {
	h := NewSwipeHandler(nil)

	body, err := json.Marshal(map[string]any{"target_id": 5, "direction": "right"})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func performSwipeRequest(t *testing.T, h *SwipeHandler, targetID int64, direction string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"target_id": targetID,
		"direction": direction,
	})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 101,
		SID:    "sid-101",
		Role:   "user",
	}))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}
