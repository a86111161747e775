package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGlobalLeaderboard_RequiresJWT(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard/global", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGlobalLeaderboard_InitializesCallerRow(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard/global", nil)
	req.Header.Set("Authorization", "Bearer "+bearerJWT(t, "caller-1"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data := recordJSON(t, rec)
	coaches, _ := data["coaches"].([]any)
	if len(coaches) != 1 {
		t.Fatalf("expected 1 coach row for a fresh caller, got %d", len(coaches))
	}
	first, _ := coaches[0].(map[string]any)
	if first["is_caller"] != true {
		t.Fatalf("expected caller row flagged is_caller, got %+v", first)
	}
}
