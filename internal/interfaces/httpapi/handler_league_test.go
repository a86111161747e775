package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListLeagues_IsPublic(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/leagues", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data := recordJSON(t, rec)
	leagues, _ := data["leagues"].([]any)
	if len(leagues) != 3 {
		t.Fatalf("expected 3 leagues, got %d", len(leagues))
	}
}

func TestLeagueTable_UnknownTierIsValidationError(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/leagues/not-a-tier/table", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLeagueTable_NoActiveSeasonIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/leagues/championship/table", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any season exists, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSeasonResetSync_RequiresCronSecret(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/seasons/reset-sync", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSeasonResetSyncThenSimulateDay_AdvancesStandings(t *testing.T) {
	srv := newTestServer(t)

	reset := httptest.NewRequest(http.MethodPost, "/api/seasons/reset-sync", nil)
	reset.Header.Set("Authorization", "Bearer "+testCronSecret)
	recReset := httptest.NewRecorder()
	srv.router.ServeHTTP(recReset, reset)
	if recReset.Code != http.StatusOK {
		t.Fatalf("reset-sync: expected 200, got %d body=%s", recReset.Code, recReset.Body.String())
	}

	simulate := httptest.NewRequest(http.MethodPost, "/api/seasons/simulate-day", nil)
	simulate.Header.Set("Authorization", "Bearer "+testCronSecret)
	recSimulate := httptest.NewRecorder()
	srv.router.ServeHTTP(recSimulate, simulate)
	if recSimulate.Code != http.StatusOK {
		t.Fatalf("simulate-day: expected 200, got %d body=%s", recSimulate.Code, recSimulate.Body.String())
	}
	simData := recordJSON(t, recSimulate)
	if simData["all_ok"] != true {
		t.Fatalf("expected all_ok true on first bootstrap simulate, got %v", simData["all_ok"])
	}

	table := httptest.NewRequest(http.MethodGet, "/api/leagues/championship/table", nil)
	recTable := httptest.NewRecorder()
	srv.router.ServeHTTP(recTable, table)
	if recTable.Code != http.StatusOK {
		t.Fatalf("table: expected 200, got %d body=%s", recTable.Code, recTable.Body.String())
	}
}
