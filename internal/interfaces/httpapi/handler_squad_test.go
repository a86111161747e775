package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func createSquadViaHTTP(t *testing.T, srv *testServer, userID, name string) map[string]any {
	t.Helper()
	body := []byte(`{"name":"` + name + `","privacy":"open"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/squads/create", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerJWT(t, userID))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create squad: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	return recordJSON(t, rec)
}

func TestCreateSquad_RejectsSecondActiveSquad(t *testing.T) {
	srv := newTestServer(t)
	createSquadViaHTTP(t, srv, "leader-1", "Alphas")

	body := []byte(`{"name":"Betas","privacy":"open"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/squads/create", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerJWT(t, "leader-1"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 (conflict) for a second active squad, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestJoinSquad_OpenSquadJoinsDirectly(t *testing.T) {
	srv := newTestServer(t)
	created := createSquadViaHTTP(t, srv, "leader-1", "Alphas")
	squadID, _ := created["id"].(string)

	join := httptest.NewRequest(http.MethodPost, "/api/squads/"+squadID+"/join", nil)
	join.Header.Set("Authorization", "Bearer "+bearerJWT(t, "member-1"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, join)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSquadProfile_IsPublic(t *testing.T) {
	srv := newTestServer(t)
	created := createSquadViaHTTP(t, srv, "leader-1", "Alphas")
	squadID, _ := created["id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/squads/"+squadID+"/profile", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data := recordJSON(t, rec)
	if data["name"] != "Alphas" {
		t.Fatalf("expected squad name Alphas, got %v", data["name"])
	}
	members, _ := data["members"].([]any)
	if len(members) != 1 {
		t.Fatalf("expected the leader as sole active member, got %d", len(members))
	}
}

func TestUpgradeSquadFacility_InsufficientPointsIsConflict(t *testing.T) {
	srv := newTestServer(t)
	created := createSquadViaHTTP(t, srv, "leader-1", "Alphas")
	squadID, _ := created["id"].(string)

	body := []byte(`{"facility_type":"training_equipment"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/squads/"+squadID+"/upgrade", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerJWT(t, "leader-1"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 (conflict) for a freshly-created squad with no points, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLeaveSquad_LeaderMustPromoteFirst(t *testing.T) {
	srv := newTestServer(t)
	created := createSquadViaHTTP(t, srv, "leader-1", "Alphas")
	squadID, _ := created["id"].(string)

	leave := httptest.NewRequest(http.MethodPost, "/api/squads/leave", bytes.NewReader([]byte(`{"squad_id":"`+squadID+`"}`)))
	leave.Header.Set("Authorization", "Bearer "+bearerJWT(t, "leader-1"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, leave)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 (conflict) for a sole leader leaving, got %d body=%s", rec.Code, rec.Body.String())
	}
}
