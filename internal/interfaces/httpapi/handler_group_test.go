package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func createGroupViaHTTP(t *testing.T, srv *testServer, userID, name string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/groups/create", bytes.NewReader([]byte(`{"name":"`+name+`"}`)))
	req.Header.Set("Authorization", "Bearer "+bearerJWT(t, userID))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create group: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	return recordJSON(t, rec)
}

func TestCreateGroup_RequiresJWT(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/groups/create", bytes.NewReader([]byte(`{"name":"Sunday League"}`)))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJoinGroup_UnknownCodeIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/groups/join", bytes.NewReader([]byte(`{"invite_code":"NOPE00"}`)))
	req.Header.Set("Authorization", "Bearer "+bearerJWT(t, "member-1"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestJoinGroupThenGroupLeaderboard_MembershipEnforced(t *testing.T) {
	srv := newTestServer(t)
	created := createGroupViaHTTP(t, srv, "creator-1", "Sunday League")
	groupID, _ := created["id"].(string)
	inviteCode, _ := created["invite_code"].(string)

	join := httptest.NewRequest(http.MethodPost, "/api/groups/join", bytes.NewReader([]byte(`{"invite_code":"`+inviteCode+`"}`)))
	join.Header.Set("Authorization", "Bearer "+bearerJWT(t, "member-1"))
	recJoin := httptest.NewRecorder()
	srv.router.ServeHTTP(recJoin, join)
	if recJoin.Code != http.StatusOK {
		t.Fatalf("join group: expected 200, got %d body=%s", recJoin.Code, recJoin.Body.String())
	}

	outsider := httptest.NewRequest(http.MethodGet, "/api/groups/"+groupID+"/leaderboard", nil)
	outsider.Header.Set("Authorization", "Bearer "+bearerJWT(t, "outsider"))
	recOutsider := httptest.NewRecorder()
	srv.router.ServeHTTP(recOutsider, outsider)
	if recOutsider.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-member, got %d body=%s", recOutsider.Code, recOutsider.Body.String())
	}

	member := httptest.NewRequest(http.MethodGet, "/api/groups/"+groupID+"/leaderboard", nil)
	member.Header.Set("Authorization", "Bearer "+bearerJWT(t, "member-1"))
	recMember := httptest.NewRecorder()
	srv.router.ServeHTTP(recMember, member)
	if recMember.Code != http.StatusOK {
		t.Fatalf("expected 200 for member, got %d body=%s", recMember.Code, recMember.Body.String())
	}
}

func TestLeaveGroup_RemovesMembership(t *testing.T) {
	srv := newTestServer(t)
	created := createGroupViaHTTP(t, srv, "creator-1", "Sunday League")
	groupID, _ := created["id"].(string)

	leave := httptest.NewRequest(http.MethodPost, "/api/groups/"+groupID+"/leave", nil)
	leave.Header.Set("Authorization", "Bearer "+bearerJWT(t, "creator-1"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, leave)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	mine := httptest.NewRequest(http.MethodGet, "/api/groups/mine", nil)
	mine.Header.Set("Authorization", "Bearer "+bearerJWT(t, "creator-1"))
	recMine := httptest.NewRecorder()
	srv.router.ServeHTTP(recMine, mine)
	data := recordJSON(t, recMine)
	groups, _ := data["groups"].([]any)
	if len(groups) != 0 {
		t.Fatalf("expected no groups after leaving, got %d", len(groups))
	}
}
