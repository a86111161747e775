package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/riskibarqy/football-brain/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-brain/internal/platform/id"
	"github.com/riskibarqy/football-brain/internal/platform/logging"
	"github.com/riskibarqy/football-brain/internal/usecase"
)

const (
	testJWTSecret  = "test-jwt-secret"
	testHMACSecret = "test-hmac-secret"
	testCronSecret = "test-cron-secret"
)

// testServer wires every usecase service against the in-memory repository
// fakes and exposes it through the real router, the same wiring app.go does
// against postgres in production.
type testServer struct {
	handler *Handler
	router  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	players := memory.NewPlayerRepository()
	sweep := memory.NewSweepRepository()
	seasons := memory.NewSeasonRepository()
	squads := memory.NewSquadRepository()
	groups := memory.NewGroupRepository()

	logger := logging.NewNop()
	ids := id.NewRandomGenerator()

	h := NewHandler(
		usecase.NewPlayerService(players),
		usecase.NewSweepService(sweep, players, logger),
		usecase.NewMatchdayService(seasons, logger),
		usecase.NewLeagueService(seasons),
		usecase.NewSquadService(squads, ids, logger),
		usecase.NewGroupService(groups, players, ids),
		usecase.NewLeaderboardService(players),
		logger,
		HandlerConfig{
			AuthJWTConfigured:  true,
			AuthHMACConfigured: true,
			AuthCronConfigured: true,
			StorageConfigured:  true,
		},
	)

	router := NewRouter(h, logger, RouterConfig{
		UserJWTSecret:      testJWTSecret,
		ServerHMACSecret:   testHMACSecret,
		CronSecret:         testCronSecret,
		CORSAllowedOrigins: []string{"*"},
	})

	return &testServer{handler: h, router: router}
}

func bearerJWT(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return signed
}

func recordJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode json response %q: %v", rec.Body.String(), err)
	}
	return out
}
