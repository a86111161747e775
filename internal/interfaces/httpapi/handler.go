package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/football-brain/internal/platform/logging"
	"github.com/riskibarqy/football-brain/internal/usecase"
)

// buildInfo carries the version reported by /health; it is fixed at "dev"
// since this repository does not script a release process.
var buildInfo = struct {
	Version string
}{Version: "dev"}

type Handler struct {
	players     *usecase.PlayerService
	sweep       *usecase.SweepService
	matchday    *usecase.MatchdayService
	leagues     *usecase.LeagueService
	squads      *usecase.SquadService
	groups      *usecase.GroupService
	leaderboard *usecase.LeaderboardService

	logger    *logging.Logger
	validator *validator.Validate

	authJWTConfigured  bool
	authHMACConfigured bool
	authCronConfigured bool
	storageConfigured  bool
}

type HandlerConfig struct {
	AuthJWTConfigured  bool
	AuthHMACConfigured bool
	AuthCronConfigured bool
	StorageConfigured  bool
}

func NewHandler(
	players *usecase.PlayerService,
	sweep *usecase.SweepService,
	matchday *usecase.MatchdayService,
	leagues *usecase.LeagueService,
	squads *usecase.SquadService,
	groups *usecase.GroupService,
	leaderboard *usecase.LeaderboardService,
	logger *logging.Logger,
	cfg HandlerConfig,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		players:            players,
		sweep:              sweep,
		matchday:           matchday,
		leagues:            leagues,
		squads:             squads,
		groups:             groups,
		leaderboard:        leaderboard,
		logger:             logger,
		validator:          validator.New(),
		authJWTConfigured:  cfg.AuthJWTConfigured,
		authHMACConfigured: cfg.AuthHMACConfigured,
		authCronConfigured: cfg.AuthCronConfigured,
		storageConfigured:  cfg.StorageConfigured,
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrValidation, err)
	}
	return nil
}

// Health reports service liveness plus which modules and auth/storage
// dependencies are configured, for operators probing a fresh deployment.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Health")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"service": "football-brain",
		"version": buildInfo.Version,
		"modules": []string{"players", "sweep", "seasons", "squads", "groups", "leaderboard"},
		"auth": map[string]bool{
			"jwt":  h.authJWTConfigured,
			"hmac": h.authHMACConfigured,
			"cron": h.authCronConfigured,
		},
		"storage": map[string]bool{
			"configured": h.storageConfigured,
		},
	})
}

func requiredPrincipal(ctx context.Context) (Principal, error) {
	p, ok := principalFromContext(ctx)
	if !ok || p.UserID == "" {
		return Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return p, nil
}
