package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/football-brain/internal/config"
	groupdomain "github.com/riskibarqy/football-brain/internal/domain/group"
	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
	seasondomain "github.com/riskibarqy/football-brain/internal/domain/season"
	squaddomain "github.com/riskibarqy/football-brain/internal/domain/squad"
	sweepdomain "github.com/riskibarqy/football-brain/internal/domain/sweep"
	postgresrepo "github.com/riskibarqy/football-brain/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/football-brain/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/football-brain/internal/platform/id"
	"github.com/riskibarqy/football-brain/internal/platform/logging"
	"github.com/riskibarqy/football-brain/internal/usecase"
)

// NewHTTPHandler wires the full dependency graph for the service: it opens
// the traced postgres connection, builds every repository/usecase pair, and
// returns a router ready to be served plus a closer for the DB pool.
func NewHTTPHandler(cfg config.Config, logger *logging.Logger) (http.Handler, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := otelsqlx.Open("postgres", cfg.DatabaseURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DatabaseURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(pingCtx, `INSERT INTO sweep_state (id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure sweep state row: %w", err)
	}

	var playerRepo playerdomain.Repository = postgresrepo.NewPlayerRepository(db)
	var sweepRepo sweepdomain.Repository = postgresrepo.NewSweepRepository(db)
	var seasonRepo seasondomain.Repository = postgresrepo.NewSeasonRepository(db)
	var squadRepo squaddomain.Repository = postgresrepo.NewSquadRepository(db)
	var groupRepo groupdomain.Repository = postgresrepo.NewGroupRepository(db)

	ids := idgen.NewUUIDGenerator()

	playerSvc := usecase.NewPlayerService(playerRepo)
	sweepSvc := usecase.NewSweepService(sweepRepo, playerRepo, logger)
	matchdaySvc := usecase.NewMatchdayService(seasonRepo, logger)
	leagueSvc := usecase.NewLeagueService(seasonRepo)
	squadSvc := usecase.NewSquadService(squadRepo, ids, logger)
	groupSvc := usecase.NewGroupService(groupRepo, playerRepo, ids)
	leaderboardSvc := usecase.NewLeaderboardService(playerRepo)

	handler := httpapi.NewHandler(
		playerSvc,
		sweepSvc,
		matchdaySvc,
		leagueSvc,
		squadSvc,
		groupSvc,
		leaderboardSvc,
		logger,
		httpapi.HandlerConfig{
			AuthJWTConfigured:  cfg.AuthJWTSecret != "",
			AuthHMACConfigured: cfg.ServerHMACSecret != "",
			AuthCronConfigured: cfg.CronSecret != "",
			StorageConfigured:  cfg.DatabaseURL != "",
		},
	)

	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		UserJWTSecret:      cfg.AuthJWTSecret,
		ServerHMACSecret:   cfg.ServerHMACSecret,
		CronSecret:         cfg.CronSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TraceRequestBody:   cfg.TraceRequestBody,
		TraceBodyMaxBytes:  cfg.TraceRequestBodyMaxLen,
	})

	return router, db.Close, nil
}

func dbNameFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Path, "/")
}
