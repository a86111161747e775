package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /health", handler.Health)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.Handle("POST /api/players/create", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.CreatePlayer)))
	mux.Handle("GET /api/players/{id}", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.GetPlayer)))
	mux.Handle("POST /api/players/{id}/progress", RequireServerHMAC(cfg.ServerHMACSecret, http.HandlerFunc(handler.ProgressPlayer)))
	mux.Handle("POST /api/players/{id}/complete", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.CompletePlayer)))
}

func registerSweepRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /api/sweep/status", handler.SweepStatus)
	mux.Handle("POST /api/sweep/run", RequireCronSecret(cfg.CronSecret, http.HandlerFunc(handler.RunSweep)))
}

func registerSeasonRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.Handle("POST /api/seasons/reset-sync", RequireCronSecret(cfg.CronSecret, http.HandlerFunc(handler.SeasonResetSync)))
	mux.Handle("POST /api/seasons/simulate-day", RequireCronSecret(cfg.CronSecret, http.HandlerFunc(handler.SeasonSimulateDay)))
	mux.HandleFunc("GET /api/seasons/status", handler.SeasonStatus)

	mux.HandleFunc("GET /api/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /api/leagues/{leagueId}/table", handler.LeagueTable)
	mux.HandleFunc("GET /api/leagues/{leagueId}/fixtures", handler.LeagueFixtures)
	mux.HandleFunc("GET /api/leagues/{leagueId}/results", handler.LeagueResults)
}

func registerSquadRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /api/squads/leaderboard", handler.SquadLeaderboard)
	mux.HandleFunc("GET /api/squads/search", handler.SquadSearch)
	mux.HandleFunc("GET /api/squads/{id}/profile", handler.SquadProfile)

	mux.Handle("POST /api/squads/create", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.CreateSquad)))
	mux.Handle("POST /api/squads/{id}/join", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.JoinSquad)))
	mux.Handle("POST /api/squads/{id}/request-join", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.RequestJoinSquad)))
	mux.Handle("POST /api/squads/{id}/upgrade", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.UpgradeSquadFacility)))
	mux.Handle("POST /api/squads/{id}/set-role", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.SetSquadMemberRole)))
	mux.Handle("POST /api/squads/requests/{id}/resolve", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.ResolveSquadJoinRequest)))
	mux.Handle("POST /api/squads/leave", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.LeaveSquad)))
	mux.Handle("GET /api/squads/mine", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.MySquad)))
	mux.Handle("GET /api/squads/{id}/requests", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.SquadJoinRequests)))
}

func registerGroupRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.Handle("POST /api/groups/create", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.CreateGroup)))
	mux.Handle("POST /api/groups/join", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.JoinGroup)))
	mux.Handle("GET /api/groups/mine", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.MyGroups)))
	mux.Handle("GET /api/groups/{id}/leaderboard", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.GroupLeaderboard)))
	mux.Handle("POST /api/groups/{id}/leave", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.LeaveGroup)))
}

func registerLeaderboardRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.Handle("GET /api/leaderboard/global", RequireUserJWT(cfg.UserJWTSecret, http.HandlerFunc(handler.GlobalLeaderboard)))
}
