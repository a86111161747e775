package httpapi

import (
	"net/http"

	"github.com/riskibarqy/football-brain/internal/platform/logging"
)

// RouterConfig carries the secrets and knobs NewRouter needs to wire the
// three independent auth gates and the observability middleware stack.
type RouterConfig struct {
	UserJWTSecret      string
	ServerHMACSecret   string
	CronSecret         string
	CORSAllowedOrigins []string
	TraceRequestBody   bool
	TraceBodyMaxBytes  int
}

func NewRouter(handler *Handler, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPlayerRoutes(mux, handler, cfg)
	registerSweepRoutes(mux, handler, cfg)
	registerSeasonRoutes(mux, handler, cfg)
	registerSquadRoutes(mux, handler, cfg)
	registerGroupRoutes(mux, handler, cfg)
	registerLeaderboardRoutes(mux, handler, cfg)

	stack := RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux)))
	stack = RequestBodyTracing(cfg.TraceRequestBody, cfg.TraceBodyMaxBytes, stack)
	return RequestTracing(stack)
}
