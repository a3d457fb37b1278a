package web

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/agendahub/internal/cache"
	"github.com/geocoder89/agendahub/internal/notify"
	"github.com/geocoder89/agendahub/internal/observability"
	"github.com/geocoder89/agendahub/internal/session"
	"github.com/geocoder89/agendahub/internal/store"
	"github.com/geocoder89/agendahub/internal/web/middlewares"
)

const maxBodyBytes = 64 << 10

type RouterConfig struct {
	Env           string
	CORSOrigins   []string
	UpcomingLimit int
}

// NewRouter wires the UI host: the boundary the browser-side calendar
// widget, modal host, and toast surface talk to.
func NewRouter(
	cfg RouterConfig,
	log *slog.Logger,
	sess *session.Session,
	st *store.Store,
	lister MonthLister,
	notices *notify.Buffer,
	months *cache.MonthCache,
	prom *observability.Prom,
	promRegistry *prometheus.Registry,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("agendahub"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	if months == nil {
		months = cache.NewMonthCache(30 * time.Second)
	}
	h := NewHandler(sess, st, lister, notices, months, cfg.UpcomingLimit)

	// health
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if promRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))
	}

	// widget boundary
	ui := r.Group("/api/ui")
	ui.GET("/calendar", h.Calendar)
	ui.GET("/events", h.Events)
	ui.GET("/upcoming", h.Upcoming)
	ui.GET("/has-event", h.HasEvent)
	ui.POST("/day-click", h.DayClick)
	ui.POST("/event-click", h.EventClick)

	// dialog boundary
	ui.GET("/dialog", h.Dialog)
	ui.POST("/dialog/edit", h.BeginEdit)
	ui.POST("/dialog/delete", h.RequestDelete)
	ui.POST("/dialog/cancel", h.Cancel)
	ui.POST("/dialog/submit", h.Submit)
	ui.POST("/dialog/confirm-delete", h.ConfirmDelete)

	// toast surface + manual refresh
	ui.GET("/notices", h.Notices)
	ui.POST("/refresh", h.Refresh)

	return r
}
