package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/geocoder89/agendahub/internal/cache"
	"github.com/geocoder89/agendahub/internal/observability"
	"github.com/geocoder89/agendahub/internal/session"
)

const runTimeout = 30 * time.Second

// Refresher re-fetches the event list on a cron schedule so the calendar
// keeps up with changes made by other clients. Each run is a full-list
// replacement through the session, same path as a manual refresh.
type Refresher struct {
	cron    *cron.Cron
	session *session.Session
	months  *cache.MonthCache
	metrics *observability.Prom
	log     *slog.Logger
}

func New(sess *session.Session, months *cache.MonthCache, metrics *observability.Prom, log *slog.Logger) *Refresher {
	return &Refresher{
		cron:    cron.New(),
		session: sess,
		months:  months,
		metrics: metrics,
		log:     log,
	}
}

// Start schedules the re-fetch. The schedule string uses the cron
// package's syntax, e.g. "@every 5m" or "*/15 * * * *".
func (r *Refresher) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return err
	}

	r.cron.Start()
	r.log.Info("background refresh scheduled", "spec", spec)
	return nil
}

// Stop halts the schedule and waits for a running fetch to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := r.session.Refresh(ctx); err != nil {
		r.metrics.ObserveRefresh("failed")
		r.log.Warn("background refresh failed", "err", err)
		return
	}

	// the month views are served from the cache, drop them along with
	// the replaced list
	if r.months != nil {
		r.months.Clear()
	}

	r.metrics.ObserveRefresh("ok")
	r.log.Debug("background refresh ok")
}
