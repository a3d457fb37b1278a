package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/geocoder89/agendahub/internal/cache"
	"github.com/geocoder89/agendahub/internal/domain/event"
	"github.com/geocoder89/agendahub/internal/notify"
	"github.com/geocoder89/agendahub/internal/session"
	"github.com/geocoder89/agendahub/internal/snapshot"
	"github.com/geocoder89/agendahub/internal/store"
)

type fakeGateway struct {
	listFn func(ctx context.Context) ([]event.Event, error)
}

func (f *fakeGateway) Probe(ctx context.Context) error { return nil }

func (f *fakeGateway) List(ctx context.Context) ([]event.Event, error) {
	return f.listFn(ctx)
}

func (f *fakeGateway) Create(ctx context.Context, draft event.Draft) (event.Event, error) {
	return event.Event{}, nil
}

func (f *fakeGateway) Update(ctx context.Context, id int64, draft event.Draft) (event.Event, error) {
	return event.Event{}, nil
}

func (f *fakeGateway) Delete(ctx context.Context, id int64) error { return nil }

func newRefresher(gw *fakeGateway) (*Refresher, *store.Store, *cache.MonthCache) {
	st := store.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(st, gw, notify.NewBuffer(4), snapshot.Noop{}, log)
	months := cache.NewMonthCache(time.Hour)
	return New(sess, months, nil, log), st, months
}

func TestRunReplacesStoreAndDropsMonthViews(t *testing.T) {
	fetched := []event.Event{{ID: 9, Title: "Planning day", Date: "2100-04-12"}}
	gw := &fakeGateway{
		listFn: func(ctx context.Context) ([]event.Event, error) { return fetched, nil },
	}

	r, st, months := newRefresher(gw)
	months.Set("2100-04", []event.Event{{ID: 1, Title: "Old entry", Date: "2100-04-01"}})

	r.run()

	if st.Len() != 1 {
		t.Fatalf("store len = %d", st.Len())
	}
	if _, ok := st.FindByID(9); !ok {
		t.Fatal("fetched record missing from store")
	}
	// a cached month view from before the sync must not survive it
	if _, ok := months.Get("2100-04"); ok {
		t.Fatal("stale month view still cached after sync")
	}
}

func TestFailedRunKeepsMonthViews(t *testing.T) {
	gw := &fakeGateway{
		listFn: func(ctx context.Context) ([]event.Event, error) {
			return nil, errors.New("remote down")
		},
	}

	r, _, months := newRefresher(gw)
	months.Set("2100-04", []event.Event{{ID: 1, Title: "Old entry", Date: "2100-04-01"}})

	r.run()

	if _, ok := months.Get("2100-04"); !ok {
		t.Fatal("failed sync should leave the cache alone")
	}
}
