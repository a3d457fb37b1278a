package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/agendahub/internal/domain/event"
	"github.com/geocoder89/agendahub/internal/gateway"
	"github.com/geocoder89/agendahub/internal/notify"
	"github.com/geocoder89/agendahub/internal/session"
	"github.com/geocoder89/agendahub/internal/snapshot"
	"github.com/geocoder89/agendahub/internal/store"
	"github.com/geocoder89/agendahub/internal/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	listFn      func(ctx context.Context) ([]event.Event, error)
	listMonthFn func(ctx context.Context, month string) ([]event.Event, error)
	createFn    func(ctx context.Context, draft event.Draft) (event.Event, error)
	updateFn    func(ctx context.Context, id int64, draft event.Draft) (event.Event, error)
	deleteFn    func(ctx context.Context, id int64) error
}

func (f *fakeGateway) Probe(ctx context.Context) error { return nil }

func (f *fakeGateway) List(ctx context.Context) ([]event.Event, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []event.Event{}, nil
}

func (f *fakeGateway) ListMonth(ctx context.Context, month string) ([]event.Event, error) {
	if f.listMonthFn != nil {
		return f.listMonthFn(ctx, month)
	}
	return []event.Event{}, nil
}

func (f *fakeGateway) Create(ctx context.Context, draft event.Draft) (event.Event, error) {
	if f.createFn != nil {
		return f.createFn(ctx, draft)
	}
	return event.Event{}, nil
}

func (f *fakeGateway) Update(ctx context.Context, id int64, draft event.Draft) (event.Event, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, draft)
	}
	return event.Event{}, nil
}

func (f *fakeGateway) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type harness struct {
	router *gin.Engine
	store  *store.Store
	sess   *session.Session
}

func newHarness(gw *fakeGateway) *harness {
	st := store.New()
	buf := notify.NewBuffer(16)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(st, gw, buf, snapshot.Noop{}, log)

	cfg := web.RouterConfig{Env: "dev", UpcomingLimit: 5}
	router := web.NewRouter(cfg, log, sess, st, gw, buf, nil, nil, nil)

	return &harness{router: router, store: st, sess: sess}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestCalendarProjection(t *testing.T) {
	h := newHarness(&fakeGateway{})
	h.store.ReplaceAll([]event.Event{
		{ID: 1, Title: "Team standup", Date: "2100-03-05"},
		{ID: 2, Title: "Legacy row", Date: "07/03/2100"},
	})

	w := h.do(t, http.MethodGet, "/api/ui/calendar", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []event.CalendarEvent `json:"items"`
		Count int                   `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d", resp.Count)
	}
	if resp.Items[1].Date != "2100-03-07" {
		t.Fatalf("widget dates must be ISO, got %q", resp.Items[1].Date)
	}
}

func TestCalendarETagRevalidation(t *testing.T) {
	h := newHarness(&fakeGateway{})
	h.store.ReplaceAll([]event.Event{{ID: 1, Title: "Team standup", Date: "2100-03-05"}})

	first := h.do(t, http.MethodGet, "/api/ui/calendar", "")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("calendar response should carry an ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/ui/calendar", nil)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("status %d, want 304", w.Code)
	}
}

func TestDayClickOpensCreateDialog(t *testing.T) {
	h := newHarness(&fakeGateway{})

	w := h.do(t, http.MethodPost, "/api/ui/day-click", `{"date":"2100-03-06"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", w.Code, w.Body.String())
	}

	var dialog session.DialogSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &dialog); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dialog.State != session.DialogCreate {
		t.Fatalf("state = %s", dialog.State)
	}
	if dialog.Draft == nil || dialog.Draft.Date != "06/03/2100" {
		t.Fatalf("prefilled draft = %+v", dialog.Draft)
	}
}

func TestDayClickRejectsNonISODate(t *testing.T) {
	h := newHarness(&fakeGateway{})

	w := h.do(t, http.MethodPost, "/api/ui/day-click", `{"date":"06/03/2100"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400; body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Error struct {
			Details struct {
				Fields []web.FieldError `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Error.Details.Fields) == 0 || resp.Error.Details.Fields[0].Field != "date" {
		t.Fatalf("want a binding error on date, got %+v", resp.Error.Details.Fields)
	}
}

func TestSubmitInvalidDraftReturns422(t *testing.T) {
	h := newHarness(&fakeGateway{})

	if w := h.do(t, http.MethodPost, "/api/ui/day-click", `{"date":"2100-03-06"}`); w.Code != http.StatusOK {
		t.Fatalf("day-click failed: %d", w.Code)
	}

	w := h.do(t, http.MethodPost, "/api/ui/dialog/submit", `{"title":"abc","date":"junk","notes":""}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422; body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields map[string][]string `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Code != "validation_failed" {
		t.Fatalf("code = %s", resp.Error.Code)
	}
	if len(resp.Error.Details.Fields["title"]) == 0 || len(resp.Error.Details.Fields["date"]) == 0 {
		t.Fatalf("missing field errors: %+v", resp.Error.Details.Fields)
	}
}

func TestSubmitHappyPathClosesDialogAndRefetches(t *testing.T) {
	created := event.Event{ID: 7, Title: "Go meetup", Date: "2100-03-06"}
	gw := &fakeGateway{
		createFn: func(ctx context.Context, draft event.Draft) (event.Event, error) {
			return created, nil
		},
		listFn: func(ctx context.Context) ([]event.Event, error) {
			return []event.Event{created}, nil
		},
	}
	h := newHarness(gw)

	h.do(t, http.MethodPost, "/api/ui/day-click", `{"date":"2100-03-06"}`)

	w := h.do(t, http.MethodPost, "/api/ui/dialog/submit", `{"title":"Go meetup","date":"06/03/2100"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", w.Code, w.Body.String())
	}

	var dialog session.DialogSnapshot
	json.Unmarshal(w.Body.Bytes(), &dialog)
	if dialog.State != session.DialogClosed {
		t.Fatalf("state = %s", dialog.State)
	}

	if _, ok := h.store.FindByID(7); !ok {
		t.Fatal("store should hold the created record after the re-fetch")
	}

	// the toast surface sees the success notice
	nw := h.do(t, http.MethodGet, "/api/ui/notices", "")
	var notices struct {
		Items []notify.Notice `json:"items"`
	}
	json.Unmarshal(nw.Body.Bytes(), &notices)
	if len(notices.Items) != 1 || notices.Items[0].Kind != notify.KindSuccess {
		t.Fatalf("notices = %+v", notices.Items)
	}
}

func TestSubmitRemoteRejectionPassesMessageThrough(t *testing.T) {
	gw := &fakeGateway{
		createFn: func(ctx context.Context, draft event.Draft) (event.Event, error) {
			return event.Event{}, &gateway.RemoteRejection{
				Op: "create event", Status: http.StatusBadRequest,
				Message: "Notes must be maximum 23 words (currently 31)",
			}
		},
	}
	h := newHarness(gw)

	h.do(t, http.MethodPost, "/api/ui/day-click", `{"date":"2100-03-06"}`)

	w := h.do(t, http.MethodPost, "/api/ui/dialog/submit", `{"title":"Go meetup","date":"06/03/2100"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want the remote's own 400", w.Code)
	}

	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Message != "Notes must be maximum 23 words (currently 31)" {
		t.Fatalf("message = %q", resp.Error.Message)
	}
}

func TestEventClickUnknownID(t *testing.T) {
	h := newHarness(&fakeGateway{})

	w := h.do(t, http.MethodPost, "/api/ui/event-click", `{"id":99}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
}

func TestSubmitWithoutOpenDialog(t *testing.T) {
	h := newHarness(&fakeGateway{})

	w := h.do(t, http.MethodPost, "/api/ui/dialog/submit", `{"title":"Go meetup","date":"06/03/2100"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", w.Code)
	}
}

func TestMonthViewValidatesAndCaches(t *testing.T) {
	calls := 0
	gw := &fakeGateway{
		listMonthFn: func(ctx context.Context, month string) ([]event.Event, error) {
			calls++
			return []event.Event{{ID: 1, Title: "March thing", Date: "2100-03-10"}}, nil
		},
	}
	h := newHarness(gw)

	if w := h.do(t, http.MethodGet, "/api/ui/events?month=bogus", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bogus month: status %d", w.Code)
	}

	for i := 0; i < 3; i++ {
		if w := h.do(t, http.MethodGet, "/api/ui/events?month=2100-03", ""); w.Code != http.StatusOK {
			t.Fatalf("status %d", w.Code)
		}
	}
	if calls != 1 {
		t.Fatalf("month fetch not cached: %d remote calls", calls)
	}
}

func TestHasEvent(t *testing.T) {
	h := newHarness(&fakeGateway{})
	h.store.ReplaceAll([]event.Event{{ID: 1, Title: "Team standup", Date: "2100-03-05"}})

	w := h.do(t, http.MethodGet, "/api/ui/has-event?date=05/03/2100", "")
	var resp struct {
		HasEvent bool `json:"hasEvent"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.HasEvent {
		t.Fatalf("expected a hit, body=%s", w.Body.String())
	}
}

func TestReadyzBeforeFirstSync(t *testing.T) {
	h := newHarness(&fakeGateway{})

	if w := h.do(t, http.MethodGet, "/readyz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz before sync: status %d", w.Code)
	}

	if err := h.sess.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if w := h.do(t, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz after sync: status %d", w.Code)
	}
}

func TestRequireJSONOnBodiedPost(t *testing.T) {
	h := newHarness(&fakeGateway{})

	req := httptest.NewRequest(http.MethodPost, "/api/ui/day-click", bytes.NewBufferString(`{"date":"2100-03-06"}`))
	req.Header.Set("Content-Type", "text/plain")

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status %d, want 415", w.Code)
	}
}
