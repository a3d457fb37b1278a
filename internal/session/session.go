package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/agendahub/internal/dateformat"
	"github.com/geocoder89/agendahub/internal/domain/event"
	"github.com/geocoder89/agendahub/internal/gateway"
	"github.com/geocoder89/agendahub/internal/notify"
	"github.com/geocoder89/agendahub/internal/snapshot"
	"github.com/geocoder89/agendahub/internal/store"
	"github.com/geocoder89/agendahub/internal/validate"
)

// DialogState is the single finite state of the dialog surface. One value
// instead of independent open/closed booleans per modal, so "delete confirm
// on top of an unopened record" cannot be represented at all.
type DialogState string

const (
	DialogClosed        DialogState = "closed"
	DialogCreate        DialogState = "create"
	DialogView          DialogState = "view"
	DialogEdit          DialogState = "edit"
	DialogConfirmDelete DialogState = "confirm-delete"
)

var ErrInvalidTransition = errors.New("invalid dialog transition")

// Gateway is the slice of the HTTP gateway the session drives.
type Gateway interface {
	Probe(ctx context.Context) error
	List(ctx context.Context) ([]event.Event, error)
	Create(ctx context.Context, draft event.Draft) (event.Event, error)
	Update(ctx context.Context, id int64, draft event.Draft) (event.Event, error)
	Delete(ctx context.Context, id int64) error
}

// Session owns the dialog state machine and the validate → submit →
// re-fetch control flow. All methods serialize on one mutex: user
// interactions are discrete tasks, never concurrent against each other.
// Two racing updates to the same record are still last-write-wins on the
// remote side; the session does not add a version token.
type Session struct {
	mu       sync.Mutex
	state    DialogState
	selected int64
	draft    event.Draft
	fieldErr validate.Errors
	synced   bool

	store    *store.Store
	gw       Gateway
	notifier notify.Notifier
	snap     snapshot.Store
	log      *slog.Logger
	now      func() time.Time
}

func New(st *store.Store, gw Gateway, notifier notify.Notifier, snap snapshot.Store, log *slog.Logger) *Session {
	if snap == nil {
		snap = snapshot.Noop{}
	}
	return &Session{
		state:    DialogClosed,
		store:    st,
		gw:       gw,
		notifier: notifier,
		snap:     snap,
		log:      log,
		now:      time.Now,
	}
}

// DialogSnapshot is the dialog surface as of one moment, for rendering.
type DialogSnapshot struct {
	State       DialogState     `json:"state"`
	SelectedID  int64           `json:"selectedId,omitempty"`
	Selected    *event.Event    `json:"selected,omitempty"`
	Draft       *event.Draft    `json:"draft,omitempty"`
	FieldErrors validate.Errors `json:"fieldErrors,omitempty"`
}

func (s *Session) Dialog() DialogSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := DialogSnapshot{State: s.state}

	if s.selected != 0 {
		v.SelectedID = s.selected
		if e, ok := s.store.FindByID(s.selected); ok {
			v.Selected = &e
		}
	}
	if s.state == DialogCreate || s.state == DialogEdit {
		draft := s.draft
		v.Draft = &draft
		v.FieldErrors = s.fieldErr
	}
	return v
}

// Synced reports whether at least one fetch against the remote store has
// succeeded since startup. The host's readiness probe reflects it.
func (s *Session) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// OpenCreate handles a day click: opens the create dialog with the clicked
// day prefilled in display form. The widget hands the day over in ISO.
func (s *Session) OpenCreate(isoDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != DialogClosed {
		return ErrInvalidTransition
	}

	s.state = DialogCreate
	s.selected = 0
	s.draft = event.Draft{Date: dateformat.ToDisplay(isoDate)}
	s.fieldErr = nil
	return nil
}

// OpenView handles an event click: opens the details dialog on a record
// already held in the store.
func (s *Session) OpenView(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != DialogClosed {
		return ErrInvalidTransition
	}
	if _, ok := s.store.FindByID(id); !ok {
		return event.ErrNotFound
	}

	s.state = DialogView
	s.selected = id
	s.fieldErr = nil
	return nil
}

// BeginEdit stages the viewed record into a draft copy. The record itself
// is never edited in place.
func (s *Session) BeginEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != DialogView {
		return ErrInvalidTransition
	}

	e, ok := s.store.FindByID(s.selected)
	if !ok {
		// record vanished between view and edit (background re-fetch)
		s.reset()
		return event.ErrNotFound
	}

	s.state = DialogEdit
	s.draft = e.StageDraft()
	s.fieldErr = nil
	return nil
}

// RequestDelete moves to the delete confirmation step.
func (s *Session) RequestDelete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != DialogView && s.state != DialogEdit {
		return ErrInvalidTransition
	}

	s.state = DialogConfirmDelete
	return nil
}

// Cancel closes any open dialog and discards the staged draft.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == DialogClosed {
		return ErrInvalidTransition
	}

	s.reset()
	return nil
}

// Submit validates the draft and sends it: create in the create dialog,
// update in the edit dialog. A non-empty Errors return means validation
// blocked the submission and the dialog stayed open; the draft never
// reached the network. A gateway error also leaves the dialog open and the
// store untouched.
func (s *Session) Submit(ctx context.Context, draft event.Draft) (validate.Errors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var op string
	switch s.state {
	case DialogCreate:
		op = "create event"
	case DialogEdit:
		op = "update event"
	default:
		return nil, ErrInvalidTransition
	}

	s.draft = draft

	errs := validate.Validate(draft, dateformat.FromTime(s.now()))
	if !errs.Valid() {
		s.fieldErr = errs
		return errs, nil
	}
	s.fieldErr = nil

	var err error
	if s.state == DialogCreate {
		_, err = s.gw.Create(ctx, draft)
	} else {
		_, err = s.gw.Update(ctx, s.selected, draft)
	}

	if err != nil {
		s.notifier.Notify(ctx, failureNotice(err, op), notify.KindError)
		return nil, err
	}

	if s.state == DialogCreate {
		s.notifier.Notify(ctx, "Event created successfully", notify.KindSuccess)
	} else {
		s.notifier.Notify(ctx, "Event updated successfully", notify.KindSuccess)
	}

	s.refetchLocked(ctx)
	s.reset()
	return nil, nil
}

// ConfirmDelete performs the staged deletion.
func (s *Session) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != DialogConfirmDelete {
		return ErrInvalidTransition
	}

	if err := s.gw.Delete(ctx, s.selected); err != nil {
		// no re-fetch on failure, the store stays as it was
		s.notifier.Notify(ctx, failureNotice(err, "delete event"), notify.KindError)
		return err
	}

	s.notifier.Notify(ctx, "Event deleted successfully", notify.KindSuccess)
	s.refetchLocked(ctx)
	s.reset()
	return nil
}

// Refresh re-fetches the full list into the store. Used by the background
// refresher and the manual refresh control.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refetchLocked(ctx)
}

// Startup runs the one-time connectivity probe (informational only) and the
// initial fetch. When the remote store is unreachable, the last snapshot is
// loaded instead so the calendar still renders.
func (s *Session) Startup(ctx context.Context) {
	if err := s.gw.Probe(ctx); err != nil {
		s.notifier.Notify(ctx, "Cannot reach the calendar service. Showing last known events.", notify.KindError)
	} else {
		s.notifier.Notify(ctx, "Connected to the calendar service", notify.KindSuccess)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refetchLocked(ctx); err == nil {
		return
	}

	records, err := s.snap.Load(ctx)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNoSnapshot) {
			s.log.Warn("snapshot load failed", "err", err)
		}
		return
	}

	s.store.ReplaceAll(records)
	s.log.Info("store seeded from snapshot", "count", len(records))
}

func (s *Session) refetchLocked(ctx context.Context) error {
	records, err := s.gw.List(ctx)
	if err != nil {
		s.notifier.Notify(ctx, failureNotice(err, "load events"), notify.KindError)
		return err
	}

	s.store.ReplaceAll(records)
	s.synced = true

	if err := s.snap.Save(ctx, records); err != nil {
		// best effort, the in-memory store is already current
		s.log.Warn("snapshot save failed", "err", err)
	}
	return nil
}

func (s *Session) reset() {
	s.state = DialogClosed
	s.selected = 0
	s.draft = event.Draft{}
	s.fieldErr = nil
}

// failureNotice picks the user-facing wording for a gateway failure: the
// server's own message when it sent one, a connectivity notice for
// transport failures, a generic line otherwise.
func failureNotice(err error, op string) string {
	var rejection *gateway.RemoteRejection
	if errors.As(err, &rejection) && rejection.Message != "" {
		return rejection.Message
	}

	var transport *gateway.TransportError
	if errors.As(err, &transport) {
		return "Cannot reach the calendar service. Please check your connection."
	}

	return "Failed to " + op
}
