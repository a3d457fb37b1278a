package web

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/agendahub/internal/cache"
	"github.com/geocoder89/agendahub/internal/domain/event"
	"github.com/geocoder89/agendahub/internal/gateway"
	"github.com/geocoder89/agendahub/internal/notify"
	"github.com/geocoder89/agendahub/internal/session"
	"github.com/geocoder89/agendahub/internal/store"
)

// MonthLister is the slice of the gateway the month view needs.
type MonthLister interface {
	ListMonth(ctx context.Context, month string) ([]event.Event, error)
}

type Handler struct {
	sess          *session.Session
	store         *store.Store
	months        *cache.MonthCache
	lister        MonthLister
	notices       *notify.Buffer
	upcomingLimit int
}

func NewHandler(sess *session.Session, st *store.Store, lister MonthLister, notices *notify.Buffer, months *cache.MonthCache, upcomingLimit int) *Handler {
	if upcomingLimit <= 0 {
		upcomingLimit = 5
	}
	return &Handler{
		sess:          sess,
		store:         st,
		months:        months,
		lister:        lister,
		notices:       notices,
		upcomingLimit: upcomingLimit,
	}
}

// widget callback payloads; binding tags guard shape, the domain validator
// owns the real form rules

type dayClickRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}

type eventClickRequest struct {
	ID int64 `json:"id" binding:"required,min=1"`
}

type draftRequest struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// tableRow is an event as the events table renders it: date in display
// form, ISO kept alongside for sorting.
type tableRow struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	ISODate  string `json:"isoDate"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func toRows(records []event.Event) []tableRow {
	rows := make([]tableRow, 0, len(records))
	for _, e := range records {
		rows = append(rows, tableRow{
			ID:       e.ID,
			Title:    e.Title,
			Date:     e.DisplayDate(),
			ISODate:  e.Date,
			Location: e.Location,
			Notes:    e.Notes,
		})
	}
	return rows
}

// Calendar serves the widget projection. ETagged: the widget re-polls and
// an unchanged list costs a 304.
func (h *Handler) Calendar(ctx *gin.Context) {
	items := h.store.CalendarEvents()
	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Events serves the table view: the held snapshot, or one month fetched
// from the remote store when a month filter is given.
func (h *Handler) Events(ctx *gin.Context) {
	month := ctx.Query("month")

	if month == "" {
		rows := toRows(h.store.Snapshot())
		ctx.JSON(http.StatusOK, gin.H{"items": rows, "count": len(rows)})
		return
	}

	if !monthPattern.MatchString(month) {
		RespondBadRequest(ctx, "month must be YYYY-MM", nil)
		return
	}

	records, ok := h.months.Get(month)
	if !ok {
		var err error
		records, err = h.lister.ListMonth(ctx.Request.Context(), month)
		if err != nil {
			respondGatewayError(ctx, err)
			return
		}
		h.months.Set(month, records)
	}

	rows := toRows(records)
	ctx.JSON(http.StatusOK, gin.H{"items": rows, "count": len(rows), "month": month})
}

func (h *Handler) Upcoming(ctx *gin.Context) {
	limit := h.upcomingLimit

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondBadRequest(ctx, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	rows := toRows(h.store.Upcoming(limit))
	ctx.JSON(http.StatusOK, gin.H{"items": rows, "count": len(rows)})
}

// HasEvent answers the mini-calendar's day-marker lookups. The date may be
// in either display or ISO form.
func (h *Handler) HasEvent(ctx *gin.Context) {
	date := ctx.Query("date")
	if date == "" {
		RespondBadRequest(ctx, "date query parameter is required", nil)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"date": date, "hasEvent": h.store.HasEventOn(date)})
}

func (h *Handler) Dialog(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.sess.Dialog())
}

func (h *Handler) DayClick(ctx *gin.Context) {
	var req dayClickRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if err := h.sess.OpenCreate(req.Date); err != nil {
		RespondConflict(ctx, "dialog_open", "Close the current dialog first")
		return
	}

	ctx.JSON(http.StatusOK, h.sess.Dialog())
}

func (h *Handler) EventClick(ctx *gin.Context) {
	var req eventClickRequest
	if !BindJSON(ctx, &req) {
		return
	}

	switch err := h.sess.OpenView(req.ID); {
	case errors.Is(err, event.ErrNotFound):
		RespondNotFound(ctx, "Event not found")
		return
	case err != nil:
		RespondConflict(ctx, "dialog_open", "Close the current dialog first")
		return
	}

	ctx.JSON(http.StatusOK, h.sess.Dialog())
}

func (h *Handler) BeginEdit(ctx *gin.Context) {
	switch err := h.sess.BeginEdit(); {
	case errors.Is(err, event.ErrNotFound):
		RespondNotFound(ctx, "Event not found")
		return
	case err != nil:
		RespondConflict(ctx, "invalid_transition", "No record is open for viewing")
		return
	}

	ctx.JSON(http.StatusOK, h.sess.Dialog())
}

func (h *Handler) RequestDelete(ctx *gin.Context) {
	if err := h.sess.RequestDelete(); err != nil {
		RespondConflict(ctx, "invalid_transition", "No record is open")
		return
	}

	ctx.JSON(http.StatusOK, h.sess.Dialog())
}

func (h *Handler) Cancel(ctx *gin.Context) {
	if err := h.sess.Cancel(); err != nil {
		RespondConflict(ctx, "invalid_transition", "No dialog is open")
		return
	}

	ctx.JSON(http.StatusOK, h.sess.Dialog())
}

func (h *Handler) Submit(ctx *gin.Context) {
	var req draftRequest
	if !BindJSON(ctx, &req) {
		return
	}

	draft := event.Draft{
		Title:    req.Title,
		Date:     req.Date,
		Location: req.Location,
		Notes:    req.Notes,
	}

	fieldErrs, err := h.sess.Submit(ctx.Request.Context(), draft)

	switch {
	case errors.Is(err, session.ErrInvalidTransition):
		RespondConflict(ctx, "invalid_transition", "No form is open for submission")
		return
	case err != nil:
		respondGatewayError(ctx, err)
		return
	case !fieldErrs.Valid():
		RespondError(ctx, http.StatusUnprocessableEntity, "validation_failed",
			"Event validation failed", gin.H{"fields": fieldErrs})
		return
	}

	h.months.Clear()
	ctx.JSON(http.StatusOK, h.sess.Dialog())
}

func (h *Handler) ConfirmDelete(ctx *gin.Context) {
	switch err := h.sess.ConfirmDelete(ctx.Request.Context()); {
	case errors.Is(err, session.ErrInvalidTransition):
		RespondConflict(ctx, "invalid_transition", "No deletion is staged")
		return
	case err != nil:
		respondGatewayError(ctx, err)
		return
	}

	h.months.Clear()
	ctx.JSON(http.StatusOK, h.sess.Dialog())
}

func (h *Handler) Refresh(ctx *gin.Context) {
	if err := h.sess.Refresh(ctx.Request.Context()); err != nil {
		respondGatewayError(ctx, err)
		return
	}

	h.months.Clear()
	ctx.Status(http.StatusNoContent)
}

// Notices drains pending toasts to the polling browser surface.
func (h *Handler) Notices(ctx *gin.Context) {
	items := h.notices.Drain()
	if items == nil {
		items = []notify.Notice{}
	}
	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Readyz(ctx *gin.Context) {
	if !h.sess.Synced() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "no sync with remote store yet"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// respondGatewayError maps the gateway taxonomy onto the host's responses:
// remote rejections pass the server's status and wording through, transport
// failures read as 503, anything else as 502.
func respondGatewayError(ctx *gin.Context, err error) {
	var rejection *gateway.RemoteRejection
	if errors.As(err, &rejection) {
		status := rejection.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		message := rejection.Message
		if message == "" {
			message = "The calendar service rejected the request"
		}
		RespondError(ctx, status, "remote_rejection", message, nil)
		return
	}

	var transport *gateway.TransportError
	if errors.As(err, &transport) {
		RespondError(ctx, http.StatusServiceUnavailable, "remote_unreachable",
			"Cannot reach the calendar service", nil)
		return
	}

	RespondError(ctx, http.StatusBadGateway, "remote_error",
		"The calendar service call failed", nil)
}
