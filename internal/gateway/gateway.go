package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/geocoder89/agendahub/internal/domain/event"
	"github.com/geocoder89/agendahub/internal/observability"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 1 << 20
)

type Config struct {
	// BaseURL is the remote store's API root, e.g. "http://localhost:5000/api".
	BaseURL string
	Timeout time.Duration
}

// Gateway translates event intents into HTTP calls against the remote store
// and folds every failure into the TransportError / RemoteRejection /
// UnknownFailure taxonomy. No retries: a failed call surfaces immediately
// and the user re-triggers.
type Gateway struct {
	base    string
	client  *http.Client
	log     *slog.Logger
	metrics *observability.Prom
	tracer  trace.Tracer
}

func New(cfg Config, log *slog.Logger, metrics *observability.Prom) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Gateway{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
		metrics: metrics,
		tracer:  otel.Tracer("agendahub/gateway"),
	}
}

// Probe checks remote connectivity once at startup. The result is purely
// informational; nothing gates on it afterwards.
func (g *Gateway) Probe(ctx context.Context) error {
	return g.do(ctx, "probe remote store", http.MethodGet, "/test", nil, nil)
}

// List fetches the full event collection in server order.
func (g *Gateway) List(ctx context.Context) ([]event.Event, error) {
	var out []event.Event
	if err := g.do(ctx, "list events", http.MethodGet, "/events", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []event.Event{}
	}
	return out, nil
}

// ListMonth fetches only the events of one month, month given as YYYY-MM.
func (g *Gateway) ListMonth(ctx context.Context, month string) ([]event.Event, error) {
	var out []event.Event
	path := "/events?month=" + url.QueryEscape(month)
	if err := g.do(ctx, "list events", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []event.Event{}
	}
	return out, nil
}

// Create submits a validated draft and returns the server-assigned record.
func (g *Gateway) Create(ctx context.Context, draft event.Draft) (event.Event, error) {
	var out event.Event
	if err := g.do(ctx, "create event", http.MethodPost, "/events", draft, &out); err != nil {
		return event.Event{}, err
	}
	return out, nil
}

// Update replaces the record behind id with the validated draft.
func (g *Gateway) Update(ctx context.Context, id int64, draft event.Draft) (event.Event, error) {
	var out event.Event
	path := fmt.Sprintf("/events/%d", id)
	if err := g.do(ctx, "update event", http.MethodPut, path, draft, &out); err != nil {
		return event.Event{}, err
	}
	return out, nil
}

// Delete removes the record behind id from the remote store.
func (g *Gateway) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/events/%d", id)
	return g.do(ctx, "delete event", http.MethodDelete, path, nil, nil)
}

func (g *Gateway) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()

	ctx, span := g.tracer.Start(ctx, op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	err := g.roundTrip(ctx, op, method, path, body, out)

	outcome := classify(err)
	g.metrics.ObserveGatewayOp(op, outcome, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.log.ErrorContext(ctx, "gateway call failed",
			"op", op,
			"method", method,
			"path", path,
			"outcome", outcome,
			"err", err,
		)
		return err
	}

	span.SetStatus(codes.Ok, "")
	g.log.DebugContext(ctx, "gateway call ok",
		"op", op,
		"method", method,
		"path", path,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (g *Gateway) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &UnknownFailure{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, reader)
	if err != nil {
		return &UnknownFailure{Op: op, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &UnknownFailure{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteRejection{
			Op:      op,
			Status:  resp.StatusCode,
			Message: rejectionMessage(data),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &UnknownFailure{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// rejectionMessage digs the server's own wording out of an error body. The
// remote store answers with a flat {"error": "msg"}; the enveloped
// {"error": {"message": "msg"}} shape is accepted as well.
func rejectionMessage(body []byte) string {
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}

	var enveloped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &enveloped); err == nil && enveloped.Error.Message != "" {
		return enveloped.Error.Message
	}

	return ""
}

func classify(err error) string {
	if err == nil {
		return "ok"
	}

	var transport *TransportError
	if errors.As(err, &transport) {
		return "transport"
	}

	var rejection *RemoteRejection
	if errors.As(err, &rejection) {
		return "rejected"
	}

	return "unknown"
}
