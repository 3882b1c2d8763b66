// Package notify delivers unlock and top-up events to the external
// notification dispatcher. Events are enqueued inside the same database
// transaction as the business write, so an event exists if and only if the
// write committed. The dispatcher owns no logic; it just receives the event.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
)

const (
	EventLeadUnlocked = "lead_unlocked"
	EventTopupApplied = "topup_applied"
)

type EventArgs struct {
	Event     string     `json:"event"`
	AccountID uuid.UUID  `json:"account_id"`
	LeadID    *uuid.UUID `json:"lead_id,omitempty"`
	Credits   int        `json:"credits"` // charged (unlock) or credited (top-up)
}

func (EventArgs) Kind() string { return "notify_event" }

// EnqueueTxFunc enqueues an event within the given transaction. Provided by
// main as a closure over river.Client.InsertTx; nil disables delivery.
type EnqueueTxFunc func(ctx context.Context, tx pgx.Tx, args EventArgs) error

// Worker posts events to the dispatcher endpoint. A non-2xx response is
// returned as an error so River retries delivery.
type Worker struct {
	river.WorkerDefaults[EventArgs]
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger
}

func NewWorker(endpoint string, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (w *Worker) Work(ctx context.Context, job *river.Job[EventArgs]) error {
	if w.endpoint == "" {
		w.log.Debug("notification dispatcher not configured, dropping event", "event", job.Args.Event)
		return nil
	}

	body, err := json.Marshal(job.Args)
	if err != nil {
		return fmt.Errorf("marshal notify event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notify event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification dispatcher returned status %d", resp.StatusCode)
	}
	return nil
}
