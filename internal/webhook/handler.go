// Copyright (c) 2026 the Costimizer authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package webhook is the HTTP boundary of the service. It receives signed
// payment-completion events from Stripe, acknowledges them fast, and hands
// the slow generation work to the queue. It also serves the guide
// read-by-id contract the dashboard depends on.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"

	"github.com/smuelmfs/cost-trip-v3/internal/models"
)

// maxBodyBytes caps the webhook payload read. Stripe events are small;
// anything past this is hostile.
const maxBodyBytes = 1 << 20

// JobPublisher enqueues a generation job for the worker.
type JobPublisher interface {
	PublishJob(ctx context.Context, job models.GenerationJob) error
}

// GuideReader serves the read-by-id dashboard contract.
type GuideReader interface {
	GetGuide(ctx context.Context, id uuid.UUID) (*models.GuideRecord, error)
}

// Handler processes payment webhooks and guide reads.
type Handler struct {
	publisher     JobPublisher
	guides        GuideReader
	webhookSecret string
}

// NewHandler creates the HTTP handler. webhookSecret is the shared Stripe
// endpoint secret used to verify event signatures.
func NewHandler(publisher JobPublisher, guides GuideReader, webhookSecret string) *Handler {
	return &Handler{
		publisher:     publisher,
		guides:        guides,
		webhookSecret: webhookSecret,
	}
}

// ServePaymentEvent handles Stripe webhook deliveries.
//
// Flow:
//   - verify the Stripe-Signature header against the shared secret;
//     unverifiable payloads get HTTP 400 and never reach the pipeline
//   - only checkout.session.completed is acted on; everything else is
//     acknowledged and ignored
//   - the session metadata becomes a GenerationJob on the Redis queue and
//     200 is returned immediately — Stripe never waits on generation
//   - an enqueue failure returns 500 so Stripe redelivers the event
func (h *Handler) ServePaymentEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			slog.Warn("webhook payload exceeds size cap", "limit", maxErr.Limit)
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		slog.Error("failed to read webhook body", "error", err)
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		http.Error(w, "missing Stripe signature", http.StatusBadRequest)
		return
	}

	event, err := stripewebhook.ConstructEvent(body, sig, h.webhookSecret)
	if err != nil {
		slog.Warn("webhook signature verification failed", "error", err)
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		slog.Debug("ignoring event type", "type", event.Type, "event_id", event.ID)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ignored")
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		slog.Error("failed to parse checkout session", "event_id", event.ID, "error", err)
		http.Error(w, "malformed event payload", http.StatusBadRequest)
		return
	}

	job := models.GenerationJob{
		ID:         uuid.NewString(),
		EventID:    event.ID,
		Metadata:   session.Metadata,
		EnqueuedAt: time.Now().UTC(),
	}

	if err := h.publisher.PublishJob(r.Context(), job); err != nil {
		// 500 makes Stripe redeliver; the event is not lost.
		slog.Error("failed to enqueue generation job",
			"event_id", event.ID,
			"error", err,
		)
		http.Error(w, "enqueue failed", http.StatusInternalServerError)
		return
	}

	slog.Info("payment event accepted",
		"event_id", event.ID,
		"job_id", job.ID,
	)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

// ServeGuide handles GET /guides/{id}: the persisted guide record as JSON.
func (h *Handler) ServeGuide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/guides/")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid guide id"})
		return
	}

	rec, err := h.guides.GetGuide(r.Context(), id)
	if err != nil {
		slog.Error("guide lookup failed", "guide_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "guide not found"})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// ServeHealth reports liveness.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
