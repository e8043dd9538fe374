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

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"

	"github.com/smuelmfs/cost-trip-v3/internal/models"
)

const testSecret = "whsec_test_secret"

type fakePublisher struct {
	jobs []models.GenerationJob
	err  error
}

func (f *fakePublisher) PublishJob(ctx context.Context, job models.GenerationJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeGuides struct {
	records map[uuid.UUID]*models.GuideRecord
	err     error
}

func (f *fakeGuides) GetGuide(ctx context.Context, id uuid.UUID) (*models.GuideRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[id], nil
}

// stripeSignature computes the v1 scheme Stripe uses: hex HMAC-SHA256 of
// "<timestamp>.<payload>" keyed with the endpoint secret.
func stripeSignature(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func checkoutEventBody(t *testing.T, eventType string, metadata map[string]string) []byte {
	t.Helper()
	session, err := json.Marshal(map[string]any{
		"id":       "cs_test_1",
		"metadata": metadata,
	})
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	// ConstructEvent rejects events from a different API version than the
	// one the client library pins.
	body, err := json.Marshal(map[string]any{
		"id":          "evt_123",
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"data":        map[string]any{"object": json.RawMessage(session)},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return body
}

func postEvent(h *Handler, body []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", strings.NewReader(string(body)))
	if sig != "" {
		req.Header.Set("Stripe-Signature", sig)
	}
	w := httptest.NewRecorder()
	h.ServePaymentEvent(w, req)
	return w
}

func TestServePaymentEventAccepts(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub, &fakeGuides{}, testSecret)

	metadata := map[string]string{
		"userName":    "Ana",
		"userEmail":   "ana@example.com",
		"destination": "Lisbon",
		"days":        "4",
	}
	body := checkoutEventBody(t, "checkout.session.completed", metadata)
	w := postEvent(h, body, stripeSignature(t, body, testSecret, time.Now()))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if len(pub.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(pub.jobs))
	}
	job := pub.jobs[0]
	if job.EventID != "evt_123" {
		t.Errorf("job EventID = %q, want evt_123", job.EventID)
	}
	if job.ID == "" {
		t.Error("job ID is empty")
	}
	if job.Metadata["destination"] != "Lisbon" || job.Metadata["days"] != "4" {
		t.Errorf("job metadata = %v", job.Metadata)
	}
}

func TestServePaymentEventRejectsBadSignatures(t *testing.T) {
	body := checkoutEventBody(t, "checkout.session.completed", map[string]string{"userName": "Ana"})

	tests := []struct {
		name string
		sig  string
	}{
		{name: "missing header", sig: ""},
		{name: "garbage header", sig: "t=1,v1=deadbeef"},
		{name: "wrong secret", sig: stripeSignature(t, body, "whsec_other", time.Now())},
		{name: "stale timestamp", sig: stripeSignature(t, body, testSecret, time.Now().Add(-time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			h := NewHandler(pub, &fakeGuides{}, testSecret)

			w := postEvent(h, body, tt.sig)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if len(pub.jobs) != 0 {
				t.Errorf("unverified payload enqueued %d jobs", len(pub.jobs))
			}
		})
	}
}

func TestServePaymentEventTamperedBody(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub, &fakeGuides{}, testSecret)

	body := checkoutEventBody(t, "checkout.session.completed", map[string]string{"userName": "Ana"})
	sig := stripeSignature(t, body, testSecret, time.Now())
	tampered := []byte(strings.Replace(string(body), "Ana", "Eve", 1))

	w := postEvent(h, tampered, sig)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for tampered body", w.Code)
	}
	if len(pub.jobs) != 0 {
		t.Errorf("tampered payload enqueued %d jobs", len(pub.jobs))
	}
}

func TestServePaymentEventIgnoresOtherTypes(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub, &fakeGuides{}, testSecret)

	body := checkoutEventBody(t, "invoice.paid", map[string]string{"userName": "Ana"})
	w := postEvent(h, body, stripeSignature(t, body, testSecret, time.Now()))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for ignored type", w.Code)
	}
	if len(pub.jobs) != 0 {
		t.Errorf("ignored event type enqueued %d jobs", len(pub.jobs))
	}
}

func TestServePaymentEventEnqueueFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	h := NewHandler(pub, &fakeGuides{}, testSecret)

	body := checkoutEventBody(t, "checkout.session.completed", map[string]string{"userName": "Ana"})
	w := postEvent(h, body, stripeSignature(t, body, testSecret, time.Now()))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 so the sender redelivers", w.Code)
	}
}

func TestServePaymentEventOversizedBody(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub, &fakeGuides{}, testSecret)

	body := make([]byte, maxBodyBytes+1)
	for i := range body {
		body[i] = 'a'
	}
	w := postEvent(h, body, stripeSignature(t, body, testSecret, time.Now()))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413 for oversized payload", w.Code)
	}
	if len(pub.jobs) != 0 {
		t.Errorf("oversized payload enqueued %d jobs", len(pub.jobs))
	}
}

func TestServePaymentEventMethodNotAllowed(t *testing.T) {
	h := NewHandler(&fakePublisher{}, &fakeGuides{}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/webhook/payment", nil)
	w := httptest.NewRecorder()
	h.ServePaymentEvent(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestServeGuide(t *testing.T) {
	id := uuid.New()
	guides := &fakeGuides{records: map[uuid.UUID]*models.GuideRecord{
		id: {
			ID:        id,
			Email:     "ana@example.com",
			CreatedAt: time.Now().UTC(),
		},
	}}
	h := NewHandler(&fakePublisher{}, guides, testSecret)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{name: "found", path: "/guides/" + id.String(), wantCode: http.StatusOK},
		{name: "unknown id", path: "/guides/" + uuid.NewString(), wantCode: http.StatusNotFound},
		{name: "not a uuid", path: "/guides/recent", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			h.ServeGuide(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}

	t.Run("payload round-trips", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/guides/"+id.String(), nil)
		w := httptest.NewRecorder()
		h.ServeGuide(w, req)

		var rec models.GuideRecord
		if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if rec.ID != id || rec.Email != "ana@example.com" {
			t.Errorf("response record = %+v", rec)
		}
	})
}

func TestServeGuideLookupError(t *testing.T) {
	guides := &fakeGuides{err: errors.New("connection reset")}
	h := NewHandler(&fakePublisher{}, guides, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/guides/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	h.ServeGuide(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestServeHealth(t *testing.T) {
	h := NewHandler(&fakePublisher{}, &fakeGuides{}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHealth(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("health = %d %q", w.Code, w.Body.String())
	}
}
