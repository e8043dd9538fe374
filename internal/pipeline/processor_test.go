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

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smuelmfs/cost-trip-v3/internal/guide"
	"github.com/smuelmfs/cost-trip-v3/internal/llm"
	"github.com/smuelmfs/cost-trip-v3/internal/models"
	"github.com/smuelmfs/cost-trip-v3/internal/store"
)

type memStore struct {
	processed map[string]bool
	records   []models.GuideRecord

	checkErr error
	saveErr  error
}

func newMemStore() *memStore {
	return &memStore{processed: map[string]bool{}}
}

func (m *memStore) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	if m.checkErr != nil {
		return false, m.checkErr
	}
	return m.processed[eventID], nil
}

func (m *memStore) SaveGuideAndMarkProcessed(ctx context.Context, rec models.GuideRecord, eventID string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.processed[eventID] {
		return store.ErrEventProcessed
	}
	m.processed[eventID] = true
	m.records = append(m.records, rec)
	return nil
}

type memMailer struct {
	sent    []uuid.UUID
	sendErr error
}

func (m *memMailer) SendGuideReady(ctx context.Context, to, name string, guideID uuid.UUID) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, guideID)
	return nil
}

func testJob() models.GenerationJob {
	return models.GenerationJob{
		ID:      uuid.NewString(),
		EventID: "evt_123",
		Metadata: map[string]string{
			"userName":    "Ana",
			"userEmail":   "ana@example.com",
			"destination": "Lisbon",
			"days":        "2",
			"people":      "2",
		},
		EnqueuedAt: time.Now().UTC(),
	}
}

func newTestProcessor(st *memStore, mailer *memMailer, fake *llm.Fake) *Processor {
	gen := NewGenerator(fake, 3, time.Second)
	return NewProcessor(st, mailer, gen, guide.DefaultTopics(), 30)
}

func TestHandleJobHappyPath(t *testing.T) {
	skel := guide.BuildSkeleton(2, guide.DefaultTopics())
	st := newMemStore()
	mailer := &memMailer{}
	fake := &llm.Fake{Script: []llm.FakeResult{{Text: conformingGuideJSON(t, skel)}}}
	p := newTestProcessor(st, mailer, fake)

	if err := p.HandleJob(context.Background(), testJob()); err != nil {
		t.Fatalf("HandleJob: %v", err)
	}

	if len(st.records) != 1 {
		t.Fatalf("persisted %d records, want 1", len(st.records))
	}
	rec := st.records[0]
	if rec.Email != "ana@example.com" {
		t.Errorf("record email = %q", rec.Email)
	}
	if rec.Request.Destination != "Lisbon" || rec.Request.Days != 2 {
		t.Errorf("record request = %+v", rec.Request)
	}
	if !st.processed["evt_123"] {
		t.Error("event not marked processed")
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != rec.ID {
		t.Errorf("notification sent for %v, want [%s]", mailer.sent, rec.ID)
	}
}

func TestHandleJobDuplicateEvent(t *testing.T) {
	st := newMemStore()
	st.processed["evt_123"] = true
	mailer := &memMailer{}
	fake := &llm.Fake{}
	p := newTestProcessor(st, mailer, fake)

	if err := p.HandleJob(context.Background(), testJob()); err != nil {
		t.Fatalf("HandleJob on duplicate: %v", err)
	}
	if fake.Calls != 0 {
		t.Errorf("model called %d times for a duplicate event, want 0", fake.Calls)
	}
	if len(st.records) != 0 {
		t.Errorf("duplicate persisted %d records", len(st.records))
	}
	if len(mailer.sent) != 0 {
		t.Errorf("duplicate sent %d notifications", len(mailer.sent))
	}
}

func TestHandleJobMalformedMetadata(t *testing.T) {
	st := newMemStore()
	mailer := &memMailer{}
	fake := &llm.Fake{}
	p := newTestProcessor(st, mailer, fake)

	job := testJob()
	delete(job.Metadata, "userEmail")

	err := p.HandleJob(context.Background(), job)
	if !errors.Is(err, models.ErrMalformedMetadata) {
		t.Fatalf("error = %v, want ErrMalformedMetadata", err)
	}
	if fake.Calls != 0 {
		t.Errorf("model called %d times for malformed metadata, want 0", fake.Calls)
	}
	if len(st.records) != 0 || st.processed["evt_123"] {
		t.Error("malformed event left persistence side effects")
	}
}

func TestHandleJobGenerationExhausted(t *testing.T) {
	st := newMemStore()
	mailer := &memMailer{}
	fake := &llm.Fake{Script: []llm.FakeResult{{Text: "not json"}}}
	p := newTestProcessor(st, mailer, fake)

	err := p.HandleJob(context.Background(), testJob())

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *ExhaustedError", err)
	}
	if st.processed["evt_123"] {
		t.Error("exhausted event was marked processed; redelivery could never retry it")
	}
	if len(st.records) != 0 {
		t.Errorf("exhausted run persisted %d records", len(st.records))
	}
}

func TestHandleJobConcurrentWinner(t *testing.T) {
	skel := guide.BuildSkeleton(2, guide.DefaultTopics())
	st := newMemStore()
	st.saveErr = store.ErrEventProcessed
	mailer := &memMailer{}
	fake := &llm.Fake{Script: []llm.FakeResult{{Text: conformingGuideJSON(t, skel)}}}
	p := newTestProcessor(st, mailer, fake)

	if err := p.HandleJob(context.Background(), testJob()); err != nil {
		t.Fatalf("HandleJob after losing the race: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("losing run sent %d notifications, want 0", len(mailer.sent))
	}
}

func TestHandleJobEmailFailureIsNotFatal(t *testing.T) {
	skel := guide.BuildSkeleton(2, guide.DefaultTopics())
	st := newMemStore()
	mailer := &memMailer{sendErr: errors.New("provider down")}
	fake := &llm.Fake{Script: []llm.FakeResult{{Text: conformingGuideJSON(t, skel)}}}
	p := newTestProcessor(st, mailer, fake)

	if err := p.HandleJob(context.Background(), testJob()); err != nil {
		t.Fatalf("HandleJob failed on notification error: %v", err)
	}
	if len(st.records) != 1 || !st.processed["evt_123"] {
		t.Error("guide not persisted despite notification failure")
	}
}

func TestHandleJobStoreCheckError(t *testing.T) {
	st := newMemStore()
	st.checkErr = errors.New("connection reset")
	p := newTestProcessor(st, &memMailer{}, &llm.Fake{})

	if err := p.HandleJob(context.Background(), testJob()); err == nil {
		t.Fatal("HandleJob swallowed a store error")
	}
}
