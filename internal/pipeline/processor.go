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
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smuelmfs/cost-trip-v3/internal/guide"
	"github.com/smuelmfs/cost-trip-v3/internal/models"
	"github.com/smuelmfs/cost-trip-v3/internal/store"
)

// GuideStore is the persistence surface the processor depends on.
// *store.Store satisfies it; tests inject an in-memory fake.
type GuideStore interface {
	// AlreadyProcessed reports whether the payment event was handled before.
	AlreadyProcessed(ctx context.Context, eventID string) (bool, error)

	// SaveGuideAndMarkProcessed persists the guide record and the
	// processed-event marker atomically. Returns store.ErrEventProcessed
	// when a concurrent run already marked the event.
	SaveGuideAndMarkProcessed(ctx context.Context, rec models.GuideRecord, eventID string) error
}

// Mailer sends the guide-ready notification. Failures are logged, never
// rolled back: the guide stays reachable through its link.
type Mailer interface {
	SendGuideReady(ctx context.Context, to, name string, guideID uuid.UUID) error
}

// Processor is the delivery orchestrator: one HandleJob call per dequeued
// payment event.
type Processor struct {
	store   GuideStore
	mailer  Mailer
	gen     *Generator
	topics  guide.SectionTopics
	maxDays int
}

// NewProcessor wires the orchestrator. topics and maxDays come from
// configuration so skeleton shape is not hardcoded.
func NewProcessor(st GuideStore, mailer Mailer, gen *Generator, topics guide.SectionTopics, maxDays int) *Processor {
	return &Processor{
		store:   st,
		mailer:  mailer,
		gen:     gen,
		topics:  topics,
		maxDays: maxDays,
	}
}

// HandleJob runs the full pipeline for one payment event:
// metadata -> idempotency check -> skeleton + prompt -> bounded generation
// -> atomic persist+mark -> notification email.
//
// A non-nil return means nothing was persisted and the event stays
// unmarked, so a redelivered webhook retries the whole pipeline. Duplicate
// deliveries return nil without side effects.
func (p *Processor) HandleJob(ctx context.Context, job models.GenerationJob) error {
	req, err := models.TripRequestFromMetadata(job.Metadata, p.maxDays)
	if err != nil {
		return fmt.Errorf("event %s: %w", job.EventID, err)
	}

	processed, err := p.store.AlreadyProcessed(ctx, job.EventID)
	if err != nil {
		return fmt.Errorf("idempotency check for event %s: %w", job.EventID, err)
	}
	if processed {
		slog.Info("skipping already-processed event",
			"event_id", job.EventID,
			"email", req.Email,
		)
		return nil
	}

	skel := guide.BuildSkeleton(req.Days, p.topics)
	prompt := guide.ComposePrompt(req, skel)

	generated, attempt, err := p.gen.Generate(ctx, prompt, skel)
	if err != nil {
		return fmt.Errorf("event %s: %w", job.EventID, err)
	}

	rec := models.GuideRecord{
		ID:        uuid.New(),
		Email:     req.Email,
		Request:   req,
		Guide:     generated,
		CreatedAt: time.Now().UTC(),
	}

	if err := p.store.SaveGuideAndMarkProcessed(ctx, rec, job.EventID); err != nil {
		if errors.Is(err, store.ErrEventProcessed) {
			// A concurrent delivery of the same event won the race.
			// Its run owns the record and the email.
			slog.Info("event processed concurrently, dropping duplicate result",
				"event_id", job.EventID,
			)
			return nil
		}
		return fmt.Errorf("persist guide for event %s: %w", job.EventID, err)
	}

	slog.Info("guide generated and persisted",
		"event_id", job.EventID,
		"guide_id", rec.ID,
		"destination", req.Destination,
		"days", req.Days,
		"attempts", attempt,
	)

	if err := p.mailer.SendGuideReady(ctx, req.Email, req.Name, rec.ID); err != nil {
		// Swallowed on purpose: the guide persists and stays reachable
		// via its link even if the email never arrives.
		slog.Warn("guide-ready notification failed",
			"event_id", job.EventID,
			"guide_id", rec.ID,
			"error", err,
		)
	}

	return nil
}
