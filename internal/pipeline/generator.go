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

// Package pipeline drives guide generation for payment events: a bounded
// retry loop around the model adapter, and the orchestrator that turns a
// validated event into a persisted guide and a notification.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smuelmfs/cost-trip-v3/internal/guide"
	"github.com/smuelmfs/cost-trip-v3/internal/llm"
	"github.com/smuelmfs/cost-trip-v3/internal/models"
)

// ExhaustedError is the terminal generation failure: every attempt was
// consumed without producing a structurally valid guide. The event stays
// unmarked so a redelivered webhook can retry the whole pipeline.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("guide generation exhausted after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// Generator runs up to maxAttempts generate->sanitize->validate rounds.
// Each attempt re-issues the identical prompt; invalid candidates are
// discarded, never repaired.
type Generator struct {
	client         llm.Client
	maxAttempts    int
	attemptTimeout time.Duration
}

// NewGenerator builds a retry controller around the given model client.
// attemptTimeout bounds each adapter call so a hung provider counts as a
// failed attempt instead of blocking the pipeline run.
func NewGenerator(client llm.Client, maxAttempts int, attemptTimeout time.Duration) *Generator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if attemptTimeout <= 0 {
		attemptTimeout = 45 * time.Second
	}
	return &Generator{
		client:         client,
		maxAttempts:    maxAttempts,
		attemptTimeout: attemptTimeout,
	}
}

// Generate returns the first structurally valid guide together with the
// 1-based attempt number that produced it. Adapter errors, unparseable
// output, and structure mismatches all count as failed attempts; after the
// ceiling it returns *ExhaustedError. Context cancellation stops the loop
// immediately.
func (g *Generator) Generate(ctx context.Context, prompt string, skel models.GuideSkeleton) (models.GeneratedGuide, int, error) {
	var lastErr error

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.GeneratedGuide{}, 0, err
		}

		actx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
		raw, err := g.client.Complete(actx, prompt)
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("model call: %w", err)
			slog.Warn("generation attempt failed",
				"attempt", attempt,
				"model", g.client.Name(),
				"error", err,
			)
			continue
		}

		validated, err := guide.Validate(guide.Sanitize(raw), skel)
		if err != nil {
			lastErr = err
			slog.Warn("generated guide rejected",
				"attempt", attempt,
				"model", g.client.Name(),
				"error", err,
			)
			continue
		}

		return validated, attempt, nil
	}

	return models.GeneratedGuide{}, 0, &ExhaustedError{Attempts: g.maxAttempts, LastErr: lastErr}
}
