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

// Package store provides the Postgres-backed persistence for guide records
// and processed-event markers. The two writes of a successful pipeline run
// happen in one transaction so an event can never end up half-processed.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smuelmfs/cost-trip-v3/internal/models"
)

// ErrEventProcessed is returned by SaveGuideAndMarkProcessed when another
// run already marked the event. The caller drops its result; the winning
// run owns the record and the notification.
var ErrEventProcessed = errors.New("event already processed")

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// Store provides guide-record and processed-event persistence in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates the store backed by the given Postgres pool.
// It ensures both tables exist on creation.
func NewStore(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure guide schema: %w", err)
	}
	slog.Info("guide store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS guide_records (
			id           UUID PRIMARY KEY,
			email        TEXT NOT NULL,
			trip_request JSONB NOT NULL,
			guide        JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS processed_events (
			event_id     TEXT PRIMARY KEY,
			guide_id     UUID NOT NULL REFERENCES guide_records(id),
			processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_guide_records_email ON guide_records(email);
	`)
	return err
}

// AlreadyProcessed reports whether a processed-event marker exists for the
// payment event. Point lookup only; it does not reserve the event.
func (s *Store) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM processed_events WHERE event_id = $1)
	`, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("processed lookup: %w", err)
	}
	return exists, nil
}

// SaveGuideAndMarkProcessed inserts the guide record and the
// processed-event marker in a single transaction. The marker's primary key
// is the arbiter under concurrent duplicate deliveries: the loser's
// transaction rolls back entirely and ErrEventProcessed is returned, so at
// most one record per event ever becomes visible.
func (s *Store) SaveGuideAndMarkProcessed(ctx context.Context, rec models.GuideRecord, eventID string) error {
	reqJSON, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("marshal trip request: %w", err)
	}
	guideJSON, err := json.Marshal(rec.Guide)
	if err != nil {
		return fmt.Errorf("marshal guide: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO guide_records (id, email, trip_request, guide, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.Email, reqJSON, guideJSON, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert guide record: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO processed_events (event_id, guide_id)
		VALUES ($1, $2)
	`, eventID, rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEventProcessed
		}
		return fmt.Errorf("mark event processed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetGuide retrieves a guide record by its identifier. Returns (nil, nil)
// when no record exists.
func (s *Store) GetGuide(ctx context.Context, id uuid.UUID) (*models.GuideRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, trip_request, guide, created_at
		FROM guide_records
		WHERE id = $1
	`, id)
	return scanGuideRecord(row)
}

func scanGuideRecord(row pgx.Row) (*models.GuideRecord, error) {
	var (
		rec       models.GuideRecord
		reqJSON   []byte
		guideJSON []byte
	)
	err := row.Scan(&rec.ID, &rec.Email, &reqJSON, &guideJSON, &rec.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reqJSON, &rec.Request); err != nil {
		return nil, fmt.Errorf("unmarshal trip request: %w", err)
	}
	if err := json.Unmarshal(guideJSON, &rec.Guide); err != nil {
		return nil, fmt.Errorf("unmarshal guide: %w", err)
	}
	return &rec, nil
}
