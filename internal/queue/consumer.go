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

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smuelmfs/cost-trip-v3/internal/models"
)

const (
	// popTimeout bounds each BRPOP so context cancellation is noticed
	// quickly.
	popTimeout = 5 * time.Second

	// pushTimeout bounds the park/restore writes. These run detached from
	// the worker context: a popped job must land somewhere even when the
	// pop's context is already cancelled.
	pushTimeout = 5 * time.Second
)

// JobHandler processes one dequeued generation job.
type JobHandler interface {
	HandleJob(ctx context.Context, job models.GenerationJob) error
}

// jobLists is the subset of the Redis client the consumer uses.
// *redis.Client satisfies it; tests substitute a scripted fake.
type jobLists interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// deadLetter wraps a failed payload for the dead-letter list so an
// operator can inspect (and requeue) it.
type deadLetter struct {
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
}

// Consumer pops generation jobs off the Redis list and hands them to the
// handler one at a time. Failed and undecodable jobs land on the
// dead-letter list; the queue itself never blocks on a bad payload.
type Consumer struct {
	rdb       jobLists
	queueName string
	handler   JobHandler
}

// NewConsumer creates a consumer for the given queue.
func NewConsumer(rdb jobLists, queueName string, handler JobHandler) *Consumer {
	return &Consumer{
		rdb:       rdb,
		queueName: queueName,
		handler:   handler,
	}
}

// DeadLetterQueue returns the list name failed jobs are parked on.
func DeadLetterQueue(queueName string) string {
	return queueName + ":dead"
}

// Run blocks until the context is cancelled, processing jobs as they
// arrive. Redis errors back off briefly instead of spinning.
//
// BRPOP is a destructive pop, so a job in flight when shutdown cancels
// the context exists nowhere but this process. It goes back onto the jobs
// queue, not the dead-letter list: the job itself is fine, the worker is
// going away.
func (c *Consumer) Run(ctx context.Context) {
	slog.Info("generation worker starting", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.Info("generation worker stopping")
			return
		default:
		}

		res, err := c.rdb.BRPop(ctx, popTimeout, c.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // queue empty, poll again
			}
			if ctx.Err() != nil {
				slog.Info("generation worker stopping")
				return
			}
			slog.Error("queue pop failed", "queue", c.queueName, "error", err)
			time.Sleep(time.Second)
			continue
		}

		// BRPop returns [key, value].
		payload := []byte(res[1])

		var job models.GenerationJob
		if err := json.Unmarshal(payload, &job); err != nil {
			slog.Error("undecodable job payload, dead-lettering",
				"queue", c.queueName,
				"error", err,
			)
			c.park(ctx, payload, "undecodable payload: "+err.Error())
			continue
		}

		if err := c.handler.HandleJob(ctx, job); err != nil {
			if ctx.Err() != nil {
				slog.Warn("job interrupted by shutdown, returning it to the queue",
					"job_id", job.ID,
					"event_id", job.EventID,
				)
				c.restore(ctx, payload)
				slog.Info("generation worker stopping")
				return
			}
			slog.Error("generation job failed",
				"job_id", job.ID,
				"event_id", job.EventID,
				"error", err,
			)
			c.park(ctx, payload, err.Error())
		}
	}
}

// restore puts an interrupted job back on the consuming end of the jobs
// queue so the next worker run picks it up first.
func (c *Consumer) restore(ctx context.Context, payload []byte) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	if err := c.rdb.RPush(rctx, c.queueName, payload).Err(); err != nil {
		slog.Error("failed to return interrupted job to the queue", "error", err)
	}
}

// park pushes a failed payload onto the dead-letter list. Best effort: a
// park failure is logged and the job is lost to the dead-letter trail,
// but the event itself stays unmarked and can be redelivered upstream.
func (c *Consumer) park(ctx context.Context, payload []byte, reason string) {
	entry, err := json.Marshal(deadLetter{
		Payload:  payload,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("marshal dead letter", "error", err)
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	if err := c.rdb.LPush(pctx, DeadLetterQueue(c.queueName), entry).Err(); err != nil {
		slog.Error("dead-letter push failed", "error", err)
	}
}
