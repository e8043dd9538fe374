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

// Costimizer — Dead-Letter Requeue Command
//
// Standalone CLI tool that moves failed generation jobs from the
// dead-letter list back onto the jobs queue after the underlying issue
// (provider outage, bad credentials) has been resolved.
//
// Usage:
//
//	go run ./cmd/requeue/ [--limit 10]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/smuelmfs/cost-trip-v3/internal/config"
	"github.com/smuelmfs/cost-trip-v3/internal/queue"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	limitFlag := flag.Int("limit", 0, "Maximum number of jobs to requeue (0 = all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opt)

	ctx := context.Background()
	moved, err := queue.RequeueDeadLetters(ctx, rdb, cfg.JobsQueue, *limitFlag)
	if err != nil {
		slog.Error("requeue failed", "moved", moved, "error", err)
		os.Exit(1)
	}

	slog.Info("dead-letter requeue complete",
		"moved", moved,
		"queue", cfg.JobsQueue,
	)
}
