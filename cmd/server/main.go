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

// Command server runs the travel-guide generation service: the Stripe
// webhook endpoint, the guide read API, and the queue-consumer worker that
// owns the generation pipeline, all in one process.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/smuelmfs/cost-trip-v3/internal/config"
	"github.com/smuelmfs/cost-trip-v3/internal/guide"
	"github.com/smuelmfs/cost-trip-v3/internal/llm"
	"github.com/smuelmfs/cost-trip-v3/internal/mailer"
	"github.com/smuelmfs/cost-trip-v3/internal/pipeline"
	"github.com/smuelmfs/cost-trip-v3/internal/queue"
	"github.com/smuelmfs/cost-trip-v3/internal/store"
	"github.com/smuelmfs/cost-trip-v3/internal/webhook"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting travel guide service")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"max_days", cfg.MaxDays,
		"max_attempts", cfg.MaxAttempts,
		"attempt_timeout", cfg.AttemptTimeout,
		"model", cfg.OpenAIModel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connect to PostgreSQL ---
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	if err := pgPool.Ping(ctx); err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to PostgreSQL")

	// --- Connect to Redis ---
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opt)

	publisher := queue.NewPublisher(rdb, cfg.JobsQueue)
	if err := publisher.Ping(ctx); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to Redis")

	// --- Guide Store (Postgres) ---
	st, err := store.NewStore(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise guide store", "error", err)
		os.Exit(1)
	}

	// --- Generative Model Client ---
	model := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.MaxOutputTokens)

	// --- Mailer ---
	var mail pipeline.Mailer
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResendMailer(cfg.ResendAPIKey, cfg.FromEmail, cfg.PublicBaseURL)
	} else {
		slog.Warn("RESEND_API_KEY not set, notification emails disabled")
		mail = mailer.NewNoopMailer(cfg.PublicBaseURL)
	}

	// --- Section Topics ---
	topics := guide.DefaultTopics()
	if len(cfg.PracticalInfoTopics) > 0 {
		topics.PracticalInfo = cfg.PracticalInfoTopics
	}
	if len(cfg.CultureEtiquetteTopics) > 0 {
		topics.CultureEtiquette = cfg.CultureEtiquetteTopics
	}
	if len(cfg.EmergencyTopics) > 0 {
		topics.Emergency = cfg.EmergencyTopics
	}

	// --- Generation Pipeline ---
	gen := pipeline.NewGenerator(model, cfg.MaxAttempts, cfg.AttemptTimeout)
	proc := pipeline.NewProcessor(st, mail, gen, topics, cfg.MaxDays)

	// --- Worker ---
	consumer := queue.NewConsumer(rdb, cfg.JobsQueue, proc)
	go consumer.Run(ctx)

	// --- HTTP Server ---
	handler := webhook.NewHandler(publisher, st, cfg.StripeWebhookSecret)
	ready, err := webhook.Serve(ctx, cfg.Port, handler)
	if err != nil {
		slog.Error("failed to start http server", "error", err)
		os.Exit(1)
	}
	<-ready

	slog.Info("service ready", "port", cfg.Port)

	// --- Wait for shutdown signal ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	cancel()
}
