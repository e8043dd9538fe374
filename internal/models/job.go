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

package models

import "time"

// GenerationJob is the queue payload handed from the webhook boundary to
// the generation worker.
//
// This struct's JSON serialisation is the contract between publisher and
// consumer. The event ID (not the job ID) is the idempotency key: a
// redelivered webhook produces a new job for the same event, and the
// pipeline deduplicates on EventID.
type GenerationJob struct {
	ID         string            `json:"id"`
	EventID    string            `json:"event_id"`
	Metadata   map[string]string `json:"metadata"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}
