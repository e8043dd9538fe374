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
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RequeueDeadLetters moves up to limit parked jobs from the dead-letter
// list back onto the jobs queue (limit <= 0 drains everything). Entries
// that cannot be unwrapped are pushed back so nothing is silently lost.
// Returns the number of jobs requeued.
func RequeueDeadLetters(ctx context.Context, rdb *redis.Client, queueName string, limit int) (int, error) {
	deadQueue := DeadLetterQueue(queueName)
	moved := 0

	for limit <= 0 || moved < limit {
		raw, err := rdb.RPop(ctx, deadQueue).Result()
		if errors.Is(err, redis.Nil) {
			break // dead-letter list drained
		}
		if err != nil {
			return moved, fmt.Errorf("pop dead letter: %w", err)
		}

		var entry deadLetter
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || len(entry.Payload) == 0 {
			slog.Warn("unrecognised dead-letter entry, putting it back", "error", err)
			if pushErr := rdb.LPush(ctx, deadQueue, raw).Err(); pushErr != nil {
				return moved, fmt.Errorf("restore dead letter: %w", pushErr)
			}
			break
		}

		if err := rdb.LPush(ctx, queueName, []byte(entry.Payload)).Err(); err != nil {
			return moved, fmt.Errorf("requeue job: %w", err)
		}
		moved++
	}

	return moved, nil
}
