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

// Package llm adapts an external text-generation provider behind a single
// "complete this prompt" operation. Any provider that accepts a free-form
// prompt and returns free-form text can be swapped in without touching
// pipeline logic.
package llm

import (
	"context"
	"errors"
)

// ErrNoContent indicates the provider call succeeded but returned no
// usable text. The retry controller treats it like any other failed
// attempt.
var ErrNoContent = errors.New("model returned no content")

// Client is the generative model adapter the pipeline depends on.
// Each Complete call is one billable outbound request, which is why the
// pipeline bounds its retries.
type Client interface {
	// Name identifies the provider and model for logs.
	Name() string

	// Complete sends the prompt and returns the raw model text.
	// The caller owns the timeout via ctx.
	Complete(ctx context.Context, prompt string) (string, error)
}
