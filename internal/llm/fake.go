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

package llm

import "context"

// FakeResult is one scripted Complete outcome for the Fake client.
type FakeResult struct {
	Text string
	Err  error
}

// Fake is a scripted Client for tests. Each Complete call consumes the
// next entry in Script; calls past the end repeat the last entry. Calls
// counts every invocation, which lets retry tests assert the exact number
// of adapter calls.
type Fake struct {
	Script []FakeResult
	Calls  int
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	i := f.Calls
	f.Calls++
	if i >= len(f.Script) {
		i = len(f.Script) - 1
	}
	if i < 0 {
		return "", ErrNoContent
	}
	r := f.Script[i]
	return r.Text, r.Err
}
