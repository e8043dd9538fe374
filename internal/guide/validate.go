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

package guide

import (
	"encoding/json"
	"fmt"

	"github.com/smuelmfs/cost-trip-v3/internal/models"
)

// Detail-count bounds for every section topic, per guide contract.
const (
	minDetails = 1
	maxDetails = 6
)

// StructureError reports a structural violation in a generated candidate.
// The retry controller treats it as a failed attempt; it never reaches the
// customer.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return "guide structure mismatch: " + e.Reason
}

func structureErrf(format string, args ...any) error {
	return &StructureError{Reason: fmt.Sprintf(format, args...)}
}

// Validate parses sanitized candidate text and checks it against the
// skeleton's structural contract. It accepts or rejects; it never fills in
// missing data, and the returned guide is the parsed candidate unchanged.
//
// Checks, in order: parseability, itinerary length, non-empty
// morning/afternoon/evening per day (the offending day is named), section
// slot counts, and a [1,6] detail count for every section topic.
func Validate(candidate string, skel models.GuideSkeleton) (models.GeneratedGuide, error) {
	var g models.GeneratedGuide
	if err := json.Unmarshal([]byte(candidate), &g); err != nil {
		return models.GeneratedGuide{}, structureErrf("invalid JSON: %v", err)
	}

	if len(g.Itinerary) != len(skel.Itinerary) {
		return models.GeneratedGuide{}, structureErrf("itinerary has %d days, want %d", len(g.Itinerary), len(skel.Itinerary))
	}

	for i, day := range g.Itinerary {
		switch {
		case len(day.Morning) == 0:
			return models.GeneratedGuide{}, structureErrf("day %d: empty morning activities", i+1)
		case len(day.Afternoon) == 0:
			return models.GeneratedGuide{}, structureErrf("day %d: empty afternoon activities", i+1)
		case len(day.Evening) == 0:
			return models.GeneratedGuide{}, structureErrf("day %d: empty evening activities", i+1)
		}
	}

	sections := []struct {
		name string
		got  []models.SectionSlot
		want []models.SectionSlot
	}{
		{"practicalInfo", g.PracticalInfo, skel.PracticalInfo},
		{"cultureEtiquette", g.CultureEtiquette, skel.CultureEtiquette},
		{"emergency", g.Emergency, skel.Emergency},
	}
	for _, s := range sections {
		if len(s.got) != len(s.want) {
			return models.GeneratedGuide{}, structureErrf("%s has %d topics, want %d", s.name, len(s.got), len(s.want))
		}
		for i, slot := range s.got {
			if n := len(slot.Details); n < minDetails || n > maxDetails {
				return models.GeneratedGuide{}, structureErrf("%s[%d] %q: %d details, want %d-%d",
					s.name, i, slot.Title, n, minDetails, maxDetails)
			}
		}
	}

	return g, nil
}
