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

// Package guide contains the pure core of the generation pipeline: the
// skeleton builder, the prompt composer, the response sanitizer, and the
// structural validator. Nothing in this package performs I/O.
package guide

import (
	"fmt"

	"github.com/smuelmfs/cost-trip-v3/internal/models"
)

// SectionTopics holds the named topic lists for the three informational
// sections. The lists are configuration, not derived from input; every
// skeleton built with the same topics carries the same section slots.
type SectionTopics struct {
	PracticalInfo    []string
	CultureEtiquette []string
	Emergency        []string
}

// DefaultTopics returns the standard topic set used when the config file
// does not override it.
func DefaultTopics() SectionTopics {
	return SectionTopics{
		PracticalInfo:    []string{"Transportation", "Currency", "Weather", "Language", "Shopping"},
		CultureEtiquette: []string{"Greetings", "Dining Etiquette", "Dress Code", "Social Customs", "Sites"},
		Emergency:        []string{"Emergency Numbers", "Pharmacies", "Hospitals", "Embassy Contact", "Safety Tips", "Useful Phrases"},
	}
}

// BuildSkeleton produces the fixed-shape template the model must fill in:
// exactly days DaySlots titled "Day 1".."Day N" with empty activity lists,
// plus one empty SectionSlot per configured topic.
//
// days must already be clamped by the caller; the builder does not
// re-validate the bound. Deterministic for a given (days, topics) pair.
func BuildSkeleton(days int, topics SectionTopics) models.GuideSkeleton {
	skel := models.GuideSkeleton{
		Itinerary:        make([]models.DaySlot, days),
		PracticalInfo:    emptySection(topics.PracticalInfo),
		CultureEtiquette: emptySection(topics.CultureEtiquette),
		Emergency:        emptySection(topics.Emergency),
	}
	for i := range skel.Itinerary {
		skel.Itinerary[i] = models.DaySlot{
			DayTitle:  fmt.Sprintf("Day %d", i+1),
			Morning:   []models.ActivitySlot{},
			Afternoon: []models.ActivitySlot{},
			Evening:   []models.ActivitySlot{},
		}
	}
	return skel
}

// emptySection builds one SectionSlot per topic with a non-nil, empty
// details list so the skeleton serialises as [] rather than null.
func emptySection(titles []string) []models.SectionSlot {
	out := make([]models.SectionSlot, len(titles))
	for i, title := range titles {
		out[i] = models.SectionSlot{Title: title, Details: []string{}}
	}
	return out
}
