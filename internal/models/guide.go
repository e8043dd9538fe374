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

import (
	"time"

	"github.com/google/uuid"
)

// ActivitySlot is a single itinerary activity with a local-currency cost
// estimate.
type ActivitySlot struct {
	Activity      string  `json:"activity"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// DaySlot holds one day of the itinerary, split into the three periods the
// model must fill.
type DaySlot struct {
	DayTitle  string         `json:"dayTitle"`
	Morning   []ActivitySlot `json:"morning"`
	Afternoon []ActivitySlot `json:"afternoon"`
	Evening   []ActivitySlot `json:"evening"`
}

// SectionSlot is one named topic inside an informational section, holding
// the detail strings the model fills in.
type SectionSlot struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// GuideSkeleton is the fixed-shape target structure for a generation run.
// Its day count and topic lists are determined before the model is invoked
// and never altered by model output: the model fills slots, it does not
// invent or remove them.
type GuideSkeleton struct {
	Itinerary        []DaySlot     `json:"itinerary"`
	PracticalInfo    []SectionSlot `json:"practicalInfo"`
	CultureEtiquette []SectionSlot `json:"cultureEtiquette"`
	Emergency        []SectionSlot `json:"emergency"`
}

// GeneratedGuide is a model-populated candidate mirroring GuideSkeleton.
// Only candidates that pass structural validation are ever persisted.
type GeneratedGuide struct {
	Itinerary        []DaySlot     `json:"itinerary"`
	PracticalInfo    []SectionSlot `json:"practicalInfo"`
	CultureEtiquette []SectionSlot `json:"cultureEtiquette"`
	Emergency        []SectionSlot `json:"emergency"`
}

// GuideRecord is the persisted, customer-facing artifact. The ID is
// generated in Go (not by the database) so the notification link shape
// survives a storage backend swap. Immutable once created.
type GuideRecord struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Request   TripRequest    `json:"request"`
	Guide     GeneratedGuide `json:"guide"`
	CreatedAt time.Time      `json:"created_at"`
}
