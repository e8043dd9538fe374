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
	"fmt"
	"reflect"
	"testing"

	"github.com/smuelmfs/cost-trip-v3/internal/models"
)

// TestBuildSkeletonDayCount verifies one DaySlot per requested day with
// sequential titles and empty activity lists.
func TestBuildSkeletonDayCount(t *testing.T) {
	topics := DefaultTopics()

	for _, days := range []int{1, 5, 25, 30} {
		t.Run(fmt.Sprintf("%d_days", days), func(t *testing.T) {
			skel := BuildSkeleton(days, topics)

			if len(skel.Itinerary) != days {
				t.Fatalf("itinerary length = %d, want %d", len(skel.Itinerary), days)
			}
			for i, day := range skel.Itinerary {
				wantTitle := fmt.Sprintf("Day %d", i+1)
				if day.DayTitle != wantTitle {
					t.Errorf("day %d title = %q, want %q", i, day.DayTitle, wantTitle)
				}
				if day.Morning == nil || len(day.Morning) != 0 {
					t.Errorf("day %d morning = %v, want empty non-nil list", i, day.Morning)
				}
				if day.Afternoon == nil || len(day.Afternoon) != 0 {
					t.Errorf("day %d afternoon = %v, want empty non-nil list", i, day.Afternoon)
				}
				if day.Evening == nil || len(day.Evening) != 0 {
					t.Errorf("day %d evening = %v, want empty non-nil list", i, day.Evening)
				}
			}
		})
	}
}

// TestBuildSkeletonDeterministic verifies identical output across calls.
func TestBuildSkeletonDeterministic(t *testing.T) {
	topics := DefaultTopics()
	a := BuildSkeleton(7, topics)
	b := BuildSkeleton(7, topics)

	if !reflect.DeepEqual(a, b) {
		t.Error("two BuildSkeleton calls with the same input differ")
	}
}

// TestBuildSkeletonTopics verifies the section slots mirror the configured
// topic lists exactly.
func TestBuildSkeletonTopics(t *testing.T) {
	topics := SectionTopics{
		PracticalInfo:    []string{"Transportation", "Currency"},
		CultureEtiquette: []string{"Greetings"},
		Emergency:        []string{"Emergency Numbers", "Hospitals", "Safety Tips"},
	}
	skel := BuildSkeleton(3, topics)

	check := func(name string, got []models.SectionSlot, want []string) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("%s has %d slots, want %d", name, len(got), len(want))
		}
		for i, slot := range got {
			if slot.Title != want[i] {
				t.Errorf("%s[%d] title = %q, want %q", name, i, slot.Title, want[i])
			}
			if slot.Details == nil || len(slot.Details) != 0 {
				t.Errorf("%s[%d] details = %v, want empty non-nil list", name, i, slot.Details)
			}
		}
	}

	check("practicalInfo", skel.PracticalInfo, topics.PracticalInfo)
	check("cultureEtiquette", skel.CultureEtiquette, topics.CultureEtiquette)
	check("emergency", skel.Emergency, topics.Emergency)
}
