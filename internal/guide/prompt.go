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
	"strings"

	"github.com/smuelmfs/cost-trip-v3/internal/models"
)

// ComposePrompt renders the instruction text sent to the generative model.
//
// The prompt restates the validator's rules (day-count match, 1-6 details
// per topic, no placeholders) on purpose: the prompt is the soft contract,
// the validator is the enforced one. Pure; same inputs, same output.
func ComposePrompt(req models.TripRequest, skel models.GuideSkeleton) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a professional travel guide and a local expert guide for %s. ", req.Destination)
	b.WriteString("Generate a detailed, personalized travel guide in JSON format for the following client:\n\n")

	fmt.Fprintf(&b, "Client Name: %s\n", req.Name)
	fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "Duration: %d days\n", req.Days)
	fmt.Fprintf(&b, "Number of People: %d\n", req.People)
	fmt.Fprintf(&b, "Travel Style: %s\n", req.TravelStyle)
	b.WriteString(transportLine(req) + "\n")
	b.WriteString(mealLine(req) + "\n")

	b.WriteString("\n### Structure:\n")
	b.WriteString("Fill in every slot of the JSON skeleton below. Do not add, remove, or rename days or section topics.\n\n")
	skelJSON, _ := json.MarshalIndent(skel, "", "  ")
	b.Write(skelJSON)
	b.WriteString("\n")

	b.WriteString("\n### Instructions:\n")
	fmt.Fprintf(&b, "1. The itinerary has exactly %d days. Fill ALL %d days completely — do not summarize, defer, or skip remaining days.\n", req.Days, req.Days)
	b.WriteString("2. Each day must include at least one activity for morning, afternoon, and evening, each with an estimated cost in local currency.\n")
	b.WriteString("3. Each section topic must have between 1 and 6 detail strings.\n")
	b.WriteString("4. No placeholder text, no comments — write real, concise, useful content.\n")
	b.WriteString("5. Output only the JSON object, nothing else. Validate the JSON format before outputting.\n")

	return b.String()
}

func transportLine(req models.TripRequest) string {
	if !req.IncludeTransport {
		return "Include Transport: No"
	}
	t := req.TransportType
	if t == "" {
		t = "General transport"
	}
	return fmt.Sprintf("Include Transport: Yes (%s)", t)
}

func mealLine(req models.TripRequest) string {
	if !req.IncludeMeals {
		return "Include Meals: No"
	}
	m := req.MealType
	if m == "" {
		m = "General meal options"
	}
	return fmt.Sprintf("Include Meals: Yes (%s)", m)
}
