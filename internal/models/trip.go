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

// Package models defines the data structures shared across the guide service.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedMetadata indicates that a payment event's metadata is missing
// a field the pipeline cannot proceed without. It is fatal for the event;
// the pipeline must not reach the generation step with partial data.
var ErrMalformedMetadata = errors.New("malformed trip metadata")

// TripRequest is the normalized input to guide generation, built once per
// payment event from the checkout metadata. Immutable after construction.
type TripRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Destination      string `json:"destination"`
	Days             int    `json:"days"` // always clamped to [1, max] by the constructor
	People           int    `json:"people"`
	TravelStyle      string `json:"travel_style"`
	IncludeTransport bool   `json:"include_transport"`
	TransportType    string `json:"transport_type,omitempty"`
	IncludeMeals     bool   `json:"include_meals"`
	MealType         string `json:"meal_type,omitempty"`
}

// TripRequestFromMetadata parses the string-keyed metadata map attached at
// checkout time into a typed TripRequest. Required fields (userName,
// userEmail, destination) produce ErrMalformedMetadata when absent.
//
// days is clamped to [1, maxDays] here, once; downstream code never sees
// the raw value. Unparsable numbers fall back to 1.
func TripRequestFromMetadata(md map[string]string, maxDays int) (TripRequest, error) {
	var missing []string
	for _, key := range []string{"userName", "userEmail", "destination"} {
		if strings.TrimSpace(md[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return TripRequest{}, fmt.Errorf("%w: missing %s", ErrMalformedMetadata, strings.Join(missing, ", "))
	}

	req := TripRequest{
		Name:             strings.TrimSpace(md["userName"]),
		Email:            strings.TrimSpace(md["userEmail"]),
		Destination:      strings.TrimSpace(md["destination"]),
		Days:             ClampDays(atoiOr(md["days"], 1), maxDays),
		People:           atoiOr(md["people"], 1),
		TravelStyle:      strings.TrimSpace(md["travelStyle"]),
		IncludeTransport: md["includeTransport"] == "true",
		IncludeMeals:     md["includeMeals"] == "true",
	}
	if req.IncludeTransport {
		req.TransportType = strings.TrimSpace(md["transportType"])
	}
	if req.IncludeMeals {
		req.MealType = strings.TrimSpace(md["mealType"])
	}
	if req.People < 1 {
		req.People = 1
	}
	return req, nil
}

// ClampDays bounds a raw day count to [1, maxDays].
func ClampDays(days, maxDays int) int {
	if days < 1 {
		return 1
	}
	if days > maxDays {
		return maxDays
	}
	return days
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
