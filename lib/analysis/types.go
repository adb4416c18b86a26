/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package analysis extracts named entities from short messages. The primary path asks a
// generative backend for structured output; a regex fallback runs when that path fails or
// finds nothing.
package analysis

import "context"

type EntityType string

const (
	Person       EntityType = "person"
	Organization EntityType = "organization"
	Location     EntityType = "location"
	Event        EntityType = "event"
	SportsClub   EntityType = "sports_club"
)

// EntityTypes lists every entity type in display order.
var EntityTypes = []EntityType{Person, Organization, Location, Event, SportsClub}

// EntityDetection is a normalised entity found in a message.
type EntityDetection struct {
	Type            EntityType `json:"type"`
	Value           string     `json:"value"`
	DisplayName     string     `json:"displayName"`
	NormalizedValue string     `json:"normalizedValue"`
	Confidence      float64    `json:"confidence"`
	StartOffset     *int       `json:"startOffset"`
	EndOffset       *int       `json:"endOffset"`
	Reason          string     `json:"reason"`
	Description     *string    `json:"description"`
	WikiURL         *string    `json:"wikiUrl"`
}

// RawDetection is a candidate entity as reported by an extraction backend.
type RawDetection struct {
	Type        EntityType `json:"type" validate:"required,oneof=person organization location event sports_club"`
	Value       string     `json:"value" validate:"min=1,max=200"`
	DisplayName *string    `json:"displayName,omitempty" validate:"omitempty,max=200"`
	Confidence  *float64   `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Reason      *string    `json:"reason,omitempty" validate:"omitempty,max=240"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	WikiURL     *string    `json:"wikiUrl,omitempty" validate:"omitempty,max=500"`
}

// Extractor calls a structured-output backend for the given target.
type Extractor interface {
	Extract(ctx context.Context, source string, target Target) ([]RawDetection, error)
}

// Lookup reads a configuration value. An empty string means the key is unset.
// *viper.Viper satisfies it.
type Lookup interface {
	GetString(key string) string
}

// LookupFunc adapts a function such as os.Getenv to Lookup.
type LookupFunc func(key string) string

func (f LookupFunc) GetString(key string) string {
	return f(key)
}
