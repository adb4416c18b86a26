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

package analysis

import (
	"math"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultConfidence = 0.75
	DefaultReason     = "Extracted by LLM"
)

// Normalize turns backend candidates into detections: values are trimmed and deduplicated
// per type, confidences clamped, defaults filled and spans located in source. The result is
// sorted by start offset with unlocated entities last.
func Normalize(source string, raw []RawDetection) []EntityDetection {
	detections := make([]EntityDetection, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, candidate := range raw {
		value := strings.TrimSpace(candidate.Value)
		if value == "" {
			continue
		}

		normalizedValue := NormalizeValue(value)
		key := DedupeKey(candidate.Type, normalizedValue)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		span := Locate(source, value)
		detections = append(detections, EntityDetection{
			Type:            candidate.Type,
			Value:           value,
			DisplayName:     displayName(candidate.DisplayName, value),
			NormalizedValue: normalizedValue,
			Confidence:      NormalizeConfidence(candidate.Confidence),
			StartOffset:     span.Start,
			EndOffset:       span.End,
			Reason:          stringOr(candidate.Reason, DefaultReason),
			Description:     candidate.Description,
			WikiURL:         NormalizeWikiURL(candidate.WikiURL),
		})
	}

	SortByOffset(detections)
	return detections
}

// NormalizeValue trims, lower-cases and collapses whitespace runs to a single space.
func NormalizeValue(value string) string {
	lower := cases.Lower(language.Und).String(strings.TrimSpace(value))
	return strings.Join(strings.Fields(lower), " ")
}

// DedupeKey identifies an entity within one analysis.
func DedupeKey(t EntityType, normalizedValue string) string {
	return string(t) + ":" + normalizedValue
}

// NormalizeConfidence clamps confidence into [0,1]; missing or NaN becomes DefaultConfidence.
func NormalizeConfidence(confidence *float64) float64 {
	switch {
	case confidence == nil || math.IsNaN(*confidence):
		return DefaultConfidence
	case *confidence < 0:
		return 0
	case *confidence > 1:
		return 1
	default:
		return *confidence
	}
}

// NormalizeWikiURL keeps absolute http(s) URLs and drops everything else.
func NormalizeWikiURL(raw *string) *string {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}

	u, err := url.Parse(value)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	return &value
}

// SortByOffset orders detections by start offset, unlocated ones last. Ties keep their order.
func SortByOffset(detections []EntityDetection) {
	sort.SliceStable(detections, func(i, j int) bool {
		a, b := detections[i].StartOffset, detections[j].StartOffset
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

func displayName(name *string, value string) string {
	if name != nil {
		if trimmed := strings.TrimSpace(*name); trimmed != "" {
			return trimmed
		}
	}
	return value
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
