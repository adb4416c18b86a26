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
	"regexp"
	"strings"
	"unicode/utf8"
)

type fallbackPattern struct {
	re         *regexp.Regexp
	entityType EntityType
	confidence float64
	reason     string
}

// \b only knows ASCII word characters, so the Cyrillic alternatives rarely match. Callers
// rely on that behaviour staying as it is. Unicode spaces such as U+00A0 separate words.
var fallbackPatterns = []fallbackPattern{
	{
		re: regexp.MustCompile(`\b(?:[А-ЯЁ][а-яё]{1,30}[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]+[А-ЯЁ][а-яё]{1,30}(?:[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]+[А-ЯЁ][а-яё]{1,30})?|` +
			`[A-Z][a-z]{1,30}[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]+[A-Z][a-z]{1,30}(?:[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]+[A-Z][a-z]{1,30})?)\b`),
		entityType: Person,
		confidence: 0.55,
		reason:     "Fallback: looks like a personal name.",
	},
	{
		re:         regexp.MustCompile(`\b(?:ООО|АО|ПАО)[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]+["«]?[\p{L}\d .-]{2,80}["»]?\b`),
		entityType: Organization,
		confidence: 0.65,
		reason:     "Fallback: company legal form detected.",
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:матч|турнир|финал|конференция|форум|презентация|релиз|запуск|` +
			`match|final|conference|summit)\b`),
		entityType: Event,
		confidence: 0.5,
		reason:     "Fallback: event keyword detected.",
	},
}

// Fallback runs the person, organization and event patterns over source in that order.
// Later matches sharing a type and normalised value with an earlier one are dropped.
// Offsets are counted in runes, like Locate.
func Fallback(source string) []EntityDetection {
	var detections []EntityDetection
	seen := make(map[string]struct{})

	for _, p := range fallbackPatterns {
		for _, loc := range p.re.FindAllStringIndex(source, -1) {
			match := source[loc[0]:loc[1]]
			value := strings.TrimSpace(match)
			if value == "" {
				continue
			}

			normalizedValue := NormalizeValue(value)
			key := DedupeKey(p.entityType, normalizedValue)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			start := utf8.RuneCountInString(source[:loc[0]])
			span := newSpan(start, start+utf8.RuneCountInString(value))
			detections = append(detections, EntityDetection{
				Type:            p.entityType,
				Value:           value,
				DisplayName:     value,
				NormalizedValue: normalizedValue,
				Confidence:      p.confidence,
				StartOffset:     span.Start,
				EndOffset:       span.End,
				Reason:          p.reason,
			})
		}
	}

	if detections == nil {
		return []EntityDetection{}
	}
	return detections
}
