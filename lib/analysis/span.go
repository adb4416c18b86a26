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

import "unicode"

// Span is a [Start, End) range of rune offsets. Both are nil when the value was not found.
// Offsets count code points, not UTF-16 units: each emoji or other character outside the
// Basic Multilingual Plane counts once.
type Span struct {
	Start *int
	End   *int
}

// Locate finds the first case-insensitive occurrence of value in source.
func Locate(source, value string) Span {
	src := []rune(source)
	val := []rune(value)

	for i := 0; i+len(val) <= len(src); i++ {
		if runesEqualFold(src[i:i+len(val)], val) {
			return newSpan(i, i+len(val))
		}
	}
	return Span{}
}

func runesEqualFold(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] && unicode.ToLower(a[i]) != unicode.ToLower(b[i]) {
			return false
		}
	}
	return true
}

func newSpan(start, end int) Span {
	return Span{Start: &start, End: &end}
}
