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

package render

import (
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/segment"
)

const (
	PreviewMaxLength  = 80
	NoTextPlaceholder = "[no text]"
)

// Preview collapses the whitespace of text and shortens it to PreviewMaxLength characters,
// cutting between words where possible.
func Preview(text *string) string {
	if text == nil {
		return NoTextPlaceholder
	}
	collapsed := strings.Join(strings.Fields(*text), " ")
	if collapsed == "" {
		return NoTextPlaceholder
	}
	if utf8.RuneCountInString(collapsed) <= PreviewMaxLength {
		return collapsed
	}

	segmenter := segment.NewWordSegmenterDirect([]byte(collapsed))
	var preview strings.Builder
	length := 0
	for segmenter.Segment() {
		segmentBytes := segmenter.Bytes()
		n := utf8.RuneCount(segmentBytes)
		if length+n > PreviewMaxLength {
			break
		}
		preview.Write(segmentBytes)
		length += n
	}

	if res := strings.TrimSpace(preview.String()); res != "" {
		return res
	}
	// a single word longer than the limit
	return string([]rune(collapsed)[:PreviewMaxLength])
}
