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

package text

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Text under these elements is never visible.
var disallowedNodes = map[string]struct{}{
	"audio":    {},
	"head":     {},
	"noscript": {},
	"script":   {},
	"style":    {},
	"template": {},
	"textarea": {},
	"video":    {},
}

var linebreakNodes = map[string]struct{}{
	"article":    {},
	"aside":      {},
	"blockquote": {},
	"br":         {},
	"div":        {},
	"figcaption": {},
	"footer":     {},
	"h1":         {},
	"h2":         {},
	"h3":         {},
	"h4":         {},
	"h5":         {},
	"h6":         {},
	"header":     {},
	"li":         {},
	"ol":         {},
	"p":          {},
	"pre":        {},
	"section":    {},
	"table":      {},
	"tr":         {},
	"ul":         {},
}

// HTMLToText returns the visible text of an html fragment such as a formatted chat message.
// Block elements and <br> end a line; blank lines and the whitespace around each line are dropped.
func HTMLToText(r io.Reader) (string, error) {
	tokenizer := html.NewTokenizer(r)
	var buf strings.Builder
	disallowedDepth := 0

	lineBreak := func() {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
	}

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return "", err
			}
			return tidyLines(buf.String()), nil
		case html.TextToken:
			// Must read this first. Other read methods mutate the current token.
			text := tokenizer.Text()
			if disallowedDepth == 0 {
				buf.Write(text)
			}
		case html.StartTagToken:
			name := tagName(tokenizer)
			if _, ok := disallowedNodes[name]; ok {
				disallowedDepth++
			} else if name == "br" {
				lineBreak()
			}
		case html.EndTagToken:
			name := tagName(tokenizer)
			if _, ok := disallowedNodes[name]; ok {
				if disallowedDepth > 0 {
					disallowedDepth--
				}
			} else if _, ok := linebreakNodes[name]; ok {
				lineBreak()
			}
		case html.SelfClosingTagToken:
			if tagName(tokenizer) == "br" {
				lineBreak()
			}
		}
	}
}

func tagName(tokenizer *html.Tokenizer) string {
	name, _ := tokenizer.TagName()
	return string(name)
}

func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
