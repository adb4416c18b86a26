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

package llm

import (
	"bytes"
	"fmt"
	"text/template"
)

const defaultSystemPrompt = "You extract named entities from a short message. " +
	"Return only entities that are explicitly present in the text. " +
	"Allowed types: person, organization, location, event, sports_club. " +
	"Do not invent entities."

const defaultUserPrompt = `Extract entities from the following message.
Respond using the schema only.

{{.Text}}`

// Prompt is the fixed instruction pair sent with every extraction request.
type Prompt struct {
	System string
	user   *template.Template
}

type promptData struct {
	Text string
}

// NewPrompt parses the user template. The message text is available as {{.Text}}.
func NewPrompt(system, user string) (Prompt, error) {
	tmpl, err := template.New("user").Option("missingkey=error").Parse(user)
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to parse user prompt: %w", err)
	}
	return Prompt{System: system, user: tmpl}, nil
}

func DefaultPrompt() Prompt {
	return Prompt{
		System: defaultSystemPrompt,
		user:   template.Must(template.New("user").Parse(defaultUserPrompt)),
	}
}

// Render returns the user prompt for source.
func (p Prompt) Render(source string) (string, error) {
	if p.user == nil {
		return source, nil
	}
	var buf bytes.Buffer
	if err := p.user.Execute(&buf, promptData{Text: source}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
