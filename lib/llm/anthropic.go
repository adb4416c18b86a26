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
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
)

const (
	anthropicMaxTokens = 4096
	toolName           = "record_entities"
)

// anthropicBackend forces a single tool call whose input schema is the response contract and
// returns the tool input.
type anthropicBackend struct {
	client anthropic.Client
}

func newAnthropicBackend(o options) *anthropicBackend {
	opts := []option.RequestOption{option.WithAPIKey(o.apiKey)}
	if o.baseURL != "" {
		opts = append(opts, option.WithBaseURL(o.baseURL))
	}
	if o.maxRetries != nil {
		opts = append(opts, option.WithMaxRetries(*o.maxRetries))
	}
	return &anthropicBackend{client: anthropic.NewClient(opts...)}
}

func (b *anthropicBackend) complete(ctx context.Context, req request) ([]byte, error) {
	schema := analysis.ResponseSchema()
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: req.system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.user)),
		},
		Tools: []anthropic.ToolUnionParam{{
			OfTool: &anthropic.ToolParam{
				Name:        toolName,
				Description: anthropic.String("Record the named entities found in the message."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema["properties"],
					Required:   []string{"entities"},
				},
			},
		}},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: toolName},
		},
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	switch message.StopReason {
	case anthropic.StopReasonMaxTokens:
		return nil, ErrIncompleteResponse
	case anthropic.StopReasonRefusal:
		return nil, ErrRefused
	}

	for _, block := range message.Content {
		if block.Type == "tool_use" && block.Name == toolName {
			if len(block.Input) == 0 {
				break
			}
			return block.Input, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s tool call", ErrEmptyResponse, toolName)
}
