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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
)

const schemaName = "entity_extraction"

// openAIBackend talks to the chat completions API. DeepSeek speaks the same protocol but
// only supports JSON-object mode, so the schema is appended to its system prompt instead.
type openAIBackend struct {
	client     openai.Client
	jsonSchema bool
}

func newOpenAIBackend(o options, jsonSchema bool) *openAIBackend {
	opts := []option.RequestOption{option.WithAPIKey(o.apiKey)}
	if o.baseURL != "" {
		opts = append(opts, option.WithBaseURL(o.baseURL))
	}
	if o.maxRetries != nil {
		opts = append(opts, option.WithMaxRetries(*o.maxRetries))
	}
	return &openAIBackend{
		client:     openai.NewClient(opts...),
		jsonSchema: jsonSchema,
	}
}

func (b *openAIBackend) complete(ctx context.Context, req request) ([]byte, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.model),
		Temperature: openai.Float(0),
	}

	system := req.system
	if b.jsonSchema {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName,
					Description: openai.String("Named entities found in the message"),
					Schema:      analysis.ResponseSchema(),
					Strict:      openai.Bool(false),
				},
			},
		}
	} else {
		instructions, err := schemaInstructions()
		if err != nil {
			return nil, err
		}
		system = strings.TrimSpace(system + "\n\n" + instructions)
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}
	params.Messages = []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(req.user),
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("%w: %s", ErrRefused, choice.Message.Refusal)
	}
	if choice.FinishReason == "length" {
		return nil, ErrIncompleteResponse
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: no content", ErrEmptyResponse)
	}
	return []byte(content), nil
}

func schemaInstructions() (string, error) {
	schema, err := json.Marshal(analysis.ResponseSchema())
	if err != nil {
		return "", fmt.Errorf("failed to encode response schema: %w", err)
	}
	return "Reply with a single JSON object matching this JSON schema:\n" + string(schema), nil
}
