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

// Package llm implements analysis.Extractor on top of the OpenAI, DeepSeek and Anthropic APIs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
)

// Configuration keys read on every call.
const (
	OpenAIAPIKey     = "OPENAI_API_KEY"
	OpenAIBaseURL    = "OPENAI_BASE_URL"
	AnthropicAPIKey  = "ANTHROPIC_API_KEY"
	AnthropicBaseURL = "ANTHROPIC_BASE_URL"
	DeepSeekAPIKey   = "DEEPSEEK_API_KEY"
	DeepSeekBaseURL  = "DEEPSEEK_BASE_URL"
	TimeoutKey       = "LLM_TIMEOUT"
	MaxRetriesKey    = "LLM_MAX_RETRIES"
)

const defaultDeepSeekBaseURL = "https://api.deepseek.com"

var (
	ErrAPIKeyRequired     = errors.New("API key required")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrEmptyResponse      = errors.New("empty response")
	ErrIncompleteResponse = errors.New("response was cut short")
	ErrRefused            = errors.New("request refused by the model")
)

// APIKeyFor returns the configuration key holding the API key of p.
func APIKeyFor(p analysis.Provider) string {
	switch p {
	case analysis.OpenAI:
		return OpenAIAPIKey
	case analysis.Anthropic:
		return AnthropicAPIKey
	case analysis.DeepSeek:
		return DeepSeekAPIKey
	}
	return ""
}

type request struct {
	model  string
	system string
	user   string
}

type backend interface {
	complete(ctx context.Context, req request) ([]byte, error)
}

// Client is a stateless analysis.Extractor. Credentials are read from config on every call.
type Client struct {
	config analysis.Lookup
	prompt Prompt
}

func NewClient(config analysis.Lookup, prompt Prompt) *Client {
	return &Client{
		config: config,
		prompt: prompt,
	}
}

func (c *Client) Extract(ctx context.Context, source string, target analysis.Target) ([]analysis.RawDetection, error) {
	b, err := c.backend(target.Provider)
	if err != nil {
		return nil, err
	}

	user, err := c.prompt.Render(source)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	if timeout := c.timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body, err := b.complete(ctx, request{
		model:  target.ModelID,
		system: c.prompt.System,
		user:   user,
	})
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", target.Provider, err)
	}

	return analysis.DecodeResponse(body)
}

func (c *Client) backend(p analysis.Provider) (backend, error) {
	switch p {
	case analysis.OpenAI:
		opts, err := c.options(p, OpenAIBaseURL, "")
		if err != nil {
			return nil, err
		}
		return newOpenAIBackend(opts, true), nil
	case analysis.DeepSeek:
		opts, err := c.options(p, DeepSeekBaseURL, defaultDeepSeekBaseURL)
		if err != nil {
			return nil, err
		}
		return newOpenAIBackend(opts, false), nil
	case analysis.Anthropic:
		opts, err := c.options(p, AnthropicBaseURL, "")
		if err != nil {
			return nil, err
		}
		return newAnthropicBackend(opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
}

type options struct {
	apiKey     string
	baseURL    string
	maxRetries *int
}

func (c *Client) options(p analysis.Provider, baseURLKey, defaultBaseURL string) (options, error) {
	apiKey := strings.TrimSpace(c.config.GetString(APIKeyFor(p)))
	if apiKey == "" {
		return options{}, fmt.Errorf("%w: set %s", ErrAPIKeyRequired, APIKeyFor(p))
	}

	baseURL := strings.TrimSpace(c.config.GetString(baseURLKey))
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return options{
		apiKey:     apiKey,
		baseURL:    baseURL,
		maxRetries: c.maxRetries(),
	}, nil
}

func (c *Client) timeout() time.Duration {
	value := strings.TrimSpace(c.config.GetString(TimeoutKey))
	if value == "" {
		return 0
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Err(err).Str("key", TimeoutKey).Msg("ignoring invalid timeout")
		return 0
	}
	return d
}

func (c *Client) maxRetries() *int {
	value := strings.TrimSpace(c.config.GetString(MaxRetriesKey))
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		log.Warn().Str("key", MaxRetriesKey).Str("value", value).Msg("ignoring invalid retry count")
		return nil
	}
	return &n
}
