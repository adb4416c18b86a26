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
	"strings"

	"github.com/rs/zerolog/log"
)

// Configuration keys read by ResolveTarget.
const (
	ProviderKey       = "LLM_PROVIDER"
	OpenAIModelKey    = "OPENAI_MODEL"
	AnthropicModelKey = "ANTHROPIC_MODEL"
	DeepSeekModelKey  = "DEEPSEEK_MODEL"
)

type Provider string

const (
	OpenAI    Provider = "openai"
	Anthropic Provider = "anthropic"
	DeepSeek  Provider = "deepseek"
)

// Target identifies the backend and model used for one extraction.
type Target struct {
	Provider Provider
	ModelID  string
}

// ModelKey is the configuration key which overrides the provider's default model.
func (p Provider) ModelKey() string {
	switch p {
	case Anthropic:
		return AnthropicModelKey
	case DeepSeek:
		return DeepSeekModelKey
	default:
		return OpenAIModelKey
	}
}

// DefaultModel is used when no model override is configured.
func (p Provider) DefaultModel() string {
	switch p {
	case Anthropic:
		return "claude-3-5-haiku-latest"
	case DeepSeek:
		return "deepseek-chat"
	default:
		return "gpt-4o-mini"
	}
}

// ParseProvider reports whether value names a supported provider.
func ParseProvider(value string) (Provider, bool) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(value))); p {
	case OpenAI, Anthropic, DeepSeek:
		return p, true
	default:
		return OpenAI, false
	}
}

// ResolveProvider reads LLM_PROVIDER. Unset means openai; an unsupported value is logged
// and also treated as openai.
func ResolveProvider(config Lookup) Provider {
	configured := strings.ToLower(strings.TrimSpace(config.GetString(ProviderKey)))
	if configured == "" {
		return OpenAI
	}

	provider, ok := ParseProvider(configured)
	if !ok {
		log.Warn().Str("provider", configured).Msgf("unsupported %s, falling back to %q", ProviderKey, OpenAI)
	}
	return provider
}

// ResolveTarget picks the provider and model id for the next extraction.
func ResolveTarget(config Lookup) Target {
	provider := ResolveProvider(config)

	modelID := strings.TrimSpace(config.GetString(provider.ModelKey()))
	if modelID == "" {
		modelID = provider.DefaultModel()
	}

	return Target{Provider: provider, ModelID: modelID}
}
