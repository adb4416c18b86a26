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
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Analyzer is the entry point of the extraction pipeline. It holds no per-call state and
// may be shared between goroutines.
type Analyzer struct {
	config    Lookup
	extractor Extractor
}

func NewAnalyzer(config Lookup, extractor Extractor) *Analyzer {
	return &Analyzer{
		config:    config,
		extractor: extractor,
	}
}

// Analyze returns the entities found in text. Backend failures and empty backend results
// are handled by running the regex fallback; Analyze never fails.
func (a *Analyzer) Analyze(ctx context.Context, text string) []EntityDetection {
	source := strings.TrimSpace(text)
	if source == "" {
		return []EntityDetection{}
	}

	target := ResolveTarget(a.config)
	detections, err := a.extract(ctx, source, target)
	if err != nil {
		log.Warn().
			Err(err).
			Str("provider", string(target.Provider)).
			Str("model", target.ModelID).
			Msg("llm extraction failed, switching to fallback extraction")
		return Fallback(source)
	}

	if len(detections) == 0 {
		log.Warn().
			Str("provider", string(target.Provider)).
			Str("model", target.ModelID).
			Msg("llm returned no entities, switching to fallback extraction")
		return Fallback(source)
	}

	return detections
}

func (a *Analyzer) extract(ctx context.Context, source string, target Target) (detections []EntityDetection, err error) {
	defer func() {
		if r := recover(); r != nil {
			detections, err = nil, fmt.Errorf("extractor panicked: %v", r)
		}
	}()

	raw, err := a.extractor.Extract(ctx, source, target)
	if err != nil {
		return nil, err
	}

	detections = Normalize(source, raw)
	log.Debug().
		Str("provider", string(target.Provider)).
		Str("model", target.ModelID).
		Int("entities", len(detections)).
		Msg("llm extraction finished")

	return detections, nil
}
