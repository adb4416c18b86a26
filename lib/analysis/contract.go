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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Bounds of the structured response every backend must satisfy.
const (
	MaxEntities          = 40
	MaxValueLength       = 200
	MaxReasonLength      = 240
	MaxDescriptionLength = 500
	MaxWikiURLLength     = 500
)

// ErrContract is wrapped by every structured response that breaks the contract.
var ErrContract = errors.New("response does not satisfy the entity contract")

// Response is the object a backend returns.
type Response struct {
	Entities []RawDetection `json:"entities" validate:"max=40,dive"`
}

var validate = validator.New()

// Validate checks the response against the contract.
func (r *Response) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrContract, err)
	}
	return nil
}

// DecodeResponse parses and validates a structured response. A missing entities array is
// treated as empty.
func DecodeResponse(b []byte) ([]RawDetection, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrContract)
	}

	var resp Response
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContract, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}

	return resp.Entities, nil
}

// ResponseSchema is the JSON schema of Response handed to the backends. wikiUrl carries no
// uri format because strict schema modes reject it; URLs are checked by Normalize instead.
func ResponseSchema() map[string]interface{} {
	nullableString := func(maxLength int) map[string]interface{} {
		return map[string]interface{}{
			"type":      []string{"string", "null"},
			"maxLength": maxLength,
		}
	}

	types := make([]string, len(EntityTypes))
	for i, t := range EntityTypes {
		types[i] = string(t)
	}

	return map[string]interface{}{
		"type":     "object",
		"required": []string{"entities"},
		"properties": map[string]interface{}{
			"entities": map[string]interface{}{
				"type":     "array",
				"maxItems": MaxEntities,
				"items": map[string]interface{}{
					"type":                 "object",
					"required":             []string{"type", "value"},
					"additionalProperties": false,
					"properties": map[string]interface{}{
						"type": map[string]interface{}{
							"type": "string",
							"enum": types,
						},
						"value": map[string]interface{}{
							"type":      "string",
							"minLength": 1,
							"maxLength": MaxValueLength,
						},
						"confidence": map[string]interface{}{
							"type":    "number",
							"minimum": 0,
							"maximum": 1,
						},
						"reason":      nullableString(MaxReasonLength),
						"description": nullableString(MaxDescriptionLength),
						"wikiUrl":     nullableString(MaxWikiURLLength),
					},
				},
			},
		},
		"additionalProperties": false,
	}
}
