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

package util

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	. "github.com/onsi/gomega"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
)

// BaseURL points at the running entity api, localhost:8080 unless ENTITY_API_URL is set.
func BaseURL() string {
	if u := os.Getenv("ENTITY_API_URL"); u != "" {
		return strings.TrimSuffix(u, "/")
	}
	return "http://localhost:8080"
}

// Call sends body to the api and decodes a 200 response into target.
func Call(method, path, contentType, body string, target interface{}) {
	req, err := http.NewRequest(method, BaseURL()+path, strings.NewReader(body))
	Expect(err).Should(BeNil())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := http.DefaultClient.Do(req)
	Expect(err).Should(BeNil())
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	Expect(err).Should(BeNil())
	Expect(res.StatusCode).Should(Equal(http.StatusOK), fmt.Sprintf("response: %s", b))

	Expect(json.Unmarshal(b, target)).Should(Succeed())
}

func GetEntities(source, contentType string) []analysis.EntityDetection {
	var res struct {
		Entities []analysis.EntityDetection `json:"entities"`
	}
	Call(http.MethodPost, "/analyze", contentType, source, &res)
	return res.Entities
}

// Find returns the first detection with the given type and value.
func Find(detections []analysis.EntityDetection, entityType analysis.EntityType, value string) *analysis.EntityDetection {
	for i := range detections {
		if detections[i].Type == entityType && detections[i].Value == value {
			return &detections[i]
		}
	}
	return nil
}
