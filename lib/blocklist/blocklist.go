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

package blocklist

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
)

// Blocklist drops entities which are known to be noise, e.g. channel names or signatures.
type Blocklist struct {
	CaseSensitive   map[string]bool
	CaseInsensitive map[string]bool
	Types           map[analysis.EntityType]bool
}

// Allowed returns true if entity is not blocklisted.
func (blocklist Blocklist) Allowed(entity string) bool {
	if _, ok := blocklist.CaseSensitive[entity]; ok {
		return false
	}

	if _, ok := blocklist.CaseInsensitive[strings.ToLower(entity)]; ok {
		return false
	}

	return true
}

// FilterEntities removes blocklisted detections, matching on value and display name. Order is kept.
func (blocklist Blocklist) FilterEntities(detections []analysis.EntityDetection) []analysis.EntityDetection {
	res := make([]analysis.EntityDetection, 0, len(detections))
	for _, d := range detections {
		if blocklist.Types[d.Type] {
			continue
		}
		if blocklist.Allowed(d.Value) && blocklist.Allowed(d.DisplayName) {
			res = append(res, d)
		}
	}
	return res
}

// Load returns an unmarshalled blocklist from a YAML file at the given path.
func Load(path string) (*Blocklist, error) {

	bytes, err := os.ReadFile(path)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not find blocklist at %v", path))
		return nil, err
	}

	type yamlBlocklist struct {
		CaseSensitive   []string `yaml:"case_sensitive"`
		CaseInsensitive []string `yaml:"case_insensitive"`
		Types           []string `yaml:"types"`
	}

	yamlBl := yamlBlocklist{}
	if err := yaml.Unmarshal(bytes, &yamlBl); err != nil {
		log.Error().Msg(fmt.Sprintf("could not load blocklist from %v", path))
		return nil, err
	}

	res := Blocklist{
		CaseSensitive:   map[string]bool{},
		CaseInsensitive: map[string]bool{},
		Types:           map[analysis.EntityType]bool{},
	}

	for _, v := range yamlBl.CaseSensitive {
		res.CaseSensitive[v] = true
	}
	for _, v := range yamlBl.CaseInsensitive {
		res.CaseInsensitive[strings.ToLower(v)] = true
	}
	for _, v := range yamlBl.Types {
		res.Types[analysis.EntityType(v)] = true
	}

	log.Info().Msg(fmt.Sprintf("blocklist set from %v", path))

	return &res, nil
}
