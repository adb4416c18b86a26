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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/llm"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/render"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/text"
)

type analyzeConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Blocklist      string
}

var (
	config analyzeConfig
	format = pflag.String("format", "json", "Output format: json or reply.")
	isHTML = pflag.Bool("html", false, "Treat the input as html.")
)

func main() {
	if err := lib.InitializeConfig("./config/analyze.yml", map[string]interface{}{
		"log_level": "warn",
	}, &config); err != nil {
		log.Fatal().Err(err).Send()
	}

	source, err := readSource(pflag.Args(), os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	source = text.Normalize(source)

	bl := blocklist.Blocklist{}
	if config.Blocklist != "" {
		loaded, err := blocklist.Load(config.Blocklist)
		if err != nil {
			log.Fatal().Err(err).Send()
		}
		bl = *loaded
	}

	v := viper.GetViper()
	analyzer := analysis.NewAnalyzer(v, llm.NewClient(v, llm.DefaultPrompt()))
	detections := bl.FilterEntities(analyzer.Analyze(context.Background(), source))

	if err := write(os.Stdout, *format, detections, strings.TrimSpace(source) != ""); err != nil {
		log.Fatal().Err(err).Send()
	}
}

// readSource joins the arguments, or reads stdin when there are none.
func readSource(args []string, stdin io.Reader) (string, error) {
	var r io.Reader = strings.NewReader(strings.Join(args, " "))
	if len(args) == 0 {
		r = stdin
	}
	if *isHTML {
		return text.HTMLToText(r)
	}
	b, err := io.ReadAll(r)
	return string(b), err
}

func write(w io.Writer, format string, detections []analysis.EntityDetection, hasText bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(detections)
	case "reply":
		reply, err := render.AnalysisReply("cli", detections, hasText)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, reply)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
