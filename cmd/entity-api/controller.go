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
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/render"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/text"
)

type analyzer interface {
	Analyze(ctx context.Context, text string) []analysis.EntityDetection
}

type controller struct {
	analyzer     analyzer
	store        store.Client
	blocklist    blocklist.Blocklist
	historyLimit int
}

type messageResult struct {
	Message   *store.Message       `json:"message"`
	Analyzed  bool                 `json:"analyzed"`
	Entities  []store.EntityRecord `json:"entities"`
	Reply     string               `json:"reply,omitempty"`
	WikiLinks [][]render.Button    `json:"wikiLinks"`
}

type historyResult struct {
	Messages []store.MessageSummary `json:"messages"`
	Reply    string                 `json:"reply"`
}

func (c controller) Analyze(ctx context.Context, reader io.Reader, contentType contentType) ([]analysis.EntityDetection, error) {
	var source string
	switch contentType {
	case contentTypeHTML:
		s, err := text.HTMLToText(reader)
		if err != nil {
			return nil, NewHttpError(http.StatusBadRequest, err)
		}
		source = s
	default:
		b, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		source = string(b)
	}

	return c.blocklist.FilterEntities(c.analyzer.Analyze(ctx, text.Normalize(source))), nil
}

// ProcessMessage stores m and replaces its entities. Only new messages with text are analysed;
// anything else has its entities cleared. Text is stored in the normalised form the analyser sees.
func (c controller) ProcessMessage(ctx context.Context, m *store.Message) (*messageResult, error) {
	if m.Text != nil {
		normalized := text.Normalize(*m.Text)
		m.Text = &normalized
	}
	if err := c.store.StoreMessage(ctx, m); err != nil {
		return nil, err
	}

	detections := []analysis.EntityDetection{}
	analyze := m.UpdateType == store.NewMessage && m.HasText()
	if analyze {
		detections = c.blocklist.FilterEntities(c.analyzer.Analyze(ctx, *m.Text))
	}

	records, err := c.store.ReplaceEntities(ctx, m.ID, detections)
	if err != nil {
		return nil, err
	}

	res := &messageResult{
		Message:   m,
		Analyzed:  analyze,
		Entities:  records,
		WikiLinks: render.WikiLinks(detections),
	}
	if m.UpdateType == store.NewMessage {
		res.Reply, err = render.AnalysisReply(m.ID, detections, analyze)
		if err != nil {
			return nil, err
		}
	}

	log.Debug().
		Str("message", m.ID).
		Str("update_type", string(m.UpdateType)).
		Int("entities", len(records)).
		Msg("message processed")
	return res, nil
}

func (c controller) History(ctx context.Context, userID string, limit int) (*historyResult, error) {
	if userID == "" {
		return nil, NewHttpError(http.StatusBadRequest, errors.New("user id missing"))
	}

	summaries, err := c.store.FindRecentMessages(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	reply, err := render.History(render.HistoryItems(summaries))
	if err != nil {
		return nil, err
	}
	return &historyResult{Messages: summaries, Reply: reply}, nil
}

func (c controller) Entities(ctx context.Context, messageIDs []string) ([]store.EntityRecord, error) {
	return c.store.FindEntitiesByMessageIDs(ctx, messageIDs)
}
