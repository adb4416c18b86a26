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

// Package render builds the HTML replies sent back to a chat for analysed messages.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store"
)

const WikiButtonsPerRow = 2

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

var typeLabels = map[analysis.EntityType]string{
	analysis.Person:       "👤 Persons",
	analysis.Organization: "🏢 Organizations",
	analysis.Location:     "📍 Locations",
	analysis.Event:        "📅 Events",
	analysis.SportsClub:   "⚽ Sports clubs",
}

type Item struct {
	Value       string
	Description string
}

type Group struct {
	Label string
	Items []Item
}

type HistoryItem struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Preview     string `json:"preview"`
	EntityCount int    `json:"entityCount"`
}

// Button opens a wiki page for one entity.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type analysisReply struct {
	MessageID  string
	NoText     bool
	NoEntities bool
	TotalCount int
	Groups     []Group
}

type history struct {
	Empty    bool
	Messages []HistoryItem
}

// AnalysisReply renders the reply for one analysed message. Detections are grouped by
// type in display order and keep their relative order within a group.
func AnalysisReply(messageID string, detections []analysis.EntityDetection, hasText bool) (string, error) {
	data := analysisReply{MessageID: messageID}
	switch {
	case !hasText:
		data.NoText = true
	case len(detections) == 0:
		data.NoEntities = true
	default:
		data.TotalCount = len(detections)
		data.Groups = group(detections)
	}
	return execute("analysis-reply.tmpl", data)
}

func History(items []HistoryItem) (string, error) {
	return execute("history.tmpl", history{Empty: len(items) == 0, Messages: items})
}

// HistoryItems numbers summaries from 1 and builds their previews.
func HistoryItems(summaries []store.MessageSummary) []HistoryItem {
	items := make([]HistoryItem, len(summaries))
	for i, s := range summaries {
		items[i] = HistoryItem{
			Index:       i + 1,
			ID:          s.ID,
			Preview:     Preview(s.Text),
			EntityCount: s.EntityCount,
		}
	}
	return items
}

// WikiLinks returns a button for every detection with a wiki URL, WikiButtonsPerRow to a row.
func WikiLinks(detections []analysis.EntityDetection) [][]Button {
	rows := make([][]Button, 0)
	var row []Button
	for _, d := range detections {
		if d.WikiURL == nil || *d.WikiURL == "" {
			continue
		}
		row = append(row, Button{Label: d.DisplayName, URL: *d.WikiURL})
		if len(row) == WikiButtonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func group(detections []analysis.EntityDetection) []Group {
	byType := make(map[analysis.EntityType][]Item)
	for _, d := range detections {
		item := Item{Value: d.Value}
		if d.Description != nil {
			item.Description = strings.TrimSpace(*d.Description)
		}
		byType[d.Type] = append(byType[d.Type], item)
	}

	groups := make([]Group, 0, len(byType))
	for _, t := range analysis.EntityTypes {
		if items, ok := byType[t]; ok {
			groups = append(groups, Group{Label: typeLabels[t], Items: items})
		}
	}
	return groups
}

func execute(name string, data interface{}) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := templates.ExecuteTemplate(buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
