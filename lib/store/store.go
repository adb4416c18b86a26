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

// Package store persists messages and the entities found in them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
)

type Type string

const (
	Local         Type = "local"
	Redis         Type = "redis"
	Elasticsearch Type = "elasticsearch"
)

type UpdateType string

const (
	NewMessage    UpdateType = "message"
	EditedMessage UpdateType = "edited_message"
)

// DefaultHistoryLimit is used when FindRecentMessages is called without a positive limit.
const DefaultHistoryLimit = 10

var (
	ErrInvalidMessage  = errors.New("invalid message")
	ErrMessageNotFound = errors.New("message not found")
)

type Message struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId" validate:"required"`
	UpdateType      UpdateType      `json:"updateType" validate:"required,oneof=message edited_message"`
	ChatID          string          `json:"chatId" validate:"required"`
	ChatMessageID   int64           `json:"chatMessageId"`
	SourceChatID    *string         `json:"sourceChatId"`
	SourceMessageID *int64          `json:"sourceMessageId"`
	Text            *string         `json:"text"`
	RawPayload      json.RawMessage `json:"rawPayload,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// EntityRecord is a detection stored against a message. Position is the index of the
// detection in the analysis result it came from.
type EntityRecord struct {
	ID        string `json:"id"`
	MessageID string `json:"messageId"`
	Position  int    `json:"position"`
	analysis.EntityDetection
	CreatedAt time.Time `json:"createdAt"`
}

// MessageSummary is a history row.
type MessageSummary struct {
	ID            string     `json:"id"`
	Text          *string    `json:"text"`
	UpdateType    UpdateType `json:"updateType"`
	ChatID        string     `json:"chatId"`
	ChatMessageID int64      `json:"chatMessageId"`
	CreatedAt     time.Time  `json:"createdAt"`
	EntityCount   int        `json:"entityCount"`
}

type Client interface {
	// StoreMessage validates m, assigns its ID when unset and its timestamps, then saves it.
	StoreMessage(ctx context.Context, m *Message) error
	// ReplaceEntities removes every record of the message and stores detections in their place.
	ReplaceEntities(ctx context.Context, messageID string, detections []analysis.EntityDetection) ([]EntityRecord, error)
	// FindEntitiesByMessageIDs returns the records of the given messages in creation order.
	FindEntitiesByMessageIDs(ctx context.Context, messageIDs []string) ([]EntityRecord, error)
	// FindRecentMessages returns the newest messages of a user with their entity counts.
	FindRecentMessages(ctx context.Context, userID string, limit int) ([]MessageSummary, error)
	Ready() bool
}

var validate = validator.New()

// Prepare validates m and fills in the fields owned by the store.
func (m *Message) Prepare(now time.Time) error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return nil
}

// HasText reports whether the message carries any non-blank text.
func (m *Message) HasText() bool {
	return m.Text != nil && strings.TrimSpace(*m.Text) != ""
}

func (m *Message) Summary(entityCount int) MessageSummary {
	return MessageSummary{
		ID:            m.ID,
		Text:          m.Text,
		UpdateType:    m.UpdateType,
		ChatID:        m.ChatID,
		ChatMessageID: m.ChatMessageID,
		CreatedAt:     m.CreatedAt,
		EntityCount:   entityCount,
	}
}

// NewEntityRecords builds the records for one ReplaceEntities call.
func NewEntityRecords(messageID string, detections []analysis.EntityDetection, now time.Time) []EntityRecord {
	records := make([]EntityRecord, len(detections))
	for i, d := range detections {
		records[i] = EntityRecord{
			ID:              uuid.NewString(),
			MessageID:       messageID,
			Position:        i,
			EntityDetection: d,
			CreatedAt:       now,
		}
	}
	return records
}

// SortRecords orders records by creation time, then by position within their analysis.
func SortRecords(records []EntityRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].Position < records[j].Position
	})
}

// HistoryLimit normalises a requested history size.
func HistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}
