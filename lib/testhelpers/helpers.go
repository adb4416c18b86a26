package testhelpers

import (
	"github.com/stretchr/testify/mock"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/gen/mocks"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store"
)

func Raw(entityType analysis.EntityType, value string) analysis.RawDetection {
	return analysis.RawDetection{
		Type:  entityType,
		Value: value,
	}
}

func RawWithConfidence(entityType analysis.EntityType, value string, confidence float64) analysis.RawDetection {
	raw := Raw(entityType, value)
	raw.Confidence = Float(confidence)
	return raw
}

func Float(f float64) *float64 {
	return &f
}

func String(s string) *string {
	return &s
}

func Int(i int) *int {
	return &i
}

// Detection returns a located-nowhere detection as Normalize would build it.
func Detection(entityType analysis.EntityType, value string) analysis.EntityDetection {
	return analysis.EntityDetection{
		Type:            entityType,
		Value:           value,
		DisplayName:     value,
		NormalizedValue: analysis.NormalizeValue(value),
		Confidence:      analysis.DefaultConfidence,
		Reason:          analysis.DefaultReason,
	}
}

// Message returns a valid new chat message from userID.
func Message(userID, text string) *store.Message {
	return &store.Message{
		UserID:        userID,
		UpdateType:    store.NewMessage,
		ChatID:        userID,
		ChatMessageID: 1,
		Text:          &text,
	}
}

// Values returns the literal values of detections in order.
func Values(detections []analysis.EntityDetection) []string {
	values := make([]string, len(detections))
	for i, d := range detections {
		values[i] = d.Value
	}
	return values
}

// OfType filters detections by type.
func OfType(detections []analysis.EntityDetection, entityType analysis.EntityType) []analysis.EntityDetection {
	var res []analysis.EntityDetection
	for _, d := range detections {
		if d.Type == entityType {
			res = append(res, d)
		}
	}
	return res
}

// NewMockExtractor returns an extractor which answers a single call with raw and err.
func NewMockExtractor(raw []analysis.RawDetection, err error) *mocks.Extractor {
	extractor := &mocks.Extractor{}
	extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(raw, err).Once()
	return extractor
}

// MapLookup is an in-memory configuration source.
type MapLookup map[string]string

func (m MapLookup) GetString(key string) string {
	return m[key]
}
