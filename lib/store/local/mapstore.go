package local

import (
	"context"
	"sort"
	"sync"
	"time"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store"
)

func New() store.Client {
	return &local{
		messages: make(map[string]store.Message),
		entities: make(map[string][]store.EntityRecord),
		mut:      &sync.RWMutex{},
		now:      time.Now,
	}
}

type local struct {
	messages map[string]store.Message
	order    []string
	entities map[string][]store.EntityRecord
	mut      *sync.RWMutex
	now      func() time.Time
}

func (l *local) StoreMessage(_ context.Context, m *store.Message) error {
	if err := m.Prepare(l.now()); err != nil {
		return err
	}

	l.mut.Lock()
	defer l.mut.Unlock()

	if _, ok := l.messages[m.ID]; !ok {
		l.order = append(l.order, m.ID)
	}
	l.messages[m.ID] = *m
	return nil
}

func (l *local) ReplaceEntities(_ context.Context, messageID string, detections []analysis.EntityDetection) ([]store.EntityRecord, error) {
	l.mut.Lock()
	defer l.mut.Unlock()

	if _, ok := l.messages[messageID]; !ok {
		return nil, store.ErrMessageNotFound
	}

	records := store.NewEntityRecords(messageID, detections, l.now())
	if len(records) == 0 {
		delete(l.entities, messageID)
		return records, nil
	}

	l.entities[messageID] = records
	return append([]store.EntityRecord(nil), records...), nil
}

func (l *local) FindEntitiesByMessageIDs(_ context.Context, messageIDs []string) ([]store.EntityRecord, error) {
	l.mut.RLock()
	defer l.mut.RUnlock()

	res := make([]store.EntityRecord, 0)
	seen := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, l.entities[id]...)
	}
	store.SortRecords(res)
	return res, nil
}

func (l *local) FindRecentMessages(_ context.Context, userID string, limit int) ([]store.MessageSummary, error) {
	l.mut.RLock()
	defer l.mut.RUnlock()

	var messages []store.Message
	for i := len(l.order) - 1; i >= 0; i-- {
		if m := l.messages[l.order[i]]; m.UserID == userID {
			messages = append(messages, m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})

	if limit = store.HistoryLimit(limit); len(messages) > limit {
		messages = messages[:limit]
	}

	res := make([]store.MessageSummary, len(messages))
	for i := range messages {
		res[i] = messages[i].Summary(len(l.entities[messages[i].ID]))
	}
	return res, nil
}

func (l *local) Ready() bool {
	return true
}
