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

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store"
)

const maxEntityHits = 10000

type ElasticsearchConfig struct {
	Host          string
	Port          int
	MessagesIndex string `mapstructure:"messages_index"`
	EntitiesIndex string `mapstructure:"entities_index"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		ByMessage struct {
			Buckets []struct {
				Key      string `json:"key"`
				DocCount int    `json:"doc_count"`
			} `json:"buckets"`
		} `json:"by_message"`
	} `json:"aggregations"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
}

var messagesMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":              map[string]string{"type": "keyword"},
			"userId":          map[string]string{"type": "keyword"},
			"updateType":      map[string]string{"type": "keyword"},
			"chatId":          map[string]string{"type": "keyword"},
			"chatMessageId":   map[string]string{"type": "long"},
			"sourceChatId":    map[string]string{"type": "keyword"},
			"sourceMessageId": map[string]string{"type": "long"},
			"text":            map[string]string{"type": "text"},
			"rawPayload":      map[string]interface{}{"type": "object", "enabled": false},
			"createdAt":       map[string]string{"type": "date"},
			"updatedAt":       map[string]string{"type": "date"},
		},
	},
}

var entitiesMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":              map[string]string{"type": "keyword"},
			"messageId":       map[string]string{"type": "keyword"},
			"position":        map[string]string{"type": "integer"},
			"type":            map[string]string{"type": "keyword"},
			"value":           map[string]string{"type": "keyword"},
			"displayName":     map[string]string{"type": "keyword"},
			"normalizedValue": map[string]string{"type": "keyword"},
			"confidence":      map[string]string{"type": "float"},
			"startOffset":     map[string]string{"type": "integer"},
			"endOffset":       map[string]string{"type": "integer"},
			"reason":          map[string]string{"type": "text"},
			"description":     map[string]string{"type": "text"},
			"wikiUrl":         map[string]string{"type": "keyword"},
			"createdAt":       map[string]string{"type": "date"},
		},
	},
}

// ElasticsearchClient keeps messages and entity records in two indices. Writes wait for a
// refresh so a stored message is visible to the next history query.
type ElasticsearchClient struct {
	*elasticsearch.Client
	messagesIndex string
	entitiesIndex string
	now           func() time.Time
}

func NewElasticsearchClient(conf ElasticsearchConfig) (*ElasticsearchClient, error) {
	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{fmt.Sprintf("http://%s:%d", conf.Host, conf.Port)},
	})
	if err != nil {
		return nil, err
	}

	e := &ElasticsearchClient{
		Client:        c,
		messagesIndex: conf.MessagesIndex,
		entitiesIndex: conf.EntitiesIndex,
		now:           time.Now,
	}
	if e.messagesIndex == "" {
		e.messagesIndex = "messages"
	}
	if e.entitiesIndex == "" {
		e.entitiesIndex = "entities"
	}
	return e, nil
}

// EnsureIndices creates the indices with their mappings when they do not exist yet.
func (e *ElasticsearchClient) EnsureIndices(ctx context.Context) error {
	for index, mapping := range map[string]interface{}{
		e.messagesIndex: messagesMapping,
		e.entitiesIndex: entitiesMapping,
	} {
		res, err := e.Indices.Exists([]string{index}, e.Indices.Exists.WithContext(ctx))
		if err != nil {
			return err
		}
		res.Body.Close()
		if res.StatusCode == http.StatusOK {
			continue
		} else if res.StatusCode != http.StatusNotFound {
			return fmt.Errorf("checking index %s: %s", index, res.Status())
		}

		body, err := encode(mapping)
		if err != nil {
			return err
		}
		if _, err := readResponse(e.Indices.Create(index,
			e.Indices.Create.WithBody(body),
			e.Indices.Create.WithContext(ctx),
		)); err != nil {
			return fmt.Errorf("creating index %s: %w", index, err)
		}
	}
	return nil
}

func (e *ElasticsearchClient) StoreMessage(ctx context.Context, m *store.Message) error {
	if err := m.Prepare(e.now()); err != nil {
		return err
	}

	body, err := encode(m)
	if err != nil {
		return err
	}
	_, err = readResponse(e.Index(e.messagesIndex, body,
		e.Index.WithDocumentID(m.ID),
		e.Index.WithRefresh("wait_for"),
		e.Index.WithContext(ctx),
	))
	return err
}

func (e *ElasticsearchClient) ReplaceEntities(ctx context.Context, messageID string, detections []analysis.EntityDetection) ([]store.EntityRecord, error) {
	res, err := e.Exists(e.messagesIndex, messageID, e.Exists.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, store.ErrMessageNotFound
	} else if res.IsError() {
		return nil, errors.New(res.String())
	}

	query, err := encode(deleteEntitiesQuery(messageID))
	if err != nil {
		return nil, err
	}
	if _, err := readResponse(e.DeleteByQuery([]string{e.entitiesIndex}, query,
		e.DeleteByQuery.WithRefresh(true),
		e.DeleteByQuery.WithContext(ctx),
	)); err != nil {
		return nil, err
	}

	records := store.NewEntityRecords(messageID, detections, e.now())
	if len(records) == 0 {
		return records, nil
	}

	buf := bytes.NewBuffer(nil)
	for _, record := range records {
		b, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		buf.WriteString(fmt.Sprintf(`{"index":{"_id":%q}}%s`, record.ID, "\n"))
		buf.Write(b)
		buf.WriteByte('\n')
	}

	b, err := readResponse(e.Bulk(buf,
		e.Bulk.WithIndex(e.entitiesIndex),
		e.Bulk.WithRefresh("wait_for"),
		e.Bulk.WithContext(ctx),
	))
	if err != nil {
		return nil, err
	}
	var bulk esBulkResponse
	if err := json.Unmarshal(b, &bulk); err != nil {
		return nil, err
	} else if bulk.Errors {
		return nil, errors.New("bulk indexing of entities failed")
	}
	return records, nil
}

func (e *ElasticsearchClient) FindEntitiesByMessageIDs(ctx context.Context, messageIDs []string) ([]store.EntityRecord, error) {
	res := make([]store.EntityRecord, 0)
	if len(messageIDs) == 0 {
		return res, nil
	}

	resp, err := e.search(ctx, e.entitiesIndex, entitiesQuery(messageIDs))
	if err != nil {
		return nil, err
	}
	for _, hit := range resp.Hits.Hits {
		var record store.EntityRecord
		if err := json.Unmarshal(hit.Source, &record); err != nil {
			return nil, err
		}
		res = append(res, record)
	}
	store.SortRecords(res)
	return res, nil
}

func (e *ElasticsearchClient) FindRecentMessages(ctx context.Context, userID string, limit int) ([]store.MessageSummary, error) {
	resp, err := e.search(ctx, e.messagesIndex, recentMessagesQuery(userID, store.HistoryLimit(limit)))
	if err != nil {
		return nil, err
	}

	messages := make([]store.Message, len(resp.Hits.Hits))
	ids := make([]string, len(resp.Hits.Hits))
	for i, hit := range resp.Hits.Hits {
		if err := json.Unmarshal(hit.Source, &messages[i]); err != nil {
			return nil, err
		}
		ids[i] = messages[i].ID
	}

	res := make([]store.MessageSummary, 0, len(messages))
	if len(messages) == 0 {
		return res, nil
	}

	counts, err := e.search(ctx, e.entitiesIndex, entityCountsQuery(ids))
	if err != nil {
		return nil, err
	}
	byMessage := make(map[string]int, len(ids))
	for _, bucket := range counts.Aggregations.ByMessage.Buckets {
		byMessage[bucket.Key] = bucket.DocCount
	}

	for i := range messages {
		res = append(res, messages[i].Summary(byMessage[messages[i].ID]))
	}
	return res, nil
}

func (e *ElasticsearchClient) Ready() bool {
	res, err := e.Info()
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK
}

func (e *ElasticsearchClient) search(ctx context.Context, index string, query map[string]interface{}) (*esSearchResponse, error) {
	body, err := encode(query)
	if err != nil {
		return nil, err
	}
	b, err := readResponse(e.Search(
		e.Search.WithIndex(index),
		e.Search.WithBody(body),
		e.Search.WithContext(ctx),
	))
	if err != nil {
		return nil, err
	}

	var resp esSearchResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func deleteEntitiesQuery(messageID string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"messageId": messageID},
		},
	}
}

func entitiesQuery(messageIDs []string) map[string]interface{} {
	return map[string]interface{}{
		"size": maxEntityHits,
		"query": map[string]interface{}{
			"terms": map[string]interface{}{"messageId": messageIDs},
		},
		"sort": []interface{}{
			map[string]string{"createdAt": "asc"},
			map[string]string{"position": "asc"},
		},
	}
}

func recentMessagesQuery(userID string, limit int) map[string]interface{} {
	return map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"term": map[string]interface{}{"userId": userID},
		},
		"sort": []interface{}{
			map[string]string{"createdAt": "desc"},
		},
	}
}

func entityCountsQuery(messageIDs []string) map[string]interface{} {
	return map[string]interface{}{
		"size": 0,
		"query": map[string]interface{}{
			"terms": map[string]interface{}{"messageId": messageIDs},
		},
		"aggs": map[string]interface{}{
			"by_message": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "messageId",
					"size":  len(messageIDs),
				},
			},
		},
	}
}

func encode(v interface{}) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func readResponse(res *esapi.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.New(res.String())
	}
	return io.ReadAll(res.Body)
}
