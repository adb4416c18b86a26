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

// Package remote holds the store.Client implementations backed by external services.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewRedisClient(conf RedisConfig) store.Client {
	return &redisClient{
		Client: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", conf.Host, conf.Port),
			Password: conf.Password,
			DB:       conf.DB,
		}),
		now: time.Now,
	}
}

type redisClient struct {
	*redis.Client
	now func() time.Time
}

func messageKey(id string) string {
	return "message:" + id
}

func entitiesKey(messageID string) string {
	return "message:" + messageID + ":entities"
}

func userMessagesKey(userID string) string {
	return "user:" + userID + ":messages"
}

func (r *redisClient) StoreMessage(ctx context.Context, m *store.Message) error {
	if err := m.Prepare(r.now()); err != nil {
		return err
	}

	b, err := json.Marshal(m)
	if err != nil {
		return err
	}

	_, err = r.WithContext(ctx).TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.Set(messageKey(m.ID), b, 0)
		pipe.ZAdd(userMessagesKey(m.UserID), redis.Z{
			Score:  float64(m.CreatedAt.UnixNano()),
			Member: m.ID,
		})
		return nil
	})
	return err
}

func (r *redisClient) ReplaceEntities(ctx context.Context, messageID string, detections []analysis.EntityDetection) ([]store.EntityRecord, error) {
	c := r.WithContext(ctx)

	n, err := c.Exists(messageKey(messageID)).Result()
	if err != nil {
		return nil, err
	} else if n == 0 {
		return nil, store.ErrMessageNotFound
	}

	records := store.NewEntityRecords(messageID, detections, r.now())
	values := make([]interface{}, len(records))
	for i, record := range records {
		b, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		values[i] = b
	}

	_, err = c.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.Del(entitiesKey(messageID))
		if len(values) > 0 {
			pipe.RPush(entitiesKey(messageID), values...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *redisClient) FindEntitiesByMessageIDs(ctx context.Context, messageIDs []string) ([]store.EntityRecord, error) {
	res := make([]store.EntityRecord, 0)
	if len(messageIDs) == 0 {
		return res, nil
	}

	pipe := r.WithContext(ctx).Pipeline()
	cmds := make([]*redis.StringSliceCmd, 0, len(messageIDs))
	seen := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		cmds = append(cmds, pipe.LRange(entitiesKey(id), 0, -1))
	}
	if _, err := pipe.Exec(); err != nil {
		return nil, err
	}

	for _, cmd := range cmds {
		for _, value := range cmd.Val() {
			var record store.EntityRecord
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				return nil, err
			}
			res = append(res, record)
		}
	}
	store.SortRecords(res)
	return res, nil
}

func (r *redisClient) FindRecentMessages(ctx context.Context, userID string, limit int) ([]store.MessageSummary, error) {
	c := r.WithContext(ctx)
	limit = store.HistoryLimit(limit)

	ids, err := c.ZRevRange(userMessagesKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	res := make([]store.MessageSummary, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	pipe := c.Pipeline()
	messageCmds := make([]*redis.StringCmd, len(ids))
	countCmds := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		messageCmds[i] = pipe.Get(messageKey(id))
		countCmds[i] = pipe.LLen(entitiesKey(id))
	}
	if _, err := pipe.Exec(); err != nil && err != redis.Nil {
		return nil, err
	}

	for i := range ids {
		b, err := messageCmds[i].Bytes()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, err
		}

		var m store.Message
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		res = append(res, m.Summary(int(countCmds[i].Val())))
	}
	return res, nil
}

func (r *redisClient) Ready() bool {
	return r.Ping().Err() == nil
}
