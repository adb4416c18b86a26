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
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/llm"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store/local"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store/remote"
)

// config structure
type entityAPIConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Server         struct {
		HttpPort        int           `mapstructure:"http_port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	}
	Store struct {
		Backend       store.Type
		Redis         remote.RedisConfig
		Elasticsearch remote.ElasticsearchConfig
	}
	Blocklist    string
	HistoryLimit int `mapstructure:"history_limit"`
}

var config entityAPIConfig

func initConfig() {
	err := lib.InitializeConfig("./config/entity-api.yml", map[string]interface{}{
		"log_level": "info",
		"server": map[string]interface{}{
			"http_port":        8080,
			"shutdown_timeout": "10s",
		},
		"store": map[string]interface{}{
			"backend": string(store.Local),
			"redis": map[string]interface{}{
				"host": "localhost",
				"port": 6379,
			},
			"elasticsearch": map[string]interface{}{
				"host":           "localhost",
				"port":           9200,
				"messages_index": "messages",
				"entities_index": "entities",
			},
		},
		"history_limit": 5,
	}, &config)
	if err != nil {
		panic(err)
	}

	if err := lib.ValidateLLMConfig(viper.GetViper()); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func newStore(ctx context.Context) (store.Client, error) {
	switch config.Store.Backend {
	case store.Local:
		return local.New(), nil
	case store.Redis:
		return remote.NewRedisClient(config.Store.Redis), nil
	case store.Elasticsearch:
		client, err := remote.NewElasticsearchClient(config.Store.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndices(ctx); err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}
}

func newBlocklist() (blocklist.Blocklist, error) {
	if config.Blocklist == "" {
		return blocklist.Blocklist{}, nil
	}
	bl, err := blocklist.Load(config.Blocklist)
	if err != nil {
		return blocklist.Blocklist{}, err
	}
	return *bl, nil
}

func newCors() gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Origin", "Content-Type", lib.RequestIDHeader},
		ExposeHeaders: []string{lib.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(config.Server.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = config.Server.AllowedOrigins
	}
	return cors.New(corsConfig)
}

func main() {
	initConfig()

	ctx := context.Background()
	s, err := newStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	if !s.Ready() {
		log.Warn().Str("backend", string(config.Store.Backend)).Msg("store is not ready yet")
	}

	bl, err := newBlocklist()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	v := viper.GetViper()
	c := controller{
		analyzer:     analysis.NewAnalyzer(v, llm.NewClient(v, llm.DefaultPrompt())),
		store:        s,
		blocklist:    bl,
		historyLimit: config.HistoryLimit,
	}

	r := gin.New()
	r.Use(lib.RequestID(), gin.LoggerWithFormatter(lib.JsonLogFormatter), gin.Recovery(), newCors())
	server{controller: c}.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Server.HttpPort),
		Handler: r,
	}
	go func() {
		log.Info().Int("port", config.Server.HttpPort).Str("store", string(config.Store.Backend)).Msg("starting entity api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Send()
		}
	}()

	lib.HandleInterrupt(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, config.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	})
}
