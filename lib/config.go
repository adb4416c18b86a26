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

package lib

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/analysis"
	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/llm"
)

const configFlag = "config"

type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

/**
	InitializeConfig standardises config initialization across all apps.

	Config is read from a yml file at defaultPath, which the --config flag overrides. Keys on
	defaultConfig which are missing from the file keep their default. Env vars override config keys
	when the env var is the upper-cased key with "." replaced by "_", e.g. STORE_REDIS_HOST.

	The LLM keys (LLM_PROVIDER, OPENAI_API_KEY, ...) are not part of any struct. They are read
	through viper on every analysis, so they can come from the file or the environment.

	targetStruct should be a pointer to a struct which the config can be unmarshalled to.
**/
func InitializeConfig(defaultPath string, defaultConfig map[string]interface{}, targetStruct interface{}) error {

	pflag.String(configFlag, defaultPath, "The config file path.")
	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return err
	}

	configFile := viper.GetString(configFlag)
	if !filepath.IsAbs(configFile) {
		var err error
		configFile, err = filepath.Abs(configFile)
		if err != nil {
			return err
		}
	}

	for k, v := range defaultConfig {
		viper.SetDefault(k, v)
	}

	viper.SetConfigName(strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile)))
	viper.AddConfigPath(filepath.Dir(configFile))

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err := viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		log.Warn().Err(err).Msg("default settings applied")
	} else if err != nil {
		return err
	}

	var bc BaseConfig
	if err := viper.Unmarshal(&bc); err != nil {
		return err
	}

	lvl, err := zerolog.ParseLevel(bc.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)

	return viper.Unmarshal(targetStruct)
}

// ValidateLLMConfig fails when the API key of the configured provider is missing. An
// unsupported provider is validated as openai, the provider it resolves to.
func ValidateLLMConfig(config analysis.Lookup) error {
	target := analysis.ResolveTarget(config)
	key := llm.APIKeyFor(target.Provider)
	if strings.TrimSpace(config.GetString(key)) == "" {
		return fmt.Errorf("%w: %s is required when %s=%s", llm.ErrAPIKeyRequired, key, analysis.ProviderKey, target.Provider)
	}
	return nil
}
