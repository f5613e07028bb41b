// Copyright 2025 shelfwise Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for the recommendation engine. Every knob
// is independently tunable through a config file or environment
// variables prefixed with SHELFWISE_.
type Config struct {
	Recommend RecommendConfig `mapstructure:"recommend"`
}

type RecommendConfig struct {
	// Alpha is the fraction of the final score attributed to the content
	// signal; the remainder goes to the collaborative signal.
	Alpha float64 `mapstructure:"alpha" validate:"gte=0,lte=1"`
	// DefaultN is the number of recommendations returned when the caller
	// does not supply a limit.
	DefaultN int `mapstructure:"default_n" validate:"gt=0"`
	// Factors is the number of latent factors kept by the truncated SVD.
	Factors int `mapstructure:"factors" validate:"gt=0"`
	// VocabularySize caps the TF-IDF vocabulary.
	VocabularySize int `mapstructure:"vocabulary_size" validate:"gt=0"`
	// SummaryLength bounds the summary prefix fed to the vectorizer.
	SummaryLength int `mapstructure:"summary_length" validate:"gt=0"`
	// NeutralWeight is the profile weight of an un-rated interaction.
	NeutralWeight float64 `mapstructure:"neutral_weight" validate:"gte=0,lte=1"`
	// PreferenceWeight is the prior weight of declared preferences in the
	// content profile.
	PreferenceWeight float64 `mapstructure:"preference_weight" validate:"gte=0"`
	// ModelTTL bounds how long a fitted model may be reused before the
	// snapshot version is consulted again.
	ModelTTL time.Duration `mapstructure:"model_ttl"`
	Popular  PopularConfig `mapstructure:"popular"`
}

type PopularConfig struct {
	// Score is an expression over `item` evaluated to rank items for
	// readers without any usable signal.
	Score string `mapstructure:"score" validate:"required"`
	// Filter is an optional boolean expression over `item`; items failing
	// the filter are excluded from popularity ranking.
	Filter string `mapstructure:"filter"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Recommend: RecommendConfig{
			Alpha:            0.6,
			DefaultN:         10,
			Factors:          5,
			VocabularySize:   5000,
			SummaryLength:    500,
			NeutralWeight:    0.5,
			PreferenceWeight: 1.0,
			ModelTTL:         time.Minute,
			Popular: PopularConfig{
				Score: "item.RatingCount",
			},
		},
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	viper.SetDefault("recommend.alpha", defaultConfig.Recommend.Alpha)
	viper.SetDefault("recommend.default_n", defaultConfig.Recommend.DefaultN)
	viper.SetDefault("recommend.factors", defaultConfig.Recommend.Factors)
	viper.SetDefault("recommend.vocabulary_size", defaultConfig.Recommend.VocabularySize)
	viper.SetDefault("recommend.summary_length", defaultConfig.Recommend.SummaryLength)
	viper.SetDefault("recommend.neutral_weight", defaultConfig.Recommend.NeutralWeight)
	viper.SetDefault("recommend.preference_weight", defaultConfig.Recommend.PreferenceWeight)
	viper.SetDefault("recommend.model_ttl", defaultConfig.Recommend.ModelTTL)
	viper.SetDefault("recommend.popular.score", defaultConfig.Recommend.Popular.Score)
	viper.SetDefault("recommend.popular.filter", defaultConfig.Recommend.Popular.Filter)
}

// LoadConfig loads the configuration from a TOML file, falling back to
// defaults for absent keys. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	viper.SetEnvPrefix("shelfwise")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks field constraints. A failure is a caller-visible
// invalid-input error.
func (config *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}
