package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// FPL API
	FPLBaseURL string `mapstructure:"FPL_BASE_URL"`

	// Optimization
	OptimizationTimeout int `mapstructure:"OPTIMIZATION_TIMEOUT"` // seconds
	SearchPopulation    int `mapstructure:"SEARCH_POPULATION"`
	SearchGenerations   int `mapstructure:"SEARCH_GENERATIONS"`

	// Transfer planning
	PlannerBeamWidth    int `mapstructure:"PLANNER_BEAM_WIDTH"`
	PlannerMaxTransfers int `mapstructure:"PLANNER_MAX_TRANSFERS"`
	PlannerCandidates   int `mapstructure:"PLANNER_CANDIDATES"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FPL_BASE_URL", "https://fantasy.premierleague.com/api")
	viper.SetDefault("OPTIMIZATION_TIMEOUT", 30)
	viper.SetDefault("SEARCH_POPULATION", 40)
	viper.SetDefault("SEARCH_GENERATIONS", 60)
	viper.SetDefault("PLANNER_BEAM_WIDTH", 12)
	viper.SetDefault("PLANNER_MAX_TRANSFERS", 3)
	viper.SetDefault("PLANNER_CANDIDATES", 8)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
