package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/calderbank/lendermatch/internal/engine"
	"github.com/calderbank/lendermatch/internal/model"
)

// DatabasePath resolves the SQLite path from config, falling back to the
// standard data directory.
func DatabasePath() (string, error) {
	if path := viper.GetString("database.path"); path != "" {
		return ExpandPath(path), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "lendermatch", "lendermatch.db"), nil
}

// LoadEngineConfig builds the engine configuration from Viper. Unset keys
// keep the compiled-in defaults, including the default weight vector.
func LoadEngineConfig() engine.Config {
	cfg := engine.DefaultConfig()

	if n := viper.GetInt("engine.top_n"); n > 0 {
		cfg.TopN = n
	}

	cfg.DefaultWeights = weightOverride("engine.default_weights", cfg.DefaultWeights)

	return cfg
}

func weightOverride(key string, defaults model.WeightVector) model.WeightVector {
	weights := defaults
	if viper.IsSet(key + ".amount") {
		weights.Amount = viper.GetFloat64(key + ".amount")
	}
	if viper.IsSet(key + ".mrr") {
		weights.MRR = viper.GetFloat64(key + ".mrr")
	}
	if viper.IsSet(key + ".tib") {
		weights.TIB = viper.GetFloat64(key + ".tib")
	}
	if viper.IsSet(key + ".cs") {
		weights.CS = viper.GetFloat64(key + ".cs")
	}
	return weights
}
