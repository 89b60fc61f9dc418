package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/streetsight/streetsight/internal/utils/pathutil"
)

const envPrefix = "STREETSIGHT"

// DefaultHome is used when neither the --home-dir flag nor the
// STREETSIGHT_HOME environment variable is set.
const DefaultHome = "~/.streetsight"

type Config struct {
	Port        int    `mapstructure:"port"`
	Host        string `mapstructure:"host"`
	Environment string `mapstructure:"environment"`
	HomeDir     string `mapstructure:"home_dir"`
	PublicDir   string `mapstructure:"public_dir"`

	ModelsDir string `mapstructure:"models_dir"`
	ModelFile string `mapstructure:"model_file"`

	ImageSize    int  `mapstructure:"image_size"`
	MaxBatchSize int  `mapstructure:"max_batch_size"`
	BatchWorkers int  `mapstructure:"batch_workers"`
	Warmup       bool `mapstructure:"warmup"`
}

// ModelPath is the resolved location of the model artifact.
func (c *Config) ModelPath() string {
	return filepath.Join(c.ModelsDir, c.ModelFile)
}

var config *Config

// LoadEnvAndConfigFiles resolves the home directory, loads the optional .env
// and config.yaml files and unmarshals everything into the package config.
func LoadEnvAndConfigFiles() error {
	homeDir, err := getHomeDir()
	if err != nil {
		return err
	}

	viper.Set("home_dir", homeDir)

	modelsDir := viper.GetString("models_dir")
	if modelsDir == "" {
		modelsDir = filepath.Join(homeDir, "models")
	}
	modelsDir, err = pathutil.ExpandPath(modelsDir)
	if err != nil {
		return fmt.Errorf("failed to expand models dir path: %w", err)
	}
	viper.Set("models_dir", modelsDir)

	envFile := viper.GetString("env_file")
	if envFile == "" {
		envFile = filepath.Join(homeDir, ".env")
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	viper.AutomaticEnv()

	setDefaults()

	configFile := viper.GetString("config_file")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(homeDir)
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has defaults.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) && !os.IsNotExist(err) {
			return fmt.Errorf("error reading config: %w", err)
		}
	}

	config = &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("host", "0.0.0.0")
	viper.SetDefault("port", 8000)
	viper.SetDefault("environment", "dev")
	viper.SetDefault("model_file", "street_classifier.onnx")
	viper.SetDefault("image_size", 384)
	viper.SetDefault("max_batch_size", 10)
	viper.SetDefault("batch_workers", 4)
}

// IsLoaded reports whether LoadEnvAndConfigFiles has completed.
func IsLoaded() bool {
	return config != nil
}

func MustGetConfig() *Config {
	if config == nil {
		panic("config not loaded")
	}

	return config
}

// Returns the streetsight home directory path. Sources, in order:
// 1. The `home_dir` key from viper (bound to the --home-dir flag).
// 2. The `STREETSIGHT_HOME` environment variable.
// 3. The default home directory.
func getHomeDir() (string, error) {
	homeDir := viper.GetString("home_dir")
	if homeDir == "" {
		homeDir = os.Getenv(envPrefix + "_HOME")
		if homeDir == "" {
			homeDir = DefaultHome
		}
	}

	homeDir, err := pathutil.ExpandPath(homeDir)
	if err != nil {
		return "", fmt.Errorf("failed to expand home path: %w", err)
	}

	return homeDir, nil
}
