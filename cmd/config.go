package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/heimdall-ai/heimdall/internal/config"
	"github.com/heimdall-ai/heimdall/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// appConfig is the loaded configuration; nil until InitConfig succeeds.
var appConfig *config.AppConfig

// configErr records why the configuration could not be loaded.
var configErr error

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	appConfig, configErr = nil, nil

	// It's okay if .env doesn't exist.
	_ = godotenv.Load()

	config.BindEnv()
	config.SetDefaults()

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		viper.AddConfigPath(".")
		if home, err := config.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(config.ConfigName)
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case cfgFileFlag != "" && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)):
			configErr = fmt.Errorf("config file not found: %s", cfgFileFlag)
			return
		case errors.As(err, &notFound):
			if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		default:
			configErr = fmt.Errorf("read config file %s: %w", viper.ConfigFileUsed(), err)
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		configErr = err
		return
	}

	level := cfg.Log.Level
	if cfg.Verbose {
		level = "debug"
	}
	if err := logger.Setup(level, cfg.Log.Format); err != nil {
		configErr = err
		return
	}
	logger.SetBasePath(cfg.CrashDir())
	logger.SetVersion(version)

	appConfig = cfg
}

// loadConfig returns the configuration InitConfig loaded, or why it could not.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	if appConfig == nil {
		if configErr != nil {
			return nil, configErr
		}
		return nil, fmt.Errorf("%s: configuration not initialized", cmd.CommandPath())
	}
	return appConfig, nil
}
