package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/printworks/jobmeta/pkg/metadata"
)

const (
	// EnvPrefix namespaces the environment variables read by viper.
	EnvPrefix = "JOBMETA"
	// DefaultConfigName is the base name of the optional config file.
	DefaultConfigName = "jobmeta"
)

// LoadAndValidate merges defaults, an optional config file, environment
// variables and command-line flags into extraction Options, and builds the
// logger the run will use. Flag values win over everything else.
func LoadAndValidate(cfgFile, appVersion string, verbose bool, flags *pflag.FlagSet) (metadata.Options, *slog.Logger, error) {
	opts := metadata.DefaultOptions()
	opts.AppVersion = appVersion
	logger := buildLogger(verbose)

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return opts, logger, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			logger.Debug("no configuration file found, using defaults/env/flags")
		} else {
			return opts, logger, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		logger.Debug("using configuration file", slog.String("path", v.ConfigFileUsed()))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	bindings := map[string]string{
		"startWindowBytes": "start-window",
		"endWindowBytes":   "end-window",
		"statusScanBudget": "status-scan-budget",
		"cache":            "cache",
	}
	for key, flag := range bindings {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return opts, logger, err
			}
		}
	}

	opts.StartWindowBytes = v.GetInt64("startWindowBytes")
	opts.EndWindowBytes = v.GetInt64("endWindowBytes")
	opts.StatusScanBudget = v.GetInt64("statusScanBudget")
	opts.CacheEnabled = v.GetBool("cache")
	if noCache, err := flags.GetBool("no-cache"); err == nil && noCache {
		opts.IgnoreCacheRead = true
	}
	opts.Logger = logger.Handler()

	if err := opts.Validate(); err != nil {
		return opts, logger, err
	}
	return opts, logger, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("startWindowBytes", metadata.DefaultStartWindowBytes)
	v.SetDefault("endWindowBytes", metadata.DefaultEndWindowBytes)
	v.SetDefault("statusScanBudget", metadata.DefaultStatusScanBudget)
	v.SetDefault("cache", metadata.DefaultCacheEnabled)
}

// buildLogger picks a handler for stderr: human-readable text on a
// terminal, JSON lines otherwise.
func buildLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}
	return slog.New(handler)
}
