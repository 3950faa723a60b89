// Package config loads the storage layout and runtime settings from
// defaults, an optional storagebucket.yaml, STORAGEBUCKET_* environment
// variables and command flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/JoeSaf/StorageBuckets/records"
	"github.com/JoeSaf/StorageBuckets/storage"
)

const (
	configName = "storagebucket"
	envPrefix  = "STORAGEBUCKET"
)

type Config struct {
	DataDir        string `mapstructure:"data_dir"`
	UploadDir      string `mapstructure:"upload_dir"`
	BucketDir      string `mapstructure:"bucket_dir"`
	QRDir          string `mapstructure:"qr_dir"`
	UploadLog      string `mapstructure:"upload_log"`
	QRRecords      string `mapstructure:"qr_records"`
	ActivityLog    string `mapstructure:"activity_log"`
	RecordBackend  string `mapstructure:"record_backend"`
	RecordDB       string `mapstructure:"record_db"`
	DownloadFolder string `mapstructure:"download_folder"`
	Port           string `mapstructure:"port"`
	ReadOnly       bool   `mapstructure:"read_only"`
	LogLevel       string `mapstructure:"log_level"`
	QRSize         int    `mapstructure:"qr_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".")
	v.SetDefault("upload_dir", "upload")
	v.SetDefault("bucket_dir", "buckets")
	v.SetDefault("qr_dir", filepath.Join("upload", "qr_codes"))
	v.SetDefault("upload_log", "upload_log.json")
	v.SetDefault("qr_records", "upload_records.json")
	v.SetDefault("activity_log", "activity.jsonl")
	v.SetDefault("record_backend", records.BackendJSON)
	v.SetDefault("record_db", "records.db")
	v.SetDefault("download_folder", "downloads")
	v.SetDefault("port", "8080")
	v.SetDefault("read_only", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("qr_size", 150)
}

// flagKeys maps command flags onto configuration keys.
var flagKeys = map[string]string{
	"data-dir":  "data_dir",
	"backend":   "record_backend",
	"log-level": "log_level",
	"read-only": "read_only",
	"port":      "port",
}

// AddFlags registers the flags that override configuration keys, plus
// --config to name a configuration file explicitly.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a configuration file (default: storagebucket.yaml in . or $HOME/.storagebucket)")
	fs.String("data-dir", "", "Directory holding the upload area, buckets and record files")
	fs.String("backend", "", "Record backend (json, bolt, sqlite)")
	fs.String("log-level", "", "Set the log level (debug, info, warn, error)")
	fs.Bool("read-only", false, "Refuse every operation that changes stored files")
	fs.String("port", "", "Port to run the server on")
}

// Load reads the configuration with flags taken from fs, which may be nil.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}

	if v.ConfigFileUsed() == "" {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.storagebucket")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			log.Debugf("Config file not found, using defaults")
		} else {
			return Config{}, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("the configuration cannot be decoded into the struct: %w", err)
	}
	switch cfg.RecordBackend {
	case records.BackendJSON, records.BackendBolt, records.BackendSQLite:
	default:
		return Config{}, fmt.Errorf("%w: %q", records.ErrUnknownBackend, cfg.RecordBackend)
	}
	if cfg.QRSize <= 0 {
		return Config{}, fmt.Errorf("qr_size must be positive, got %d", cfg.QRSize)
	}
	return cfg, nil
}

// Watch reloads the configuration file on change. Only the log level is
// applied to the running process; everything else is read at start.
func Watch(v *viper.Viper) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("Config file changed: %s, reloading...", e.Name)

		cfg, err := decode(v)
		if err != nil {
			log.Errorf("Error while reloading config: %v", err)
			return
		}

		ApplyLogLevel(cfg.LogLevel)
		log.Infof("Log level reloaded to: %s", cfg.LogLevel)
	})
	v.WatchConfig()
}

// ApplyLogLevel sets the process log level. Unknown names fall back to info.
func ApplyLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}

// Path resolves p against the data directory unless it is absolute.
func (c Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func (c Config) Layout() storage.Layout {
	return storage.Layout{
		Root:    filepath.Clean(c.DataDir),
		Uploads: c.Path(c.UploadDir),
		Buckets: c.Path(c.BucketDir),
	}
}

func (c Config) RecordOptions() records.Options {
	return records.Options{
		Backend:     c.RecordBackend,
		UploadLog:   c.Path(c.UploadLog),
		QRRecords:   c.Path(c.QRRecords),
		Database:    c.Path(c.RecordDB),
		ActivityLog: c.Path(c.ActivityLog),
	}
}
