package config

import (
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/artis101/rustrate/internal/delay"
	"github.com/artis101/rustrate/internal/server"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const defaultRefresh = 200 * time.Millisecond

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type ResponseConfig struct {
	Delay  string `mapstructure:"delay"`
	Format string `mapstructure:"format"`
}

type DashboardConfig struct {
	Refresh string `mapstructure:"refresh"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Response  ResponseConfig  `mapstructure:"response"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	// Command gates, set from flags only.
	Run     bool `mapstructure:"-"`
	Version bool `mapstructure:"-"`
}

func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("rustrate", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.IntP("port", "p", 31337, "port to listen on")
	flags.StringP("delay", "d", "0", "artificial delay in ms, fixed (\"100\") or a range (\"30-150\")")
	flags.StringP("format", "f", "json", "response format: json or text")
	flags.String("log-file", "", "write structured logs to this file")
	run := flags.BoolP("run", "r", false, "start the server and dashboard")
	version := flags.BoolP("version", "V", false, "print version information")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 31337)
	viper.SetDefault("response.delay", "0")
	viper.SetDefault("response.format", "json")
	viper.SetDefault("dashboard.refresh", "200ms")
	viper.SetDefault("logging.level", LogLevelInfo)
	viper.SetDefault("logging.file", "")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindings := map[string]string{
		"server.port":     "port",
		"response.delay":  "delay",
		"response.format": "format",
		"logging.file":    "log-file",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	cfg.Run = *run
	cfg.Version = *version

	// Help and version paths never reject a bad config; nothing runs.
	if cfg.Version || !cfg.Run {
		return &cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Host,
						validation.Required,
						validation.By(validateHost),
					),
					validation.Field(&sc.Port,
						validation.Required,
						validation.Min(1),
						validation.Max(65535),
					),
				)
			}),
		),
		validation.Field(&c.Response,
			validation.Required,
			validation.By(func(value interface{}) error {
				rc, ok := value.(ResponseConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ResponseConfig")
				}
				return validation.ValidateStruct(&rc,
					validation.Field(&rc.Delay,
						validation.Required,
						validation.By(validateDelaySpec),
					),
					validation.Field(&rc.Format,
						validation.Required,
						validation.By(validateFormat),
					),
				)
			}),
		),
		validation.Field(&c.Dashboard,
			validation.Required,
			validation.By(func(value interface{}) error {
				dc, ok := value.(DashboardConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a DashboardConfig")
				}
				return validation.ValidateStruct(&dc,
					validation.Field(&dc.Refresh,
						validation.Required,
						validation.By(validateRefresh),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// RefreshInterval returns the parsed dashboard tick interval. Values that
// fail to parse fall back to the 200ms default.
func (c *Config) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.Dashboard.Refresh)
	if err != nil || d <= 0 {
		return defaultRefresh
	}
	return d
}

func validateHost(value interface{}) error {
	host, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if err := is.Host.Validate(host); err != nil {
		return validation.NewError("validation_invalid_host", "must be a valid hostname or IP address")
	}

	return nil
}

func validateDelaySpec(value interface{}) error {
	spec, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := delay.Parse(spec); err != nil {
		return err
	}

	return nil
}

func validateFormat(value interface{}) error {
	format, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := server.ParseFormat(format); err != nil {
		return err
	}

	return nil
}

func validateRefresh(value interface{}) error {
	refreshStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(refreshStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 200ms, 1s)")
	}

	if d <= 0 {
		return validation.NewError("validation_invalid_refresh", "refresh interval must be positive")
	}

	return nil
}
