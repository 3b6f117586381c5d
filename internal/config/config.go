// FILE: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	EngineRandom = "random"
	EngineProxy  = "proxy"
)

// Config holds everything the engine binary reads from flags and environment
type Config struct {
	Engine      string        `validate:"oneof=random proxy"`
	EnginePath  string        `validate:"required_if=Engine proxy"`
	EngineArgs  []string      `validate:"-"`
	Name        string        `validate:"required,max=64"`
	Author      string        `validate:"max=64"`
	Seed        uint64        `validate:"-"`
	Tick        time.Duration `validate:"min=1ms,max=10s"`
	QuitTimeout time.Duration `validate:"min=100ms,max=1m"`

	LogLevel string `validate:"oneof=trace debug info warn error disabled"`
	LogFile  string `validate:"-"`

	JournalPath string `validate:"-"`
	MonitorAddr string `validate:"omitempty,hostname_port"`

	Interactive string `validate:"oneof=auto on off"`
	HistoryFile string `validate:"-"`
}

var validate = validator.New()

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		Engine:      EngineRandom,
		Name:        "Gambit",
		Author:      "the Gambit authors",
		Tick:        5 * time.Millisecond,
		QuitTimeout: 5 * time.Second,
		LogLevel:    "warn",
		Interactive: "auto",
	}
}

// Load parses args over environment over defaults. getenv is usually os.Getenv.
// A -h request returns flag.ErrHelp after usage has been written to usage.
func Load(args []string, getenv func(string) string, usage io.Writer) (*Config, error) {
	cfg := Defaults()
	if err := cfg.fromEnv(getenv); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("gambit", flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "engine backend: random or proxy")
	fs.StringVar(&cfg.EnginePath, "engine-path", cfg.EnginePath, "executable for the proxy backend")
	engineArgs := fs.String("engine-args", strings.Join(cfg.EngineArgs, " "), "space separated arguments for the proxied engine")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "name reported in id name")
	fs.StringVar(&cfg.Author, "author", cfg.Author, "author reported in id author")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random engine seed, 0 picks one")
	fs.DurationVar(&cfg.Tick, "tick", cfg.Tick, "random engine pause between iterations")
	fs.DurationVar(&cfg.QuitTimeout, "quit-timeout", cfg.QuitTimeout, "how long quit waits for a running search")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn, error or disabled")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write JSON logs to this file instead of stderr")
	fs.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "sqlite file recording every search")
	fs.StringVar(&cfg.MonitorAddr, "monitor", cfg.MonitorAddr, "host:port for the read-only status endpoint")
	fs.StringVar(&cfg.Interactive, "interactive", cfg.Interactive, "line editing: auto, on or off")
	fs.StringVar(&cfg.HistoryFile, "history", cfg.HistoryFile, "line editor history file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	cfg.EngineArgs = strings.Fields(*engineArgs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) fromEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	if v := getenv("GAMBIT_ENGINE"); v != "" {
		c.Engine = v
	}
	if v := getenv("GAMBIT_ENGINE_PATH"); v != "" {
		c.EnginePath = v
	}
	if v := getenv("GAMBIT_ENGINE_ARGS"); v != "" {
		c.EngineArgs = strings.Fields(v)
	}
	if v := getenv("GAMBIT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("GAMBIT_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := getenv("GAMBIT_JOURNAL"); v != "" {
		c.JournalPath = v
	}
	if v := getenv("GAMBIT_MONITOR"); v != "" {
		c.MonitorAddr = v
	}
	if v := getenv("GAMBIT_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GAMBIT_SEED: %w", err)
		}
		c.Seed = seed
	}
	return nil
}

// Validate checks field constraints and returns one error listing every problem
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	var details strings.Builder
	for _, fe := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		details.WriteString(describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", details.String())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", fe.Field(), strings.Replace(fe.Param(), " ", " is ", 1))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", fe.Field())
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
