// Package config holds the settings of a run. Settings come from defaults,
// then from OCEANDIST_ environment variables, optionally seeded from a .env
// file, and finally from command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/oceandist/decomp"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "OCEANDIST_"

// Settings describes a run.
type Settings struct {
	NX, NY, NZ  int
	PX, PY      int
	Distributed bool
	Steps       int
	TraceDB     string
	MonitorPort int
	Monitor     bool
	OpenBrowser bool
	LogLevel    string
	LogFormat   string
}

// Default returns the settings of a small single-process run.
func Default() Settings {
	return Settings{
		NX:        16,
		NY:        16,
		NZ:        8,
		PX:        1,
		PY:        1,
		Steps:     10,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads the environment on top of the defaults. The given files are
// loaded into the environment first without overriding variables that are
// already set. Without files, a .env file in the working directory is loaded
// if it exists.
func Load(envFiles ...string) (Settings, error) {
	if len(envFiles) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("loading .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Settings{}, fmt.Errorf("loading %v: %w", envFiles, err)
	}

	s := Default()
	r := envReader{}

	r.getInt("NX", &s.NX)
	r.getInt("NY", &s.NY)
	r.getInt("NZ", &s.NZ)
	r.getInt("PX", &s.PX)
	r.getInt("PY", &s.PY)
	r.getBool("DISTRIBUTED", &s.Distributed)
	r.getInt("STEPS", &s.Steps)
	r.getString("TRACE_DB", &s.TraceDB)
	r.getBool("MONITOR", &s.Monitor)
	r.getInt("MONITOR_PORT", &s.MonitorPort)
	r.getBool("OPEN_BROWSER", &s.OpenBrowser)
	r.getString("LOG_LEVEL", &s.LogLevel)
	r.getString("LOG_FORMAT", &s.LogFormat)

	if r.err != nil {
		return Settings{}, r.err
	}

	return s, nil
}

type envReader struct {
	err error
}

func (r *envReader) lookup(name string) (string, bool) {
	if r.err != nil {
		return "", false
	}

	return os.LookupEnv(EnvPrefix + name)
}

func (r *envReader) getString(name string, dst *string) {
	if v, found := r.lookup(name); found {
		*dst = v
	}
}

func (r *envReader) getInt(name string, dst *int) {
	v, found := r.lookup(name)
	if !found {
		return
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.err = fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		return
	}

	*dst = n
}

func (r *envReader) getBool(name string, dst *bool) {
	v, found := r.lookup(name)
	if !found {
		return
	}

	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		r.err = fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		return
	}

	*dst = b
}

// NumRanks returns the number of ranks the settings ask for.
func (s Settings) NumRanks() int {
	return s.PX * s.PY
}

// Validate checks the settings that do not depend on a rank.
func (s Settings) Validate() error {
	if s.NZ <= 0 {
		return &decomp.ConfigurationError{
			Reason: fmt.Sprintf("number of levels %d must be positive", s.NZ),
		}
	}

	if s.Steps < 0 {
		return &decomp.ConfigurationError{
			Reason: fmt.Sprintf("number of steps %d must not be negative",
				s.Steps),
		}
	}

	if !s.Distributed && s.NumRanks() != 1 {
		return &decomp.ConfigurationError{
			Reason: fmt.Sprintf(
				"a %dx%d process grid needs a distributed run", s.PX, s.PY),
		}
	}

	_, err := s.Decomposition(0)

	return err
}

// Decomposition returns the decomposition seen from rank.
func (s Settings) Decomposition(rank int) (*decomp.Decomposition, error) {
	return decomp.New(s.NX, s.NY, s.PX, s.PY, s.NumRanks(), rank)
}

// NewLogger creates a logger at the configured level and format. Unknown
// levels fall back to info and unknown formats to text.
func (s Settings) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if s.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}
