package main

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/mjl-/sconf"
	"golang.org/x/mod/semver"
)

type Config struct {
	LogLevel    string         `sconf-doc:"NOTE: Indenting in this config file can be done with tabs only, not spaces.\n\nValues 'debug', 'info', 'warn', 'error'. Default info."`
	MetricsAddr string         `sconf:"optional" sconf-doc:"If non-empty, address to serve prometheus metrics on during fuzz, at /metrics. E.g. localhost:8525."`
	Chmod       ConfigChmod    `sconf:"optional" sconf-doc:"Settings for the chmod command that results are compared against."`
	Generate    ConfigGenerate `sconf:"optional" sconf-doc:"Settings for generating random test cases."`
}

type ConfigChmod struct {
	Path       string        `sconf:"optional" sconf-doc:"Path to chmod command. If empty, chmod is looked up in $PATH."`
	MinVersion string        `sconf:"optional" sconf-doc:"Minimum version of chmod as reported by --version, as semver, e.g. v8.0. Older or unrecognized versions cause a warning, not an error."`
	Timeout    time.Duration `sconf:"optional" sconf-doc:"Maximum time for a single chmod invocation."`
	ScratchDir string        `sconf:"optional" sconf-doc:"Directory in which temporary directories with scratch files are created. If empty, the system temp directory is used."`
}

type ConfigGenerate struct {
	Count          int   `sconf:"optional" sconf-doc:"Number of test cases to generate."`
	Seed           int64 `sconf:"optional" sconf-doc:"If non-zero, seed for reproducible test cases. Otherwise a random seed is used."`
	MaxClauses     int   `sconf:"optional" sconf-doc:"Maximum number of comma-separated clauses in a mode string."`
	MaxSegments    int   `sconf:"optional" sconf-doc:"Maximum number of operator segments, like +r or =u, per clause."`
	InvalidPercent int   `sconf:"optional" sconf-doc:"Percentage of cases with a deliberately invalid mode string, 0-100."`
}

var config Config
var defaults = Config{
	LogLevel: "info",
	Chmod: ConfigChmod{
		Path:       "chmod",
		MinVersion: "v8.0",
		Timeout:    10 * time.Second,
	},
	Generate: ConfigGenerate{
		Count:          1000,
		MaxClauses:     3,
		MaxSegments:    3,
		InvalidPercent: 5,
	},
}

func fallback[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

// loadConfig sets config from the file at p, or to the defaults if p is empty.
func loadConfig(p string) {
	if p == "" {
		config = defaults
		return
	}
	err := parseConfig(p, &config)
	xcheckf(err, "parsing config")
}

func parseConfig(p string, c *Config) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()
	return parseConfigReader(f, c)
}

func parseConfigReader(r io.Reader, c *Config) error {
	if err := sconf.Parse(r, c); err != nil {
		return err
	}

	var level slog.LevelVar
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("parsing log level %q: %v", c.LogLevel, err)
	}

	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return fmt.Errorf("invalid metrics address %q: %v", c.MetricsAddr, err)
		}
	}

	if c.Chmod.MinVersion != "" && !semver.IsValid(c.Chmod.MinVersion) {
		return fmt.Errorf("invalid minimum chmod version %q, must be semver like v8.0", c.Chmod.MinVersion)
	}
	if c.Chmod.Timeout < 0 {
		return fmt.Errorf("chmod timeout must be >= 0")
	}

	g := c.Generate
	if g.Count < 0 || g.MaxClauses < 0 || g.MaxSegments < 0 {
		return fmt.Errorf("count, max clauses and max segments must be >= 0")
	}
	if g.InvalidPercent < 0 || g.InvalidPercent > 100 {
		return fmt.Errorf("invalid percentage %d must be in range 0-100", g.InvalidPercent)
	}

	return nil
}
