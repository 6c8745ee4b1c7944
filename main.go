package main

/*
symchmod computes file modes for chmod-style symbolic modes, and compares its
results against the system chmod command on randomly generated cases.

- todo: run cases against BSD chmod too, it has no --version and rejects sticky on regular files for non-root.
*/

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/mjl-/sconf"
)

var logLevel slog.LevelVar

func xcheckf(err error, format string, args ...any) {
	if err != nil {
		slog.Error(fmt.Sprintf(format, args...), "err", err)
		os.Exit(1)
	}
}

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: symchmod mode [flags] modestr")
		fmt.Fprintln(os.Stderr, "       symchmod gen [flags] >cases.txt")
		fmt.Fprintln(os.Stderr, "       symchmod compare [flags] <cases.txt")
		fmt.Fprintln(os.Stderr, "       symchmod fuzz [flags]")
		fmt.Fprintln(os.Stderr, "       symchmod config >example.conf")
		fmt.Fprintln(os.Stderr, "       symchmod configdefaults >defaults.conf")
		fmt.Fprintln(os.Stderr, "       symchmod testconfig < symchmod.conf")
		fmt.Fprintln(os.Stderr, "       symchmod version")
		flag.PrintDefaults()
		os.Exit(3)
	}
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "mode":
		cmdMode(args)

	case "gen":
		cmdGen(args)

	case "compare":
		cmdCompare(args)

	case "fuzz":
		cmdFuzz(args)

	case "config":
		err := sconf.Describe(os.Stdout, config)
		xcheckf(err, "writing config")

	case "configdefaults":
		err := sconf.Describe(os.Stdout, defaults)
		xcheckf(err, "writing defaults")

	case "testconfig":
		var cfg Config
		err := parseConfigReader(os.Stdin, &cfg)
		xcheckf(err, "parsing config")

	case "version":
		fmt.Printf("symchmod %s %s %s/%s\n", version(), runtime.Version(), runtime.GOOS, runtime.GOARCH)

	default:
		flag.Usage()
	}
}

// version returns the module version, or the vcs revision for development
// builds.
func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}
	var rev, modified string
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			rev = setting.Value
		case "vcs.modified":
			if setting.Value == "true" {
				modified = "+dirty"
			}
		}
	}
	if rev == "" {
		return "(devel)"
	}
	return rev + modified
}

// initLog sets the default logger, writing to stderr at the level from the
// config.
func initLog() {
	err := logLevel.UnmarshalText([]byte(fallback(config.LogLevel, defaults.LogLevel)))
	xcheckf(err, "unmarshalling log level")

	slogOpts := slog.HandlerOptions{
		Level: &logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "time" {
				return slog.Attr{}
			}
			return a
		},
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slogOpts)).With("symchmod", "")
	slog.SetDefault(logger)
}
