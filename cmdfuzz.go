package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func cmdGen(args []string) {
	flg := flag.NewFlagSet("symchmod gen", flag.ExitOnError)

	var configPath string
	var count int
	var seed int64
	flg.StringVar(&configPath, "config", "", "config file, see 'symchmod config'; defaults are used if empty")
	flg.IntVar(&count, "count", 0, "number of cases to generate, overrides config")
	flg.Int64Var(&seed, "seed", 0, "seed for reproducible cases, overrides config")

	flg.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: symchmod gen [flags] >cases.txt")
		flg.PrintDefaults()
		os.Exit(3)
	}
	flg.Parse(args)
	if len(flg.Args()) != 0 {
		flg.Usage()
	}

	loadConfig(configPath)
	initLog()

	g := newGenerator(fallback(seed, config.Generate.Seed), config.Generate)
	n := fallback(count, fallback(config.Generate.Count, defaults.Generate.Count))
	out := bufio.NewWriter(os.Stdout)
	for i := 0; i < n; i++ {
		fmt.Fprintln(out, g.next())
	}
	err := out.Flush()
	xcheckf(err, "writing cases")
}

func cmdCompare(args []string) {
	flg := flag.NewFlagSet("symchmod compare", flag.ExitOnError)

	var configPath string
	flg.StringVar(&configPath, "config", "", "config file, see 'symchmod config'; defaults are used if empty")

	flg.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: symchmod compare [flags] <cases.txt")
		fmt.Fprintln(os.Stderr, "each line has the form: umask=022 filemode=0644 modestr=u+x")
		flg.PrintDefaults()
		os.Exit(3)
	}
	flg.Parse(args)
	if len(flg.Args()) != 0 {
		flg.Usage()
	}

	loadConfig(configPath)
	initLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := newChmodOracle(config.Chmod)
	checkOracleVersion(ctx, o)

	mismatches, err := compareLines(ctx, o, os.Stdin, os.Stdout)
	xcheckf(err, "comparing")
	if mismatches > 0 {
		os.Exit(1)
	}
}

// compareLines compares each case read from r, writing a report line for it to
// w. Empty lines and lines starting with # are skipped.
func compareLines(ctx context.Context, o modeOracle, r io.Reader, w io.Writer) (mismatches int, rerr error) {
	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tc, err := parseCase(line)
		if err != nil {
			return mismatches, fmt.Errorf("line %d: %v", lineno, err)
		}
		res, err := compareCase(ctx, o, tc)
		if err != nil {
			if ctx.Err() != nil {
				return mismatches, ctx.Err()
			}
			slog.Error("comparing case", "line", lineno, "case", tc, "err", err)
			continue
		}
		if res.wrong() != "" {
			mismatches++
		}
		if _, err := fmt.Fprintln(w, res); err != nil {
			return mismatches, err
		}
	}
	return mismatches, scanner.Err()
}

func cmdFuzz(args []string) {
	flg := flag.NewFlagSet("symchmod fuzz", flag.ExitOnError)

	var configPath, metricsAddr string
	var count int
	var seed int64
	var all bool
	flg.StringVar(&configPath, "config", "", "config file, see 'symchmod config'; defaults are used if empty")
	flg.IntVar(&count, "count", 0, "number of cases to compare, overrides config")
	flg.Int64Var(&seed, "seed", 0, "seed for reproducible cases, overrides config")
	flg.StringVar(&metricsAddr, "metricsaddr", "", "if non-empty, address to serve prometheus metrics on, overrides config")
	flg.BoolVar(&all, "all", false, "print report lines for all cases, not only mismatches")

	flg.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: symchmod fuzz [flags]")
		flg.PrintDefaults()
		os.Exit(3)
	}
	flg.Parse(args)
	if len(flg.Args()) != 0 {
		flg.Usage()
	}

	loadConfig(configPath)
	initLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveMetrics(fallback(metricsAddr, config.MetricsAddr))

	o := newChmodOracle(config.Chmod)
	checkOracleVersion(ctx, o)

	// Always log a seed, so mismatches can be reproduced.
	seed = fallback(seed, config.Generate.Seed)
	if seed == 0 {
		seed = newRand(0).Int64N(math.MaxInt64) + 1
	}
	g := newGenerator(seed, config.Generate)
	n := fallback(count, fallback(config.Generate.Count, defaults.Generate.Count))
	slog.Info("comparing against chmod", "cases", n, "seed", seed, "chmod", o.path)

	var done, mismatches, failed int
	for ; done < n && ctx.Err() == nil; done++ {
		tc := g.next()
		res, err := compareCase(ctx, o, tc)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			failed++
			slog.Error("comparing case", "case", tc, "err", err)
			continue
		}
		if res.wrong() != "" {
			mismatches++
			fmt.Println(res)
		} else if all {
			fmt.Println(res)
		}
	}

	slog.Info("done", "cases", done, "mismatches", mismatches, "failed", failed, "interrupted", ctx.Err() != nil)
	if mismatches > 0 {
		os.Exit(1)
	}
	if ctx.Err() != nil {
		log.Fatalf("interrupted")
	}
}
