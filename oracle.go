package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/semver"
	"golang.org/x/sys/unix"

	"github.com/mjl-/symchmod/symbolicmode"
)

// The umask is per process. Held while starting chmod with the umask of a test
// case.
var umaskLock sync.Mutex

// chmodOracle runs the chmod command on scratch files.
type chmodOracle struct {
	path       string
	scratchDir string
	timeout    time.Duration
}

func newChmodOracle(c ConfigChmod) chmodOracle {
	return chmodOracle{
		path:       fallback(c.Path, defaults.Chmod.Path),
		scratchDir: c.ScratchDir,
		timeout:    fallback(c.Timeout, defaults.Chmod.Timeout),
	}
}

func (o chmodOracle) Chmod(ctx context.Context, tc testCase) (file, dir outcome, rerr error) {
	tmpDir, err := os.MkdirTemp(o.scratchDir, "symchmod-")
	if err != nil {
		return file, dir, fmt.Errorf("creating scratch directory: %v", err)
	}
	defer func() {
		// Chmod may have left the directory without permissions to list it.
		os.Chmod(filepath.Join(tmpDir, "dir"), 0700)
		if err := os.RemoveAll(tmpDir); err != nil {
			slog.Warn("removing scratch directory", "dir", tmpDir, "err", err)
		}
	}()

	file, err = o.run(ctx, tc, filepath.Join(tmpDir, "file"), false)
	if err != nil {
		return file, dir, err
	}
	dir, err = o.run(ctx, tc, filepath.Join(tmpDir, "dir"), true)
	return file, dir, err
}

func (o chmodOracle) run(ctx context.Context, tc testCase, p string, isDir bool) (outcome, error) {
	if isDir {
		if err := os.Mkdir(p, 0700); err != nil {
			return outcome{}, fmt.Errorf("creating scratch directory: %v", err)
		}
	} else if err := os.WriteFile(p, nil, 0600); err != nil {
		return outcome{}, fmt.Errorf("creating scratch file: %v", err)
	}

	if err := setFileMode(p, tc.FileMode); err != nil {
		return outcome{}, fmt.Errorf("setting initial mode: %v", err)
	}
	// Setgid can be dropped by the kernel, e.g. for a group we are not a member of.
	if m, err := fileMode(p); err != nil {
		return outcome{}, fmt.Errorf("reading initial mode: %v", err)
	} else if m != tc.FileMode {
		return outcome{}, fmt.Errorf("initial mode %04o not accepted by kernel, got %04o", tc.FileMode, m)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, o.path, "--", tc.ModeStr, p)
	cmd.SysProcAttr = sysProcAttr()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t0 := time.Now()
	err := startWithUmask(cmd, tc.Umask)
	if err == nil {
		err = cmd.Wait()
	}
	metricOracleDuration.Observe(float64(time.Since(t0)) / float64(time.Second))
	if err != nil {
		var exitErr *exec.ExitError
		if ctx.Err() == nil && errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			slog.Debug("chmod failed", "modestr", tc.ModeStr, "dir", isDir, "exitcode", exitErr.ExitCode(), "stderr", msg)
			return outcome{Err: fmt.Errorf("chmod exit code %d: %s", exitErr.ExitCode(), msg)}, nil
		}
		return outcome{}, fmt.Errorf("running chmod: %v", err)
	}

	m, err := fileMode(p)
	if err != nil {
		return outcome{}, fmt.Errorf("reading mode after chmod: %v", err)
	}
	return outcome{Mode: m}, nil
}

// startWithUmask starts cmd with umask as the umask it inherits, and restores
// our own umask once it has started.
func startWithUmask(cmd *exec.Cmd, umask symbolicmode.Mode) error {
	umaskLock.Lock()
	defer umaskLock.Unlock()

	old := unix.Umask(int(umask & symbolicmode.PermBits))
	defer unix.Umask(old)
	return cmd.Start()
}

// version returns the canonical semver version of chmod, from the first line of
// its --version output.
func (o chmodOracle) version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	buf, err := exec.CommandContext(ctx, o.path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("running %s --version: %v", o.path, err)
	}
	return parseChmodVersion(string(buf))
}

// parseChmodVersion parses output like "chmod (GNU coreutils) 9.4" into "v9.4.0".
func parseChmodVersion(s string) (string, error) {
	line, _, _ := strings.Cut(s, "\n")
	t := strings.Fields(line)
	if len(t) == 0 {
		return "", fmt.Errorf("empty version output")
	}
	v := "v" + t[len(t)-1]
	if !semver.IsValid(v) {
		return "", fmt.Errorf("unrecognized version %q", t[len(t)-1])
	}
	return semver.Canonical(v), nil
}

// checkOracleVersion logs the chmod version and warns when it cannot be
// determined or is older than configured.
func checkOracleVersion(ctx context.Context, o chmodOracle) {
	v, err := o.version(ctx)
	if err != nil {
		slog.Warn("cannot determine chmod version, results may differ from gnu chmod", "path", o.path, "err", err)
		return
	}
	metricOracleVersion.WithLabelValues(v).Set(1)

	minVersion := fallback(config.Chmod.MinVersion, defaults.Chmod.MinVersion)
	if semver.Compare(v, minVersion) < 0 {
		slog.Warn("chmod older than minimum version", "version", v, "minversion", minVersion)
		return
	}
	slog.Debug("chmod version", "path", o.path, "version", v)
}
