package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mjl-/symchmod/symbolicmode"
)

// testCase is a single input for comparison, with line format:
//
//	umask=022 filemode=0644 modestr=u+x
type testCase struct {
	Umask    symbolicmode.Mode
	FileMode symbolicmode.Mode
	ModeStr  string
}

func (tc testCase) String() string {
	return fmt.Sprintf("umask=%03o filemode=%04o modestr=%s", tc.Umask, tc.FileMode, tc.ModeStr)
}

func parseCase(line string) (testCase, error) {
	var tc testCase

	rest, ok := strings.CutPrefix(line, "umask=")
	if !ok {
		return tc, fmt.Errorf("missing umask")
	}
	umask, rest, ok := strings.Cut(rest, " filemode=")
	if !ok {
		return tc, fmt.Errorf("missing filemode")
	}
	filemode, modestr, ok := strings.Cut(rest, " modestr=")
	if !ok {
		return tc, fmt.Errorf("missing modestr")
	}

	u, err := strconv.ParseUint(umask, 8, 32)
	if err != nil || u > uint64(symbolicmode.PermBits) {
		return tc, fmt.Errorf("bad umask %q", umask)
	}
	m, err := strconv.ParseUint(filemode, 8, 32)
	if err != nil || m > uint64(symbolicmode.ModeBits) {
		return tc, fmt.Errorf("bad filemode %q", filemode)
	}
	tc.Umask = symbolicmode.Mode(u)
	tc.FileMode = symbolicmode.Mode(m)
	tc.ModeStr = modestr
	return tc, nil
}

// outcome is a resulting mode, or the error that prevented one.
type outcome struct {
	Mode symbolicmode.Mode
	Err  error
}

func (o outcome) String() string {
	if o.Err != nil {
		return "ERROR"
	}
	return fmt.Sprintf("%04o", o.Mode)
}

// Two errors are equal, regardless of their message.
func (o outcome) equal(x outcome) bool {
	if o.Err != nil || x.Err != nil {
		return o.Err != nil && x.Err != nil
	}
	return o.Mode == x.Mode
}

// modeOracle returns the modes the reference chmod ends up with for a regular
// file and a directory.
type modeOracle interface {
	Chmod(ctx context.Context, tc testCase) (file, dir outcome, err error)
}

type result struct {
	Case      testCase
	ChmodFile outcome
	ChmodDir  outcome
	OurFile   outcome
	OurDir    outcome
}

// wrong returns "file", "dir" or "both" for mismatches, or the empty string.
func (r result) wrong() string {
	file := !r.ChmodFile.equal(r.OurFile)
	dir := !r.ChmodDir.equal(r.OurDir)
	switch {
	case file && dir:
		return "both"
	case file:
		return "file"
	case dir:
		return "dir"
	}
	return ""
}

func (r result) String() string {
	s := fmt.Sprintf("%s chmod_filemode=%s chmod_dirmode=%s our_filemode=%s our_dirmode=%s", r.Case, r.ChmodFile, r.ChmodDir, r.OurFile, r.OurDir)
	if w := r.wrong(); w != "" {
		s += " # " + strings.ToUpper(w) + " WRONG"
	}
	return s
}

// compareCase runs tc through the oracle and through symbolicmode. An error is
// only returned if the oracle could not be consulted at all.
func compareCase(ctx context.Context, o modeOracle, tc testCase) (result, error) {
	r := result{Case: tc}

	var err error
	r.ChmodFile, r.ChmodDir, err = o.Chmod(ctx, tc)
	if err != nil {
		metricHarnessErrors.Inc()
		return r, err
	}

	if e, err := symbolicmode.Parse(tc.ModeStr); err != nil {
		r.OurFile = outcome{Err: err}
		r.OurDir = outcome{Err: err}
		metricErrors.WithLabelValues("symbolicmode").Inc()
	} else {
		r.OurFile = outcome{Mode: e.Apply(tc.FileMode, false, tc.Umask)}
		r.OurDir = outcome{Mode: e.Apply(tc.FileMode, true, tc.Umask)}
	}
	if r.ChmodFile.Err != nil || r.ChmodDir.Err != nil {
		metricErrors.WithLabelValues("chmod").Inc()
	}

	metricCases.Inc()
	if w := r.wrong(); w != "" {
		metricMismatches.WithLabelValues(w).Inc()
	}
	return r, nil
}
