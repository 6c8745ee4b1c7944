package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mjl-/symchmod/symbolicmode"
)

func TestParseChmodVersion(t *testing.T) {
	test := func(s, exp string, expErr bool) {
		t.Helper()
		v, err := parseChmodVersion(s)
		if (err != nil) != expErr {
			t.Fatalf("parse %q: err %v, expected error %v", s, err, expErr)
		}
		if v != exp {
			t.Fatalf("parse %q: got %q, expected %q", s, v, exp)
		}
	}

	test("chmod (GNU coreutils) 9.4\nCopyright (C) 2023 Free Software Foundation, Inc.\n", "v9.4.0", false)
	test("chmod (GNU coreutils) 8.32\n", "v8.32.0", false)
	test("chmod (uutils coreutils) 0.0.27", "v0.0.27", false)
	test("", "", true)
	test("chmod: illegal option -- -\n", "", true)
}

func TestFileMode(t *testing.T) {
	p := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(p, nil, 0600); err != nil {
		t.Fatalf("create: %v", err)
	}
	defer os.Chmod(p, 0600)

	for _, m := range []symbolicmode.Mode{0o640, 0o4751, 0o1644, 0} {
		if err := setFileMode(p, m); err != nil {
			t.Fatalf("set mode %04o: %v", m, err)
		}
		got, err := fileMode(p)
		if err != nil {
			t.Fatalf("get mode: %v", err)
		}
		if got != m {
			t.Fatalf("got mode %04o, expected %04o", got, m)
		}
	}
}
