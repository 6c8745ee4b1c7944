package symbolicmode

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestCompute(t *testing.T) {
	test := func(expr string, mode Mode, isDir bool, umask Mode, exp Mode) {
		t.Helper()
		got, err := Compute(expr, mode, isDir, umask)
		if err != nil {
			t.Fatalf("compute %q: %v", expr, err)
		}
		if got != exp {
			t.Fatalf("compute %q on %04o (dir %v, umask %03o): got %04o, expected %04o", expr, mode, isDir, umask, got, exp)
		}
	}
	file := func(expr string, mode Mode, exp Mode) {
		t.Helper()
		test(expr, mode, false, 0o022, exp)
	}
	dir := func(expr string, mode Mode, exp Mode) {
		t.Helper()
		test(expr, mode, true, 0o022, exp)
	}

	file("u=rwx,g=rx,o=r", 0, 0o754)
	dir("u=rwX", 0, 0o700)
	file("u=rws,g=rx,o=r", 0, 0o4654) // s does not imply x.
	test("=rw", 0o4777, false, 0o027, 0o640)
	file("a=rx,u+w", 0, 0o755)
	test("o+w", 0, false, 0o777, 0o002)
	test("o+w", 0, false, 0, 0o002)

	file("u=rw,g=r,o=", 0, 0o640)
	file("u=rwx,g=,o=", 0, 0o700)
	file("a=r", 0, 0o444)
	file("a=-,ug+r,u+w", 0, 0o640)
	file("u=rw,g=r,o=,ug+w", 0, 0o660)
	file("u=rwx,g=rx,o=r,u+w", 0, 0o754)
	file("u=rw,g=r,o=,ug-w", 0, 0o440)
	file("u=rwx,g=rx,o=r,u-w", 0, 0o554)
	file("a=rwxs,u-s", 0, 0o2777)
	file("u+r-w+x", 0o200, 0o500)
	file("uu=rrw", 0, 0o600)
	file("ua=r", 0o7777, 0o444)
	file("u=", 0o4755, 0o055)
	file("u=r=w", 0, 0o200)

	// Conditional execute.
	file("u=rwX", 0, 0o600)
	file("u=rX,g=rX,o=rX", 0, 0o444)
	dir("u=rX,g=rX,o=rX", 0, 0o555)
	file("a+X", 0o644, 0o644)
	file("a+X", 0o744, 0o755)
	file("u+x,g+X", 0o600, 0o710)
	file("g+X,u+x", 0o600, 0o700)
	file("a-x+X", 0o755, 0o644)
	dir("a-x+X", 0o644, 0o755)
	file("u+rw,g+rw,o+rw,a+X", 0o666, 0o666)
	dir("u+rw,g+rw,o+rw,a+X", 0o666, 0o777)
	file("u+rw,g+rw,o+rw,a+X", 0o766, 0o777)
	file("u+rw,g+rw,o+rw,a+X", 0o656, 0o777)
	file("u+rw,g+rw,o+rw,a+X", 0o4656, 0o4777)
	file("u+rw,g+rw,o+rw,a+X", 0o2656, 0o2777)
	file("u+rw,g+rw,o+rw,a+X", 0o1656, 0o1777)
	file("u+rw,g+rw,o+rw", 0o777, 0o777)
	dir("u+rw,g+rw,o+rw", 0o777, 0o777)
	file("u+rw,g+rw,o+rw", 0o666, 0o666)

	// Setuid, setgid and sticky belong to a single class each.
	file("u=rwx,g=rs,o=r", 0, 0o2744)
	file("u=rwx,g=rx,o=rt", 0, 0o1754)
	file("u=rwx,g=rt,o=rx", 0, 0o745)
	dir("u=rwx,g=rx,o=rt", 0, 0o1754)
	dir("u=rwx,g=rt,o=rx", 0, 0o745)
	dir("u=rwx,g=rx,o=r,a+t", 0, 0o1754)
	file("o+s", 0, 0)
	file("u+t", 0, 0)
	file("g+s", 0, 0o2000)
	file("u+s", 0, 0o4000)
	file("a+st", 0, 0o7000)
	file("a=t,ug+srt", 0o737, 0o7440)
	file("a=t,ug+srt,o=X", 0o737, 0o6440)
	dir("a=t,ug+srt,o=X", 0o737, 0o6441)
	dir("a=t,ug+srt,o=Xx", 0o737, 0o6441)
	file("a=t,ug+srt,o=Xx", 0o737, 0o6441)

	// Directories keep setuid/setgid on "=" unless mentioned.
	file("a=", 0o7777, 0)
	dir("a=", 0o7777, 0o6000)
	file("o+t,a=", 0o4226, 0)
	dir("o+t,a=", 0o4226, 0o4000)
	dir("u=rwx", 0o4000, 0o4700)
	dir("u=rwxs", 0, 0o4700)
	dir("u-s", 0o4700, 0o700)
	dir("a=rwx", 0o6000, 0o6777)
	dir("g=rx", 0o2070, 0o2050)
	dir("g=s", 0o2070, 0o2000)

	// Copy from another class.
	file("go=u", 0o740, 0o777)
	file("g=u", 0o2640, 0o660)
	dir("g=u", 0o2640, 0o2660)
	file("u=o", 0o4705, 0o505)
	file("o+g", 0o750, 0o755)
	file("a-u", 0o755, 0)
	file("u=g,g=u", 0o750, 0o550)
	file("g=u-w", 0o700, 0o750)
	file("o=u", 0o4700, 0o4707)
	test("=u", 0o700, false, 0o022, 0o755)

	// Umask is only used without class letters.
	test("=rwx", 0, false, 0o022, 0o755)
	test("a=rwx", 0, false, 0o022, 0o777)
	test("=rwxs", 0, false, 0o077, 0o6700)
	test("=t", 0o777, false, 0o777, 0o1000)
	test("=r+w", 0, false, 0o022, 0o644)
	test("=", 0o7777, false, 0o022, 0)
	test("=rwxst", 0, false, 0o7777, 0o7000)

	// Bits outside the 12 permission bits are ignored.
	test("u+r", 0o177777, false, 0, 0o7777)
}

func TestComputeErrors(t *testing.T) {
	test := func(expr, clause, segment string) {
		t.Helper()
		m, err := Compute(expr, 0o644, false, 0o022)
		if err == nil {
			t.Fatalf("compute %q: got mode %04o, expected error", expr, m)
		}
		if m != 0 {
			t.Fatalf("compute %q: got mode %04o with error, expected 0", expr, m)
		}
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("compute %q: error %v is not ErrInvalid", expr, err)
		}
		var ierr *InvalidError
		if !errors.As(err, &ierr) {
			t.Fatalf("compute %q: error %v is not *InvalidError", expr, err)
		}
		if ierr.Expr != expr || ierr.Clause != clause || ierr.Segment != segment {
			t.Fatalf("compute %q: got expr %q, clause %q, segment %q, expected %q, %q, %q", expr, ierr.Expr, ierr.Clause, ierr.Segment, expr, clause, segment)
		}
		if !strings.Contains(err.Error(), expr) {
			t.Fatalf("compute %q: error message %q does not mention expression", expr, err)
		}
	}

	test("", "", "")
	test(",", "", "")
	test("u=r,", "", "")
	test(",u=r", "", "")
	test("u=r,,g=w", "", "")
	test("u", "u", "")
	test("ug", "ug", "")
	test("z=r", "z=r", "")
	test("a=rw,b+x", "b+x", "")
	test("u=rz", "u=rz", "=rz")
	test("u=r,g=rz", "g=rz", "=rz")
	test("u=ur", "u=ur", "=ur")
	test("u=gu", "u=gu", "=gu")
	test("u=rg", "u=rg", "=rg")
	test("u=r+gx", "u=r+gx", "+gx")
	test("+x", "+x", "")
	test("-w", "-w", "")
	test("+", "+", "")
	test("u=r,+x", "+x", "")
	test("u=R", "u=R", "=R")
	test("u=r g=w", "u=r g=w", "=r g")
}

func TestApplyTwice(t *testing.T) {
	e, err := Parse("a=rwx")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for m := Mode(0); m <= ModeBits; m++ {
		for _, isDir := range []bool{false, true} {
			once := e.Apply(m, isDir, 0o022)
			twice := e.Apply(once, isDir, 0o022)
			if once != twice {
				t.Fatalf("a=rwx on %04o (dir %v): once %04o, twice %04o", m, isDir, once, twice)
			}
		}
	}
}

func TestDisjointClassesCommute(t *testing.T) {
	exprs := []string{
		"u+x,g-w,o+r",
		"u+x,o+r,g-w",
		"g-w,u+x,o+r",
		"g-w,o+r,u+x",
		"o+r,u+x,g-w",
		"o+r,g-w,u+x",
	}
	for m := Mode(0); m <= ModeBits; m++ {
		for _, isDir := range []bool{false, true} {
			exp, err := Compute(exprs[0], m, isDir, 0o022)
			if err != nil {
				t.Fatalf("compute %q: %v", exprs[0], err)
			}
			for _, expr := range exprs[1:] {
				got, err := Compute(expr, m, isDir, 0o022)
				if err != nil {
					t.Fatalf("compute %q: %v", expr, err)
				}
				if got != exp {
					t.Fatalf("compute %q on %04o (dir %v): got %04o, %q gave %04o", expr, m, isDir, got, exprs[0], exp)
				}
			}
		}
	}
}

func TestConditionalExecute(t *testing.T) {
	for m := Mode(0); m <= ModeBits; m++ {
		file, err := Compute("a+X", m, false, 0)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if m&execAll == 0 && file != m {
			t.Fatalf("a+X on file %04o without execute bits: got %04o", m, file)
		}
		if m&execAll != 0 && file != m|execAll {
			t.Fatalf("a+X on file %04o with execute bits: got %04o", m, file)
		}

		dir, err := Compute("a+X", m, true, 0)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		x, err := Compute("a+x", m, true, 0)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if dir != x {
			t.Fatalf("a+X on directory %04o: got %04o, a+x gives %04o", m, dir, x)
		}
	}
}

func TestUmaskOnlyWithoutClasses(t *testing.T) {
	for umask := Mode(0); umask <= PermBits; umask++ {
		if m, err := Compute("a=rwx", 0, false, umask); err != nil || m != 0o777 {
			t.Fatalf("a=rwx with umask %03o: got %04o, %v", umask, m, err)
		}
		if m, err := Compute("o+w", 0o640, false, umask); err != nil || m != 0o642 {
			t.Fatalf("o+w with umask %03o: got %04o, %v", umask, m, err)
		}
		if m, err := Compute("=rwx", 0o7777, false, umask); err != nil || m != 0o777&^umask {
			t.Fatalf("=rwx with umask %03o: got %04o, %v", umask, m, err)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for m := Mode(0); m <= ModeBits; m++ {
		for _, start := range []Mode{0, 0o7777, 0o1234} {
			got, err := Compute(Format(m), start, false, 0o777)
			if err != nil {
				t.Fatalf("compute %q: %v", Format(m), err)
			}
			if got != m {
				t.Fatalf("compute %q on file %04o: got %04o, expected %04o", Format(m), start, got, m)
			}

			perms := m & PermBits
			for _, isDir := range []bool{false, true} {
				expr := "a=," + Format(perms)
				got, err := Compute(expr, m, isDir, 0)
				if err != nil {
					t.Fatalf("compute %q: %v", expr, err)
				}
				if got&PermBits != perms {
					t.Fatalf("compute %q on %04o (dir %v): got %04o", expr, m, isDir, got)
				}
			}
		}
	}
}

func TestFormat(t *testing.T) {
	test := func(m Mode, exp string) {
		t.Helper()
		if s := Format(m); s != exp {
			t.Fatalf("format %04o: got %q, expected %q", m, s, exp)
		}
	}
	test(0o754, "u=rwx,g=rx,o=r")
	test(0o5600, "u=rws,g=,o=t")
	test(0o2070, "u=,g=rwxs,o=")
	test(0, "u=,g=,o=")
}

func TestModeString(t *testing.T) {
	test := func(m Mode, exp string) {
		t.Helper()
		if s := m.String(); s != exp {
			t.Fatalf("string %04o: got %q, expected %q", m, s, exp)
		}
	}
	test(0, "---------")
	test(0o754, "rwxr-xr--")
	test(0o4754, "rwsr-xr--")
	test(0o1644, "rw-r--r-T")
	test(0o2710, "rwx--s---")
	test(0o6644, "rwSr-Sr--")
	test(0o7777, "rwsrwsrwt")
}

func TestExprConcurrent(t *testing.T) {
	e, err := Parse("u=rwX,g=u-w,o=")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if e.String() != "u=rwX,g=u-w,o=" {
		t.Fatalf("string: got %q", e.String())
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := Mode(0); m <= PermBits; m++ {
				if got, exp := e.Apply(m|0o100, false, 0), Mode(0o750); got != exp {
					t.Errorf("apply on %04o: got %04o, expected %04o", m|0o100, got, exp)
					return
				}
			}
		}()
	}
	wg.Wait()
}
