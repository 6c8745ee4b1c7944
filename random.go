package main

import (
	cryptorand "crypto/rand"
	mathrand "math/rand/v2"
	"strings"

	"github.com/mjl-/symchmod/symbolicmode"
)

// newRand returns a reproducible source for a non-zero seed, and a randomly
// seeded one otherwise.
func newRand(seed int64) *mathrand.Rand {
	if seed != 0 {
		return mathrand.New(mathrand.NewPCG(uint64(seed), 0))
	}
	var s [32]byte
	_, err := cryptorand.Read(s[:])
	if err != nil {
		panic(err)
	}
	return mathrand.New(mathrand.NewChaCha8(s))
}

// generator makes random test cases.
type generator struct {
	rand           *mathrand.Rand
	maxClauses     int
	maxSegments    int
	invalidPercent int
}

func newGenerator(seed int64, g ConfigGenerate) *generator {
	return &generator{
		rand:           newRand(seed),
		maxClauses:     max(1, fallback(g.MaxClauses, defaults.Generate.MaxClauses)),
		maxSegments:    max(1, fallback(g.MaxSegments, defaults.Generate.MaxSegments)),
		invalidPercent: g.InvalidPercent,
	}
}

func (g *generator) next() testCase {
	return testCase{
		Umask:    symbolicmode.Mode(g.rand.IntN(0o1000)),
		FileMode: symbolicmode.Mode(g.rand.IntN(0o10000)),
		ModeStr:  g.expr(),
	}
}

func (g *generator) expr() string {
	clauses := make([]string, 1+g.rand.IntN(g.maxClauses))
	for i := range clauses {
		clauses[i] = g.clause()
	}
	if g.rand.IntN(100) < g.invalidPercent {
		i := g.rand.IntN(len(clauses))
		clauses[i] = g.invalid(clauses[i])
	}
	return strings.Join(clauses, ",")
}

func (g *generator) clause() string {
	var b strings.Builder

	// A quarter has no classes at all, for the umask. Others may still end up
	// empty.
	if g.rand.IntN(4) > 0 {
		for _, c := range "ugoa" {
			if g.rand.IntN(3) == 0 {
				b.WriteRune(c)
			}
		}
	}
	noClasses := b.Len() == 0

	n := 1 + g.rand.IntN(g.maxSegments)
	for i := 0; i < n; i++ {
		op := "=+-"[g.rand.IntN(3)]
		if i == 0 && noClasses {
			op = '='
		}
		b.WriteByte(op)

		if g.rand.IntN(6) == 0 {
			b.WriteByte("ugo"[g.rand.IntN(3)])
			continue
		}
		for j, np := 0, g.rand.IntN(4); j < np; j++ {
			b.WriteByte("rwxXst"[g.rand.IntN(6)])
		}
	}
	return b.String()
}

// invalid turns a valid clause into one that both chmod and symbolicmode
// reject.
func (g *generator) invalid(clause string) string {
	switch g.rand.IntN(3) {
	case 0:
		return clause + "z"
	case 1:
		return clause + "+ur"
	default:
		return "k" + clause
	}
}
