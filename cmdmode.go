package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/mjl-/symchmod/symbolicmode"
)

func cmdMode(args []string) {
	flg := flag.NewFlagSet("symchmod mode", flag.ExitOnError)

	var isDir, verbose bool
	var from, umask string
	flg.BoolVar(&isDir, "d", false, "compute mode for a directory, affects X and keeping setuid/setgid")
	flg.StringVar(&from, "m", "0", "starting mode, octal")
	flg.StringVar(&umask, "umask", "", "umask in octal, used by clauses without u/g/o/a; if empty, the umask of this process is used")
	flg.BoolVar(&verbose, "v", false, "also print the mode in ls -l notation and as symbolic mode")

	flg.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: symchmod mode [flags] modestr")
		flg.PrintDefaults()
		os.Exit(3)
	}
	flg.Parse(args)
	args = flg.Args()
	if len(args) != 1 {
		flg.Usage()
	}

	start, err := strconv.ParseUint(from, 8, 32)
	if err != nil || start > uint64(symbolicmode.ModeBits) {
		log.Fatalf("invalid starting mode %q", from)
	}

	var m symbolicmode.Mode
	if umask == "" {
		m, err = symbolicmode.ComputeProcessUmask(args[0], symbolicmode.Mode(start), isDir)
	} else {
		mask, perr := strconv.ParseUint(umask, 8, 32)
		if perr != nil || mask > uint64(symbolicmode.PermBits) {
			log.Fatalf("invalid umask %q", umask)
		}
		m, err = symbolicmode.Compute(args[0], symbolicmode.Mode(start), isDir, symbolicmode.Mode(mask))
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	if verbose {
		fmt.Printf("%04o %s %s\n", m, m, symbolicmode.Format(m))
	} else {
		fmt.Printf("%04o\n", m)
	}
}
