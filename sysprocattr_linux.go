//go:build linux

package main

import "syscall"

// Run chmod in its own process group, and don't let it outlive us.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}
