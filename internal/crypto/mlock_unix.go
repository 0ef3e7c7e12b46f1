//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package crypto

import "golang.org/x/sys/unix"

func lockMemory(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	return unix.Mlock(b) == nil
}

func unlockMemory(b []byte) {
	_ = unix.Munlock(b)
}
