//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package crypto

func lockMemory([]byte) bool { return false }

func unlockMemory([]byte) {}
