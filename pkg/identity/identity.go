// Package identity supplies the (pid, process name, host name) triple that
// marks who owns a lock.
package identity

import (
	"os"
	"path/filepath"

	"github.com/pixperk/markerlock/pkg/types"
)

// Provider returns the identity of the calling process.
type Provider interface {
	Current() types.Identity
}

// System reads the identity from the operating system. HostName, when set,
// replaces os.Hostname, which helps when containers share a host name.
type System struct {
	HostName string
}

func (s System) Current() types.Identity {
	host := s.HostName
	if host == "" {
		host = hostname()
	}
	return types.Identity{
		PID:         os.Getpid(),
		ProcessName: processName(),
		HostName:    host,
	}
}

// Static always returns the same identity.
type Static types.Identity

func (s Static) Current() types.Identity {
	return types.Identity(s)
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	return h
}

func processName() string {
	if len(os.Args) == 0 {
		return ""
	}
	return filepath.Base(os.Args[0])
}
