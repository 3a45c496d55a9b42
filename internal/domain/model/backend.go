package model

import "fmt"

// Backend names one of the interchangeable credential store implementations.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendDocument Backend = "document"
	BackendSQLite   Backend = "sqlite"
)

// ParseBackend converts a configuration value into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendMemory, BackendFile, BackendDocument, BackendSQLite:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q: want one of memory, file, document, sqlite", s)
	}
}

func (b Backend) String() string { return string(b) }
