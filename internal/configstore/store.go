// Package configstore keeps named pipeline configurations. A configuration
// is stored as the HCL document produced by package configfile.
package configstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no configuration has the requested name.
	ErrNotFound = errors.New("configuration not found")
	// ErrInvalidName is returned for names that cannot be stored.
	ErrInvalidName = errors.New("invalid configuration name")
)

// Store persists configuration documents by name.
type Store interface {
	Save(ctx context.Context, name string, body []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

// ValidateName rejects empty names and names that would escape a directory.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.ContainsAny(name, `/\`), name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
