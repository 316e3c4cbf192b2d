// Package packages looks up, searches and installs packages across two
// sources: the official repositories and a community repository helper.
//
// Each source is a thin wrapper over an external tool (pacman and yay by
// default). Lookup failures of any kind count as "absent"; the Helper
// decides which source installs a package from the pair of versions.
package packages

import (
	"context"
	"errors"
)

// Source names.
const (
	SourceOfficial  = "official"
	SourceCommunity = "community"
)

var (
	// ErrEmptyName is returned for an empty package name or search term.
	ErrEmptyName = errors.New("package name cannot be empty")

	// ErrNotFound means a source does not know the package.
	ErrNotFound = errors.New("package not found")

	// ErrNoChoice is returned when input ends before a source is chosen.
	ErrNoChoice = errors.New("no installation source chosen")

	// ErrInvalidChoice is returned after repeated invalid choices.
	ErrInvalidChoice = errors.New("invalid installation source choice")

	// ErrNeedChoice is returned when both sources match, no preference was
	// given and nobody is available to answer a prompt.
	ErrNeedChoice = errors.New("package is available from both sources; choose one with --source")
)

// Source is one package source.
type Source interface {
	// Name is the stable identifier (SourceOfficial or SourceCommunity).
	Name() string
	// Label is the human-readable header used in output.
	Label() string
	// Query returns the version the source offers for name, or an error
	// wrapping ErrNotFound when the source does not know it.
	Query(ctx context.Context, name string) (string, error)
	// Search returns the raw output lines containing term.
	Search(ctx context.Context, term string) ([]string, error)
	// Install installs name, with the user's terminal attached.
	Install(ctx context.Context, name string) error
}
