// Package storage defines the corpus file-system abstraction.
package storage

import (
	"time"

	"github.com/starford/docstamp/internal/models"
)

// Provider is the interface for corpus file operations. Paths are relative
// to the repository root.
type Provider interface {
	// Root returns the absolute repository root.
	Root() string
	// List returns metadata for every file under dir whose extension is in
	// exts (case-insensitive). An empty exts lists every regular file.
	List(dir string, exts []string) ([]models.DocumentMetadata, error)
	// Stat returns metadata for a single regular file.
	Stat(path string) (models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
	// Touch sets the access and modification time of path.
	Touch(path string, t time.Time) error
	// IsDir reports whether path names an existing directory.
	IsDir(path string) bool
	// Rel converts an absolute or root-relative path to a clean root-relative one.
	Rel(path string) (string, error)
}
