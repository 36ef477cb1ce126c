package filestore

import (
	"context"
	"errors"
	"io"

	"scriptorium/internal/models"
)

// ErrNoTexts is returned by ListTexts when the source folder holds no
// plain-text files
var ErrNoTexts = errors.New("no text files available in source folder")

// Store defines the file store operations the bot needs: listing and
// fetching source texts, and archiving handwriting photos under
// collision-free names
type Store interface {
	// ListTexts returns all non-trashed plain-text files in the source folder
	ListTexts(ctx context.Context) ([]models.TextFile, error)

	// Fetch downloads the full content of a text file
	Fetch(ctx context.Context, fileID string) ([]byte, error)

	// CountMatching returns how many archive entries have the given
	// substring in their name. Used to derive the next photo suffix;
	// survives process restarts and multi-instance deployment.
	CountMatching(ctx context.Context, substr string) (int, error)

	// SavePhoto stores an archive entry under the given name
	SavePhoto(ctx context.Context, name string, r io.Reader) error
}
