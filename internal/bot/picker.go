package bot

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"scriptorium/internal/models"
)

// DeriveCode returns the archival code for a text file: its filename
// with the extension stripped. The code labels both the issued text
// and every photo archived against it.
func DeriveCode(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ChooseText picks one file uniformly at random. The caller guarantees
// the slice is non-empty. The same text may be issued to several
// contributors; there is no exclusivity.
func ChooseText(texts []models.TextFile) models.TextFile {
	return texts[rand.IntN(len(texts))]
}

// IssueMessage formats the reply carrying the text fragment and its code
func IssueMessage(content, code string) string {
	return fmt.Sprintf("%s\n\nВаш код: %s", content, code)
}

// ArchiveName composes the archive entry name. The format is fixed for
// compatibility with the existing archive: code, underscore, 1-based
// suffix, jpg extension.
func ArchiveName(code string, suffix int) string {
	return fmt.Sprintf("%s_%d.jpg", code, suffix)
}
