package consent

import (
	"context"

	"scriptorium/internal/models"
)

// Log is an append-only record of contributors who opted in to being
// contacted. Repeated opt-ins append duplicate rows; the log is a
// notification list, not a ledger, so no deduplication is applied.
type Log interface {
	Append(ctx context.Context, rec models.ConsentRecord) error
	Close() error
}
