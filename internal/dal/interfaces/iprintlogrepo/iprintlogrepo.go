package iprintlogrepo

import (
	"context"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/printlog"
)

// IPrintLogRepository is an interface for a print action log sink.
type IPrintLogRepository interface {
	Append(ctx context.Context, entry printlog.Entry) error
}
