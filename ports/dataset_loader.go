package ports

import (
	"context"

	"geoverify/domain/claim"
)

// DatasetLoader supplies observational arrays together with their
// authenticity attestation.
type DatasetLoader interface {
	Load(ctx context.Context, source string) (*claim.Dataset, error)
}
