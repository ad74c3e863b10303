package ports

import (
	"context"

	"geoverify/domain/claim"
)

// PaperParser turns raw paper text into the structured form the validators
// consume. The core treats it as an opaque oracle.
type PaperParser interface {
	Parse(ctx context.Context, raw string) (*claim.ParsedPaper, error)
}
