package port

import (
	"context"

	"coverscan/internal/appform"
	"coverscan/internal/domain"
)

// PageInput carries one page scan to a recognition provider.
type PageInput struct {
	FileBytes   []byte
	ContentType string
	FormType    domain.FormType
}

// PageParser abstracts a single recognition provider turning one page scan
// into a partial record: only what that page shows, nil everywhere else.
type PageParser interface {
	// Name identifies the provider ("claude", "openai") for bookkeeping.
	Name() string
	ParsePage(ctx context.Context, input PageInput) (*appform.Record, error)
}

// PageSetParser turns an ordered list of page scans into per-page partial
// records, preserving page order in the output slice.
type PageSetParser interface {
	Name() string
	ParsePages(ctx context.Context, pages []PageInput) ([]*appform.Record, error)
}
