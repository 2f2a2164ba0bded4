package providers

import (
	"context"

	"github.com/reservenow/backend/internal/domain/entities"
)

// LinkOpener hands a deep link to the requester
type LinkOpener interface {
	// OpenNew tries to open url in a new context. It returns false when that
	// is blocked or unsupported.
	OpenNew(ctx context.Context, url string) bool

	// Navigate sends the current context to url
	Navigate(ctx context.Context, url string)
}

// OpenLink tries a new context first and falls back to navigating the
// current one.
func OpenLink(ctx context.Context, opener LinkOpener, url string) entities.OpenMode {
	if opener.OpenNew(ctx, url) {
		return entities.OpenModeNewContext
	}
	opener.Navigate(ctx, url)
	return entities.OpenModeCurrentContext
}
