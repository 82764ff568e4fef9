package repo

import "context"

// Presenter shows a notification to the user. Errors are non-fatal to callers.
type Presenter interface {
	Present(ctx context.Context, title, body, iconRef string) error
}
