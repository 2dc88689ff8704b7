package drafts

import "errors"

var (
	ErrNotFound  = errors.New("draft not found")
	ErrCompleted = errors.New("draft already completed")
)
