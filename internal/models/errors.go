package models

import "errors"

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrQuestNotFound    = errors.New("game is not tracked")
	ErrAlreadyTracked   = errors.New("game is already tracked")
	ErrUnknownStatus    = errors.New("unknown status")
	ErrInvalidRating    = errors.New("rating must be between 1 and 10")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrStatusMismatch   = errors.New("game is not in the expected status")
	ErrInvalidDocument  = errors.New("invalid game document")
	ErrUnrankedBucket   = errors.New("undiscovered games cannot be reordered")
	ErrMetadataNotFound = errors.New("game not found in metadata source")
	ErrIncompleteOrder  = errors.New("order must list every member of the bucket exactly once")
	ErrNoSource         = errors.New("no metadata source configured")
)
