package domain

import "errors"

// Failure taxonomy for the editing engine. Model-invariant violations
// (ErrDuplicateBlockID, ErrBlockNotFound) indicate a caller bug and abort
// the offending operation without touching the document. ErrUnknownBlockType
// is a registry miss and must never be swallowed into a silent no-op.
var (
	ErrUnknownBlockType = errors.New("unknown block type")
	ErrDuplicateBlockID = errors.New("duplicate block id")
	ErrBlockNotFound    = errors.New("block not found")
)
