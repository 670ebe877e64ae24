package repository

import "errors"

// Backend-agnostic sentinels. Each backend maps its driver errors onto these
// so the service layer can translate them without knowing the storage engine.
var (
	// ErrNotFound signals an unknown ticket id or an absent attachment.
	ErrNotFound = errors.New("record not found")

	// ErrEmptyPayload rejects zero-length attachment bodies before any write.
	ErrEmptyPayload = errors.New("attachment payload is empty")

	// ErrChecksumMismatch signals a stored payload that fails integrity verification.
	ErrChecksumMismatch = errors.New("attachment checksum mismatch")

	// ErrDuplicateID signals a ticket id collision on create. The caller may
	// retry with a fresh id; nothing was written.
	ErrDuplicateID = errors.New("duplicate ticket id")
)
