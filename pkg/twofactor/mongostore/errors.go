package mongostore

import "errors"

var (
	ErrMissingDatabase = errors.New("mongostore: database is required")
	ErrMissingCipher   = errors.New("mongostore: cipher is required")
	ErrQueryFailed     = errors.New("mongostore: query failed")
	ErrCorruptedRecord = errors.New("mongostore: stored record cannot be decoded")
)
