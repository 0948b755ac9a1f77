package pgstore

import "errors"

var (
	ErrMissingPool     = errors.New("pgstore: connection pool is required")
	ErrMissingCipher   = errors.New("pgstore: cipher is required")
	ErrQueryFailed     = errors.New("pgstore: query failed")
	ErrCorruptedRecord = errors.New("pgstore: stored record cannot be decoded")
)
