// Package storage holds what the character store backends share.
package storage

import "errors"

// ErrNotFound is returned by every backend when a character or owner mapping does not exist.
var ErrNotFound = errors.New("storage: not found")
