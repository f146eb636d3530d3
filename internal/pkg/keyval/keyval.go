// Package keyval abstracts the device-local persistence used for the report
// index so the same logic can target a redis instance, a plain file, or an
// in-memory store in tests.
package keyval

import "errors"

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("keyval: key not found")

// Store is a minimal synchronous key-value store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
