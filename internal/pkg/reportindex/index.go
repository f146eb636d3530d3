// Package reportindex persists the list of report UUIDs a device has
// submitted or looked up. There is no account system; this index is the only
// way a device "owns" its reports.
package reportindex

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fixthesign/fixthesign/internal/pkg/keyval"
)

// Storage key format, one JSON array of UUID strings per device.
const IndexKeyFormat = "report:index:%s"

// Index is an ordered, deduplicated set of report UUIDs, newest first.
// Entries are never removed; no delete operation exists.
type Index struct {
	store keyval.Store
	key   string
}

func New(store keyval.Store, deviceID string) *Index {
	return &Index{
		store: store,
		key:   fmt.Sprintf(IndexKeyFormat, deviceID),
	}
}

// List returns all indexed UUIDs, most recently added first. Corrupt or
// missing stored content yields an empty list, never an error.
func (i *Index) List() []string {
	raw, err := i.store.Get(i.key)
	if err != nil {
		return nil
	}

	var uuids []string
	if err := json.Unmarshal([]byte(raw), &uuids); err != nil {
		// Treat unparseable content as empty, matching how the webapp
		// handled a corrupted local storage entry.
		return nil
	}
	return uuids
}

// Add prepends a UUID to the index. Adding a UUID that is already present is
// a no-op, so the list contains each UUID exactly once, ordered by first
// insertion, most recent first.
func (i *Index) Add(uuid string) error {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil
	}

	uuids := i.List()
	for _, existing := range uuids {
		if existing == uuid {
			return nil
		}
	}

	uuids = append([]string{uuid}, uuids...)
	raw, err := json.Marshal(uuids)
	if err != nil {
		return fmt.Errorf("failed to encode report index: %w", err)
	}
	if err := i.store.Set(i.key, string(raw)); err != nil {
		return fmt.Errorf("failed to persist report index: %w", err)
	}
	return nil
}

// Contains reports whether the UUID is already indexed.
func (i *Index) Contains(uuid string) bool {
	for _, existing := range i.List() {
		if existing == uuid {
			return true
		}
	}
	return false
}
