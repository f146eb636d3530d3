// Package reportcache resolves indexed report UUIDs to full records via the
// backend's batch endpoint and keeps the resolved list in memory.
package reportcache

import (
	"context"
	"sync"

	"github.com/fixthesign/fixthesign/app/models"
	"github.com/fixthesign/fixthesign/internal/pkg/reportapi"
	"github.com/fixthesign/fixthesign/internal/pkg/reportindex"
)

// Cache holds the resolved reports for one device.
type Cache struct {
	mu      sync.Mutex
	api     *reportapi.Client
	index   *reportindex.Index
	reports []models.ReportRecord
}

func New(api *reportapi.Client, index *reportindex.Index) *Cache {
	return &Cache{api: api, index: index}
}

// Refresh re-fetches the records for every indexed UUID in one batch call
// and replaces the in-memory list. An empty index yields an empty list
// without a network call.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	uuids := c.index.List()
	c.mu.Unlock()

	reports, err := c.api.GetReportsByUUID(ctx, uuids)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.reports = reports
	c.mu.Unlock()
	return nil
}

// List returns the current in-memory records.
func (c *Cache) List() []models.ReportRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.ReportRecord, len(c.reports))
	copy(out, c.reports)
	return out
}

// GetByUUID returns the record for uuid. On a cache miss the UUID is first
// registered in the index and the whole list refreshed; a UUID the backend
// does not know yields nil without an error. Refreshing the full list for a
// point lookup is deliberate: UUID lists stay small and the list view wants
// the new entry anyway.
func (c *Cache) GetByUUID(ctx context.Context, uuid string) (*models.ReportRecord, error) {
	if report := c.lookup(uuid); report != nil {
		return report, nil
	}

	if err := c.index.Add(uuid); err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c.lookup(uuid), nil
}

func (c *Cache) lookup(uuid string) *models.ReportRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.reports {
		if c.reports[i].ReportUUID == uuid {
			report := c.reports[i]
			return &report
		}
	}
	return nil
}
