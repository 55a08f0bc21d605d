// Package transform provides the two-tier cache for AI-generated platform
// content and the generator abstraction that produces it.
package transform

import (
	"time"

	"github.com/jonathan/publish-agent/internal/pipeline"
	"github.com/jonathan/publish-agent/internal/types"
)

// Cache is the two-tier transform cache for one content item: a
// process-lifetime in-memory map in front of the authoritative per-item
// disk store. Both tiers are keyed by platform identity, not stage ID, so
// two stages targeting the same platform share one transform.
//
// A Cache is not safe for concurrent use; the engine accesses it only from
// its owner goroutine.
type Cache struct {
	store  *pipeline.Store
	itemID string
	mem    map[string]string
}

// NewCache creates a cache scoped to one content item.
func NewCache(store *pipeline.Store, itemID string) *Cache {
	return &Cache{
		store:  store,
		itemID: itemID,
		mem:    map[string]string{},
	}
}

// Get returns the cached transform text for a platform, consulting the
// in-memory tier first and falling back to the disk store.
func (c *Cache) Get(platformKey string) (string, bool) {
	if text, ok := c.mem[platformKey]; ok {
		return text, true
	}
	records, err := c.store.LoadTransforms(c.itemID)
	if err != nil {
		return "", false
	}
	rec, ok := records[platformKey]
	if !ok || rec.Text == "" {
		return "", false
	}
	c.mem[platformKey] = rec.Text
	return rec.Text, true
}

// Put writes freshly generated transform text through to both tiers. The
// disk record's approval flag is reset: new text has not been reviewed.
func (c *Cache) Put(platformKey, text string) error {
	return c.write(platformKey, func(rec *types.TransformRecord) {
		rec.Text = text
		rec.GeneratedAtMillis = time.Now().UnixMilli()
		rec.Approved = false
	})
}

// SaveEdit writes a manual edit through to both tiers. The edit is only
// considered saved once the disk write succeeds.
func (c *Cache) SaveEdit(platformKey, text string) error {
	return c.write(platformKey, func(rec *types.TransformRecord) {
		rec.Text = text
		rec.GeneratedAtMillis = time.Now().UnixMilli()
	})
}

// SetApproved marks a platform's transform as approved (or not) on disk.
func (c *Cache) SetApproved(platformKey string, approved bool) error {
	return c.write(platformKey, func(rec *types.TransformRecord) {
		rec.Approved = approved
	})
}

// Record returns the full disk record for a platform.
func (c *Cache) Record(platformKey string) (types.TransformRecord, bool, error) {
	records, err := c.store.LoadTransforms(c.itemID)
	if err != nil {
		return types.TransformRecord{}, false, err
	}
	rec, ok := records[platformKey]
	return rec, ok, nil
}

// Clear drops the in-memory tier. The disk store is untouched: a pipeline
// edit invalidates cached text for the session, not the saved records.
func (c *Cache) Clear() {
	c.mem = map[string]string{}
}

func (c *Cache) write(platformKey string, update func(*types.TransformRecord)) error {
	records, err := c.store.LoadTransforms(c.itemID)
	if err != nil {
		return err
	}
	rec := records[platformKey]
	update(&rec)
	records[platformKey] = rec
	if err := c.store.SaveTransforms(c.itemID, records); err != nil {
		return err
	}
	c.mem[platformKey] = rec.Text
	return nil
}
