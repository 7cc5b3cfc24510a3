// Package cache holds the published feed document.
package cache

import (
	"sync/atomic"
	"time"

	"penta-xml-feed/internal/render"
)

// Snapshot is the published state. A new Snapshot replaces the old one as a
// whole; fields are never modified in place.
type Snapshot struct {
	Document      render.Document
	LastSuccessAt time.Time
}

// HasSuccess reports whether a successful refresh produced this snapshot or
// one of its predecessors.
func (s *Snapshot) HasSuccess() bool {
	return !s.LastSuccessAt.IsZero()
}

// DocumentCache is a single atomically swapped snapshot. Readers never block
// and never observe a partially built document.
type DocumentCache struct {
	current atomic.Pointer[Snapshot]
}

// NewDocumentCache creates a cache serving placeholder until the first
// publish.
func NewDocumentCache(placeholder render.Document) *DocumentCache {
	c := &DocumentCache{}
	c.current.Store(&Snapshot{Document: placeholder})
	return c
}

// Load returns the current snapshot.
func (c *DocumentCache) Load() *Snapshot {
	return c.current.Load()
}

// Publish replaces the document with a successful one.
func (c *DocumentCache) Publish(doc render.Document) *Snapshot {
	s := &Snapshot{Document: doc, LastSuccessAt: doc.GeneratedAt}
	c.current.Store(s)
	return s
}

// PublishFallback stores doc only while no successful document exists. Once
// a success has been published the cache keeps it and false is returned.
func (c *DocumentCache) PublishFallback(doc render.Document) bool {
	for {
		old := c.current.Load()
		if old.HasSuccess() {
			return false
		}
		if c.current.CompareAndSwap(old, &Snapshot{Document: doc}) {
			return true
		}
	}
}
