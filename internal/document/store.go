// Package document tracks open document contents keyed by URI.
package document

import "sync"

// Store is a thread-safe store for document contents keyed by URI.
type Store struct {
	documents map[string]string // URI -> content.
	mu        sync.RWMutex
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		documents: make(map[string]string),
	}
}

// Set stores document content for the given URI.
func (ds *Store) Set(uri, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = content
}

// Get retrieves document content by URI.
func (ds *Store) Get(uri string) (string, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	content, ok := ds.documents[uri]

	return content, ok
}

// Delete removes document content by URI.
func (ds *Store) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// All returns a snapshot of every open document's content. The returned map
// is a copy; mutating it does not affect the store.
func (ds *Store) All() map[string]string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	snapshot := make(map[string]string, len(ds.documents))
	for uri, content := range ds.documents {
		snapshot[uri] = content
	}

	return snapshot
}
