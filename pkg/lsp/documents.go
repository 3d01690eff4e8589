package lsp

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentStore is a thread-safe store for document contents keyed by URI.
type DocumentStore struct {
	documents map[string]string // URI -> content.
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
	}
}

// Set stores document content for the given URI.
func (ds *DocumentStore) Set(uri, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = content
}

// Get retrieves document content by URI.
func (ds *DocumentStore) Get(uri string) (string, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	content, ok := ds.documents[uri]

	return content, ok
}

// Delete removes document content by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Apply applies content change events in order. Whole-document events
// replace the text; ranged events splice it. It reports false when the URI
// is unknown.
func (ds *DocumentStore) Apply(uri string, changes []any) (string, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	text, ok := ds.documents[uri]
	if !ok {
		return "", false
	}

	for _, change := range changes {
		switch ev := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = ev.Text
		case protocol.TextDocumentContentChangeEvent:
			if ev.Range == nil {
				text = ev.Text

				continue
			}

			start, end := ev.Range.IndexesIn(text)
			if end < start {
				end = start
			}

			text = text[:start] + ev.Text + text[end:]
		}
	}

	ds.documents[uri] = text

	return text, true
}
