// Package memory provides an in-memory document store. It backs tests and
// is the default backend when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"bilancio/internal/store"
)

type Store struct {
	mu   sync.Mutex
	docs map[string]map[string]any
}

func New() *Store {
	return &Store{docs: make(map[string]map[string]any)}
}

func (s *Store) Get(_ context.Context, path string) (store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[path]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	_, id := store.SplitPath(path)
	return store.Document{ID: id, Path: path, Data: cloneMap(data)}, nil
}

func (s *Store) Set(_ context.Context, path string, data map[string]any, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if merge {
		if existing, ok := s.docs[path]; ok {
			merged := cloneMap(existing)
			for k, v := range cloneMap(data) {
				merged[k] = v
			}
			s.docs[path] = merged
			return nil
		}
	}
	s.docs[path] = cloneMap(data)
	return nil
}

func (s *Store) Update(_ context.Context, path string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.docs[path]
	if !ok {
		return store.ErrNotFound
	}
	merged := cloneMap(existing)
	for k, v := range cloneMap(data) {
		merged[k] = v
	}
	s.docs[path] = merged
	return nil
}

func (s *Store) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
	return nil
}

func (s *Store) Add(_ context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[collection+"/"+id] = cloneMap(data)
	return id, nil
}

func (s *Store) ListAll(_ context.Context, collection string) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(collection), nil
}

func (s *Store) Query(_ context.Context, collection string, filters []store.Filter, orderBy string) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collect(collection)
	if len(filters) > 0 {
		kept := docs[:0]
		for _, doc := range docs {
			if matchesAll(doc.Data, filters) {
				kept = append(kept, doc)
			}
		}
		docs = kept
	}
	if orderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			return lessByField(docs[i].Data, docs[j].Data, orderBy)
		})
	}
	return docs, nil
}

// collect returns direct children of collection, cloned, in stable path
// order. Caller must hold the lock.
func (s *Store) collect(collection string) []store.Document {
	prefix := collection + "/"
	var out []store.Document
	for path, data := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := path[len(prefix):]
		if strings.Contains(rest, "/") {
			continue
		}
		out = append(out, store.Document{ID: rest, Path: path, Data: cloneMap(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func matchesAll(data map[string]any, filters []store.Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || !valuesEqual(v, f.Value) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return false
}

func lessByField(a, b map[string]any, field string) bool {
	av, bv := a[field], b[field]
	if af, ok := asFloat(av); ok {
		if bf, ok := asFloat(bv); ok {
			return af < bf
		}
	}
	as, aok := av.(string)
	bs, bok := bv.(string)
	if aok && bok {
		return as < bs
	}
	// Missing or mixed-type fields sort before everything else.
	return !aok && bok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
