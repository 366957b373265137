package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"flipledger/internal/domain"
	"flipledger/internal/pkg/fileutil"

	"github.com/tidwall/pretty"
)

// entry is one element of the builds array. Elements that are not JSON objects
// are kept as raw bytes and written back untouched.
type entry struct {
	rec Record
	raw json.RawMessage
}

type document struct {
	Builds []entry
}

type rawDocument struct {
	Builds []json.RawMessage `json:"builds"`
}

func (d document) records() []Record {
	out := make([]Record, 0, len(d.Builds))
	for _, e := range d.Builds {
		if e.rec == nil {
			out = append(out, Record{})
			continue
		}
		out = append(out, e.rec)
	}
	return out
}

func decodeEntry(raw json.RawMessage) entry {
	var rec Record
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil || rec == nil {
		return entry{raw: raw}
	}
	return entry{rec: rec}
}

var prettyOptions = &pretty.Options{Width: 80, Indent: "    "}

// JSONFile keeps every build in one document {"builds": [...]}. Each mutation
// rewrites the whole document atomically.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

// NewJSONFile returns a store backed by path. The file is created on first write.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path is the document location.
func (s *JSONFile) Path() string { return s.path }

func (s *JSONFile) load() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{}, nil
		}
		return document{}, &domain.StoreIOError{Op: "read", Path: s.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return document{}, nil
	}
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return document{}, &domain.StoreIOError{Op: "parse", Path: s.path, Err: err}
	}
	doc := document{Builds: make([]entry, 0, len(raw.Builds))}
	for _, el := range raw.Builds {
		doc.Builds = append(doc.Builds, decodeEntry(el))
	}
	return doc, nil
}

func (s *JSONFile) write(doc document) error {
	raw := rawDocument{Builds: make([]json.RawMessage, 0, len(doc.Builds))}
	for _, e := range doc.Builds {
		if e.rec == nil {
			raw.Builds = append(raw.Builds, e.raw)
			continue
		}
		b, err := json.Marshal(e.rec)
		if err != nil {
			return &domain.StoreIOError{Op: "encode", Path: s.path, Err: err}
		}
		raw.Builds = append(raw.Builds, b)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return &domain.StoreIOError{Op: "encode", Path: s.path, Err: err}
	}
	if err := fileutil.WriteAtomic(s.path, pretty.PrettyOptions(data, prettyOptions), 0o644); err != nil {
		return &domain.StoreIOError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *JSONFile) Upsert(ctx context.Context, sku int, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	found := false
	for _, existing := range doc.Builds {
		if existing.rec != nil && matches(existing.rec, sku) {
			merge(existing.rec, rec)
			found = true
			break
		}
	}
	if !found {
		doc.Builds = append(doc.Builds, entry{rec: withSKU(sku, rec)})
	}
	return s.write(doc)
}

func (s *JSONFile) Find(ctx context.Context, sku int) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, e := range doc.Builds {
		if e.rec != nil && matches(e.rec, sku) {
			return e.rec, nil
		}
	}
	return nil, fmt.Errorf("sku %d: %w", sku, domain.ErrNotFound)
}

func (s *JSONFile) ListAll(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.records(), nil
}

func (s *JSONFile) Delete(ctx context.Context, sku int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	kept := doc.Builds[:0]
	removed := false
	for _, e := range doc.Builds {
		if !removed && e.rec != nil && matches(e.rec, sku) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return fmt.Errorf("sku %d: %w", sku, domain.ErrNotFound)
	}
	doc.Builds = kept
	return s.write(doc)
}

// Ping checks that the document is readable.
func (s *JSONFile) Ping(ctx context.Context) error {
	_, err := s.ListAll(ctx)
	return err
}
