// Package jsonfile implements a registration-only credential store persisted
// as a single JSON array of {username, password} records.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/viant/afs"

	"github.com/ericfisherdev/loginpanel/internal/domain/model"
	"github.com/ericfisherdev/loginpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.Registrar = (*Store)(nil)
	_ driven.Counter   = (*Store)(nil)
)

const fileMode = 0o644

// Store appends credentials to a JSON file. Every Register reads the whole
// array and rewrites it; mu serialises that span within the process.
// No duplicate check is performed.
type Store struct {
	mu  sync.Mutex
	fs  afs.Service
	url string
}

// NewStore creates a Store for location, which may be a local path or any
// URL understood by afs (file://, mem://, gs://, s3://).
func NewStore(location string) (*Store, error) {
	u, err := normalizeURL(location)
	if err != nil {
		return nil, err
	}
	return &Store{fs: afs.New(), url: u}, nil
}

// URL returns the normalised location of the backing file.
func (s *Store) URL() string { return s.url }

// Init writes an empty array when the file does not exist yet. An existing
// file is left untouched.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.fs.Exists(ctx, s.url)
	if err != nil {
		return fmt.Errorf("check users file %q: %w", s.url, err)
	}
	if exists {
		return nil
	}
	return s.write(ctx, []json.RawMessage{})
}

// Register appends cred to the file. Either field empty, or not valid UTF-8,
// yields ErrInvalidInput and the file is not read or written.
func (s *Store) Register(ctx context.Context, cred model.Credential) error {
	if err := cred.Validate(); err != nil {
		return fmt.Errorf("register %q: %w", cred.Username, driven.ErrInvalidInput)
	}
	// encoding/json would substitute U+FFFD and List would no longer return
	// what was registered.
	if !utf8.ValidString(cred.Username) || !utf8.ValidString(cred.Password) {
		return fmt.Errorf("register %q: non UTF-8 field: %w", cred.Username, driven.ErrInvalidInput)
	}

	record, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential %q: %w", cred.Username, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx)
	if err != nil {
		return err
	}
	records = append(records, record)

	return s.write(ctx, records)
}

// List returns every stored record in file order.
func (s *Store) List(ctx context.Context) ([]model.Credential, error) {
	s.mu.Lock()
	records, err := s.read(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	creds := make([]model.Credential, 0, len(records))
	for i, raw := range records {
		var cred model.Credential
		if err := json.Unmarshal(raw, &cred); err != nil {
			return nil, fmt.Errorf("decode record %d in %q: %w", i, s.url, err)
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

// Count returns the number of records in the file.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// read loads the raw records. Records are kept as raw JSON so a rewrite
// reproduces prior entries without re-encoding them through model.Credential.
func (s *Store) read(ctx context.Context) ([]json.RawMessage, error) {
	data, err := s.fs.DownloadWithURL(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("read users file %q: %w", s.url, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode users file %q: %w", s.url, err)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// write replaces the file with records. Local files are written to a sibling
// temp file and renamed over the target so a reader never sees a partial
// array; other afs schemes replace the whole object on upload.
func (s *Store) write(ctx context.Context, records []json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users file: %w", err)
	}
	data = append(data, '\n')

	path, ok := localPath(s.url)
	if !ok {
		if err := s.fs.Upload(ctx, s.url, fileMode, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write users file %q: %w", s.url, err)
		}
		return nil
	}

	tmp := s.url + ".tmp"
	if err := s.fs.Upload(ctx, tmp, fileMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write users file %q: %w", tmp, err)
	}
	if err := os.Rename(path+".tmp", path); err != nil {
		return fmt.Errorf("replace users file %q: %w", s.url, err)
	}
	return nil
}

// localPath returns the filesystem path of a file:// URL.
func localPath(u string) (string, bool) {
	p, ok := strings.CutPrefix(u, "file://")
	if !ok {
		return "", false
	}
	return filepath.FromSlash(p), true
}

// normalizeURL turns a bare path into an absolute file:// URL and passes
// scheme-qualified URLs through unchanged.
func normalizeURL(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("users file location is empty")
	}
	if strings.Contains(location, "://") {
		return location, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("resolve users file %q: %w", location, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
