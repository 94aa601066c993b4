package fstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

type storeImpl struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a record store backed by the file at path.
// The file is created on the first Add, a missing file is an empty store.
func NewFileStore(path string) store.IRecordStore {
	return &storeImpl{path: path}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Enumerate() ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *storeImpl) Search(field store.Field, substr string) ([]store.Record, error) {
	if _, ok := store.ParseField(string(field)); !ok {
		return nil, store.NewError(store.RetCInvalidField, fmt.Sprintf("unknown field %q", field))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	var matches []store.Record
	for _, r := range records {
		if v, _ := r.Get(field); strings.Contains(v, substr) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

func (s *storeImpl) Add(record store.Record) error {
	line, err := encodeLine(record)
	if err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to encode record: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return storageError("failed to open store file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return storageError("failed to stat store file", err)
	}

	// the file never ends with a newline, so the separator goes in front
	if info.Size() > 0 {
		line = append([]byte{'\n'}, line...)
	}
	if _, err := f.Write(line); err != nil {
		return storageError("failed to append record", err)
	}
	return nil
}

func (s *storeImpl) Delete(target string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}

	idx := -1
	for i, r := range records {
		if r.Matches(target) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	survivors := append(records[:idx:idx], records[idx+1:]...)
	if err := s.rewrite(survivors); err != nil {
		return false, err
	}
	Logger.Debugf("deleted record %d from %s", idx, s.path)
	return true, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// load reads and parses the whole store file. Empty lines are skipped.
func (s *storeImpl) load() ([]store.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("failed to read store file", err)
	}

	var records []store.Record
	for i, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' {
			return nil, storageError(fmt.Sprintf("failed to parse line %d", i+1), errors.New("line is not a JSON object"))
		}
		var r store.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, storageError(fmt.Sprintf("failed to parse line %d", i+1), err)
		}
		records = append(records, r)
	}
	return records, nil
}

// rewrite replaces the store file with the given records, one per line and
// without a trailing newline. The content is written to a temporary file in
// the same directory first and then renamed over the store file.
func (s *storeImpl) rewrite(records []store.Record) error {
	var buf bytes.Buffer
	for i, r := range records {
		line, err := encodeLine(r)
		if err != nil {
			return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to encode record: %v", err))
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return storageError("failed to create temporary file", err)
	}
	tmpName := tmp.Name()

	// CreateTemp uses 0600, keep the mode of the file being replaced
	if info, err := os.Stat(s.path); err == nil {
		if err := tmp.Chmod(info.Mode().Perm()); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return storageError("failed to set file mode", err)
		}
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageError("failed to write temporary file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageError("failed to sync temporary file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storageError("failed to close temporary file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return storageError("failed to replace store file", err)
	}
	return nil
}

// encodeLine marshals a record to a single JSON line without a newline.
func encodeLine(r store.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func storageError(msg string, err error) *store.Error {
	return store.NewError(store.RetCStorageError, fmt.Sprintf("%s: %v", msg, err))
}
