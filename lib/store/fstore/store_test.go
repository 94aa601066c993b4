package fstore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/stretchr/testify/require"
)

var (
	ivanov  = store.Record{Surname: "Ivanov", Name: "Ivan", Patronymic: "Ivanovich", Phone: "12345", Note: "work"}
	petrov  = store.Record{Surname: "Petrov", Name: "Petr", Patronymic: "Petrovich", Phone: "67890", Note: "home"}
	sidorov = store.Record{Surname: "Sidorov", Name: "Sidor", Patronymic: "Sidorovich", Phone: "55555", Note: "Ivanov's friend"}
)

// newTestStore creates a store in a fresh temporary directory
func newTestStore(t *testing.T) (store.IRecordStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.txt")
	return NewFileStore(path), path
}

// TestEnumerateMissingFile tests that a store without a file is empty
func TestEnumerateMissingFile(t *testing.T) {
	s, path := newTestStore(t)

	records, err := s.Enumerate()
	require.NoError(t, err)
	require.Empty(t, records)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "enumerate must not create the file")
}

// TestAddAppendsInOrder tests that added records are enumerated in insertion order
func TestAddAppendsInOrder(t *testing.T) {
	s, _ := newTestStore(t)

	for i, r := range []store.Record{ivanov, petrov, sidorov} {
		require.NoError(t, s.Add(r))

		records, err := s.Enumerate()
		require.NoError(t, err)
		require.Len(t, records, i+1)
		require.Equal(t, r, records[i])
	}
}

// TestFileFormat tests the on-disk layout: one JSON object per line, keys in
// schema order and no trailing newline
func TestFileFormat(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Add(ivanov))
	require.NoError(t, s.Add(petrov))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		`{"surname":"Ivanov","name":"Ivan","patronymic":"Ivanovich","phone":"12345","note":"work"}`+"\n"+
			`{"surname":"Petrov","name":"Petr","patronymic":"Petrovich","phone":"67890","note":"home"}`,
		string(data))

	deleted, err := s.Delete("Petrov")
	require.NoError(t, err)
	require.True(t, deleted)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"surname":"Ivanov","name":"Ivan","patronymic":"Ivanovich","phone":"12345","note":"work"}`, string(data))
}

// TestLoadSkipsEmptyLines tests that blank lines in a hand edited file are ignored
func TestLoadSkipsEmptyLines(t *testing.T) {
	s, path := newTestStore(t)
	content := "\n" +
		`{"surname":"Ivanov","name":"Ivan","patronymic":"Ivanovich","phone":"12345","note":"work"}` +
		"\n\n" +
		`{"surname":"Petrov","name":"Petr","patronymic":"Petrovich","phone":"67890","note":"home"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := s.Enumerate()
	require.NoError(t, err)
	require.Equal(t, []store.Record{ivanov, petrov}, records)
}

// TestInvalidLine tests that an unparsable line is reported as a storage error
func TestInvalidLine(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := s.Enumerate()
	require.Error(t, err)
	require.True(t, store.IsStorageError(err))

	_, err = s.Search(store.FieldPhone, "1")
	require.True(t, store.IsStorageError(err))

	_, err = s.Delete("1")
	require.True(t, store.IsStorageError(err))
}

// TestNonObjectLine tests that valid JSON which is not an object is rejected
func TestNonObjectLine(t *testing.T) {
	for _, content := range []string{"null", `["Ivanov"]`, `"Ivanov"`, "42"} {
		t.Run(content, func(t *testing.T) {
			s, path := newTestStore(t)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			recs, err := s.Enumerate()
			require.Nil(t, recs)
			require.True(t, store.IsStorageError(err))
		})
	}
}

// TestSearch tests the substring semantics of Search
func TestSearch(t *testing.T) {
	s, _ := newTestStore(t)
	for _, r := range []store.Record{ivanov, petrov, sidorov} {
		require.NoError(t, s.Add(r))
	}

	tests := []struct {
		name   string
		field  store.Field
		substr string
		want   []store.Record
	}{
		{"substring in the middle", store.FieldPhone, "234", []store.Record{ivanov}},
		{"no match", store.FieldPhone, "999", nil},
		{"case sensitive", store.FieldSurname, "ivanov", nil},
		{"only the given field", store.FieldSurname, "Ivanov", []store.Record{ivanov}},
		{"other field", store.FieldNote, "Ivanov", []store.Record{sidorov}},
		{"empty substring matches all", store.FieldName, "", []store.Record{ivanov, petrov, sidorov}},
		{"store order kept", store.FieldPatronymic, "ovich", []store.Record{ivanov, petrov, sidorov}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(tt.field, tt.substr)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// TestSearchUnknownField tests that Search rejects fields outside the schema
func TestSearchUnknownField(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Search("email", "x")
	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, store.RetCInvalidField, storeErr.Code)
}

// TestDeleteExactMatch tests that Delete only removes exact field matches
func TestDeleteExactMatch(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Add(ivanov))

	deleted, err := s.Delete("234")
	require.NoError(t, err)
	require.False(t, deleted)

	records, err := s.Enumerate()
	require.NoError(t, err)
	require.Len(t, records, 1)

	deleted, err = s.Delete("12345")
	require.NoError(t, err)
	require.True(t, deleted)

	records, err = s.Enumerate()
	require.NoError(t, err)
	require.Empty(t, records)
}

// TestDeleteFirstMatchOnly tests that only the first matching record is removed
// and that the survivors keep their order
func TestDeleteFirstMatchOnly(t *testing.T) {
	s, _ := newTestStore(t)
	twin := ivanov
	twin.Note = "twin"
	for _, r := range []store.Record{petrov, ivanov, sidorov, twin} {
		require.NoError(t, s.Add(r))
	}

	deleted, err := s.Delete("Ivanov")
	require.NoError(t, err)
	require.True(t, deleted)

	records, err := s.Enumerate()
	require.NoError(t, err)
	require.Equal(t, []store.Record{petrov, sidorov, twin}, records)

	// search no longer finds the deleted record but still finds the twin
	found, err := s.Search(store.FieldNote, "work")
	require.NoError(t, err)
	require.Empty(t, found)
}

// TestDeleteMissingFile tests that deleting from an empty store reports no match
func TestDeleteMissingFile(t *testing.T) {
	s, path := newTestStore(t)

	deleted, err := s.Delete("anything")
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

// TestDeleteLastRecord tests that removing the only record leaves an empty file
func TestDeleteLastRecord(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.Add(ivanov))

	deleted, err := s.Delete("Ivan")
	require.NoError(t, err)
	require.True(t, deleted)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)

	// the next add must not start with a separator
	require.NoError(t, s.Add(petrov))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte('{'), data[0])
}

// TestNoTemporaryFilesLeft tests that the rewrite cleans up after itself
func TestNoTemporaryFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "database.txt"))
	require.NoError(t, s.Add(ivanov))
	require.NoError(t, s.Add(petrov))

	_, err := s.Delete("Petr")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "database.txt", entries[0].Name())
}

// TestDeleteKeepsFileMode tests that the rewrite preserves the permissions of the store file
func TestDeleteKeepsFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not supported on windows")
	}
	s, path := newTestStore(t)
	require.NoError(t, s.Add(ivanov))
	require.NoError(t, s.Add(petrov))
	require.NoError(t, os.Chmod(path, 0o640))

	_, err := s.Delete("Petr")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

// TestUnicodeRoundTrip tests that non-ASCII values survive the store
func TestUnicodeRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	r := store.Record{Surname: "Иванов", Name: "Иван", Patronymic: "Иванович", Phone: "+7 <900>", Note: "a & b"}
	require.NoError(t, s.Add(r))

	got, err := s.Search(store.FieldSurname, "Иван")
	require.NoError(t, err)
	require.Equal(t, []store.Record{r}, got)
}
