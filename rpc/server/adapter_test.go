package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/3esharf1k/phone-book/lib/store/fstore"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/stretchr/testify/require"
)

var ivanov = store.Record{Surname: "Ivanov", Name: "Ivan", Patronymic: "Ivanovich", Phone: "1112223333", Note: "none"}

func newTestStore(t *testing.T) store.IRecordStore {
	t.Helper()
	return fstore.NewFileStore(filepath.Join(t.TempDir(), "database.txt"))
}

// TestAdapterScenario runs add, search, delete and check against an empty store
func TestAdapterScenario(t *testing.T) {
	adapter := NewRecordStoreServerAdapter()
	s := newTestStore(t)

	resp := adapter.Handle(common.CheckRequest{}, s)
	require.Equal(t, common.NewResultResponse(common.ResultEmpty), resp)

	resp = adapter.Handle(common.AddRequest{Record: ivanov}, s)
	require.Equal(t, common.NewResultResponse(common.ResultAdded), resp)

	resp = adapter.Handle(common.SearchRequest{Field: store.FieldSurname, Value: "Iva"}, s)
	require.Equal(t, common.NewResultResponse("Ivanov Ivan Ivanovich 1112223333 none\n"), resp)

	resp = adapter.Handle(common.CheckRequest{}, s)
	require.Equal(t, common.NewResultResponse("Ivanov Ivan Ivanovich 1112223333 none\n"), resp)

	resp = adapter.Handle(common.DeleteRequest{Value: "1112223333"}, s)
	require.Equal(t, common.NewResultResponse(common.ResultDeleted), resp)

	resp = adapter.Handle(common.CheckRequest{}, s)
	require.Equal(t, common.NewResultResponse(common.ResultEmpty), resp)
}

// TestAdapterResults tests the remaining result texts
func TestAdapterResults(t *testing.T) {
	adapter := NewRecordStoreServerAdapter()
	s := newTestStore(t)
	require.NoError(t, s.Add(ivanov))
	require.NoError(t, s.Add(store.Record{Surname: "Petrov", Name: "Petr", Patronymic: "Petrovich", Phone: "12345", Note: "work"}))

	tests := []struct {
		name string
		req  common.Request
		want string
	}{
		{"search substring", common.SearchRequest{Field: store.FieldPhone, Value: "234"}, "Petrov Petr Petrovich 12345 work\n"},
		{"search is case sensitive", common.SearchRequest{Field: store.FieldSurname, Value: "ivanov"}, common.ResultNoMatches},
		{"search no match", common.SearchRequest{Field: store.FieldPhone, Value: "999"}, common.ResultNoMatches},
		{"search empty value matches all", common.SearchRequest{Field: store.FieldNote, Value: ""}, "Ivanov Ivan Ivanovich 1112223333 none\nPetrov Petr Petrovich 12345 work\n"},
		{"delete is exact", common.DeleteRequest{Value: "234"}, common.ResultNotFound},
		{"exit", common.ExitRequest{}, common.ResultClosing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := adapter.Handle(tt.req, s)
			require.Empty(t, resp.Error)
			require.Equal(t, tt.want, resp.Result)
		})
	}
}

// TestAdapterStorageError tests that a broken store file is reported in the response
func TestAdapterStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.txt")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	adapter := NewRecordStoreServerAdapter()
	s := fstore.NewFileStore(path)

	for _, req := range []common.Request{
		common.CheckRequest{},
		common.SearchRequest{Field: store.FieldName, Value: "x"},
		common.DeleteRequest{Value: "x"},
	} {
		resp := adapter.Handle(req, s)
		require.Empty(t, resp.Result, req.Action())
		require.Contains(t, resp.Error, "RecordStoreError", req.Action())
	}

	resp := adapter.Handle(common.CheckRequest{}, nil)
	require.NotEmpty(t, resp.Error)
}
