package server

import (
	"fmt"
	"strings"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/3esharf1k/phone-book/rpc/common"
)

func NewRecordStoreServerAdapter() IRPCServerAdapter {
	return &recordStoreServerAdapterImpl{}
}

type recordStoreServerAdapterImpl struct{}

func (adapter *recordStoreServerAdapterImpl) Handle(req common.Request, store store.IRecordStore) *common.Response {
	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	switch r := req.(type) {
	case common.SearchRequest:
		records, err := store.Search(r.Field, r.Value)
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		if len(records) == 0 {
			return common.NewResultResponse(common.ResultNoMatches)
		}
		return common.NewResultResponse(formatRecords(records))
	case common.AddRequest:
		if err := store.Add(r.Record); err != nil {
			return common.NewErrorResponse(err.Error())
		}
		return common.NewResultResponse(common.ResultAdded)
	case common.DeleteRequest:
		deleted, err := store.Delete(r.Value)
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		if !deleted {
			return common.NewResultResponse(common.ResultNotFound)
		}
		return common.NewResultResponse(common.ResultDeleted)
	case common.CheckRequest:
		records, err := store.Enumerate()
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		if len(records) == 0 {
			return common.NewResultResponse(common.ResultEmpty)
		}
		return common.NewResultResponse(formatRecords(records))
	case common.ExitRequest:
		return common.NewResultResponse(common.ResultClosing)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC RecordStoreAdapter - Unsupported request type: %T", req),
		)
	}
}

// formatRecords renders one line per record, values separated by a single space
func formatRecords(records []store.Record) string {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
