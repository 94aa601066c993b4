package server

import (
	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/3esharf1k/phone-book/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle executes a decoded request against the store and returns the response.
	// Store failures are reported in the Error field of the response, Handle never
	// returns nil.
	Handle(req common.Request, store store.IRecordStore) (resp *common.Response)
}
