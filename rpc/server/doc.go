// Package server implements the phonebook RPC server. A single goroutine
// accepts connections and drives all of them from one readiness loop, so
// requests never run concurrently and the record store needs no cross request
// coordination.
//
// The package focuses on:
//   - Server-side request handling on top of a store.IRecordStore
//   - Adapter pattern to decouple the record operations from the wire protocol
//   - Isolation of failures: an error on one connection closes only that connection
//   - Server metrics, optionally exposed over HTTP
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that executes a decoded common.Request against a store.
//
//   - NewRecordStoreServerAdapter: Factory function creating the adapter that
//     renders store results into the fixed response texts.
//
//   - RPCServer: Owns the listening socket, the readiness poller and the working
//     set of connections. Every connection runs a conn.Connection whose role
//     deserializes requests, lets the adapter handle them and serializes the reply
//     with the content-type of the request.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Endpoint:    "0.0.0.0:65432",
//	  StorePath:   "database.txt",
//	  PollTimeout: 100 * time.Millisecond,
//	  LogLevel:    "info",
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  fstore.NewFileStore(config.StorePath),
//	  server.NewRecordStoreServerAdapter(),
//	)
//
//	if err := s.Serve(ctx); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Error Handling:
//
//   - Malformed frames and undecodable payloads close the connection.
//   - Invalid requests and storage errors are answered with a response whose
//     error field is set. The connection stays open.
//   - A client closing its side is an ordinary end of the conversation.
//
// Metrics:
//
//	phonebook_requests_total{action="..."}  decoded requests per action
//	phonebook_accepted_connections_total    accepted connections
//	phonebook_active_connections            open connections
//	phonebook_protocol_errors_total         connections closed by a protocol error
//	phonebook_storage_errors_total          failed store operations
//	phonebook_store_duration_seconds        store call latency
//
// Thread Safety:
//
//	Serve must be called only once. All connection handling happens on the
//	goroutine running Serve, only the metrics endpoint runs on its own.
package server
