// Package client implements the phonebook client session.
//
// A Session takes its requests from an IntentProvider, sends them one at a
// time over a single connection and hands every response to a ResultSink. The
// connection is driven by the same conn.Connection state machine the server
// uses, with the Session acting as its role. The session ends when the server
// answers with the closing result or the provider has no more requests.
//
// Reconnect Policy:
//
//   - Connecting is retried with exponential backoff (NextBackoffDelay) until
//     ReconnectConf.ConnectTimeout has passed.
//   - If the server resets the connection, the session reconnects and sends the
//     unanswered request again. After ReconnectConf.MaxResends resets without a
//     response in between, Run fails with ErrTooManyResends.
//   - Any other failure, including the server closing the connection, ends the
//     session with an error.
//
// Usage:
//
//	s, err := client.NewSession(config,
//	  client.NewSliceIntents(common.CheckRequest{}, common.ExitRequest{}),
//	  func(req common.Request, resp common.Response) {
//	    fmt.Print(resp.Result)
//	  },
//	)
//	if err != nil {
//	  return err
//	}
//	return s.Run(ctx)
package client
