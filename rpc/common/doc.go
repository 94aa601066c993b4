// Package common provides core data structures and utilities shared by the
// phonebook client and server. It defines the request and response payloads,
// the configuration structures and the logging setup.
//
// Key Components:
//
//   - Message / Response: The payload structures as they travel on the wire. A
//     request Message carries an action and, depending on it, a field, a value or
//     the values of a new record. Every reply is a Response with a result text.
//
//   - Request: A closed set of request variants (SearchRequest, AddRequest,
//     DeleteRequest, CheckRequest, ExitRequest). DecodeRequest validates a Message
//     once at the protocol boundary, so the rest of the server never deals with
//     raw action strings.
//
//   - Result Sentinels: The fixed result texts both sides agree on, most notably
//     ResultClosing which ends a client session.
//
//   - ServerConfig / ClientConfig: Configuration for the server and for client
//     sessions, including socket options and the reconnect policy.
//
//   - Logger: Custom logging implementation plugged into dragonboat's logger
//     package, which provides the package level loggers used across the module.
package common
