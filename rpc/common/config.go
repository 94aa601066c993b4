package common

import (
	"fmt"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Socket configuration
// --------------------------------------------------------------------------

// TCPConf holds the options applied to every TCP connection
type TCPConf struct {
	// TCPNoDelay disables Nagle's algorithm
	TCPNoDelay bool
	// TCPKeepAliveSec enables keep-alive with the given period, 0 disables it
	TCPKeepAliveSec int
	// TCPLingerSec sets SO_LINGER, a negative value keeps the OS default
	TCPLingerSec int
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters for the phonebook server.
type ServerConfig struct {
	// Endpoint is the TCP address the server listens on
	Endpoint string
	// StorePath is the file that holds the records
	StorePath string
	// PollTimeout bounds a single wait of the readiness loop
	PollTimeout time.Duration
	// MetricsEndpoint is the HTTP address serving /metrics, empty disables it
	MetricsEndpoint string

	TCP TCPConf

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection, addField := formatHelpers(&sb)

	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Poll Timeout", c.PollTimeout.String())
	addTCPFields(addField, c.TCP)

	addSection("Storage")
	addField("Store File", c.StorePath)

	addSection("Metrics")
	if c.MetricsEndpoint == "" {
		addField("Endpoint", "disabled")
	} else {
		addField("Endpoint", c.MetricsEndpoint)
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ReconnectConf controls how a client session (re)establishes its connection
type ReconnectConf struct {
	// InitialDelay is the wait before the second connection attempt
	InitialDelay time.Duration
	// Multiplier grows the delay after every failed attempt
	Multiplier float64
	// MaxDelay caps a single delay
	MaxDelay time.Duration
	// Jitter randomizes every delay to 50-150% of its nominal value
	Jitter bool
	// ConnectTimeout is the wall clock limit for establishing one connection
	ConnectTimeout time.Duration
	// MaxResends is the number of consecutive resends of a request after a
	// connection reset before the session gives up
	MaxResends int
}

// DefaultReconnectConf returns the reconnect policy used when nothing is configured
func DefaultReconnectConf() ReconnectConf {
	return ReconnectConf{
		InitialDelay:   250 * time.Millisecond,
		Multiplier:     2.0,
		MaxDelay:       5 * time.Second,
		Jitter:         true,
		ConnectTimeout: 120 * time.Second,
		MaxResends:     3,
	}
}

// ClientConfig holds all configuration parameters for a client session
type ClientConfig struct {
	// Endpoint is the TCP address of the server
	Endpoint string
	// ContentType selects the payload serializer
	ContentType string
	// ContentEncoding is the text encoding of request payloads
	ContentEncoding string
	// PollTimeout bounds a single wait of the readiness loop
	PollTimeout time.Duration

	TCP       TCPConf
	Reconnect ReconnectConf
}

// String returns a formatted string representation of the configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection, addField := formatHelpers(&sb)

	addSection("RPC Client")
	addField("Endpoint", c.Endpoint)
	addField("Content Type", c.ContentType)
	addField("Content Encoding", c.ContentEncoding)
	addField("Poll Timeout", c.PollTimeout.String())
	addTCPFields(addField, c.TCP)

	addSection("Reconnect")
	addField("Initial Delay", c.Reconnect.InitialDelay.String())
	addField("Multiplier", fmt.Sprintf("%.2f", c.Reconnect.Multiplier))
	addField("Max Delay", c.Reconnect.MaxDelay.String())
	addField("Jitter", fmt.Sprintf("%t", c.Reconnect.Jitter))
	addField("Connect Timeout", c.Reconnect.ConnectTimeout.String())
	addField("Max Resends", fmt.Sprintf("%d", c.Reconnect.MaxResends))

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// formatHelpers creates helper functions for consistent formatting
func formatHelpers(sb *strings.Builder) (addSection func(string), addField func(string, string)) {
	addSection = func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField = func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}
	return addSection, addField
}

func addTCPFields(addField func(string, string), tcp TCPConf) {
	addField("TCP No Delay", fmt.Sprintf("%t", tcp.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", tcp.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", tcp.TCPLingerSec))
}
