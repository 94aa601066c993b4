package common

import (
	"errors"
	"testing"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// TestRequestMessageRoundTrip tests that every request variant survives ToMessage and DecodeRequest
func TestRequestMessageRoundTrip(t *testing.T) {
	requests := []Request{
		SearchRequest{Field: store.FieldPhone, Value: "234"},
		SearchRequest{Field: store.FieldNote, Value: ""},
		AddRequest{Record: store.Record{Surname: "Ivanov", Name: "Ivan", Patronymic: "Ivanovich", Phone: "12345", Note: "work"}},
		DeleteRequest{Value: "12345"},
		CheckRequest{},
		ExitRequest{},
	}

	for _, req := range requests {
		t.Run(req.Action().String(), func(t *testing.T) {
			msg := ToMessage(req)
			require.Equal(t, req.Action(), msg.Action)

			got, err := DecodeRequest(msg)
			require.NoError(t, err)
			require.Equal(t, req, got)
		})
	}
}

// TestDecodeRequestInvalid tests that invalid messages produce request errors
func TestDecodeRequestInvalid(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"unknown action", Message{Action: "update"}},
		{"empty action", Message{}},
		{"search unknown field", Message{Action: ActionSearch, Field: "email", Value: strPtr("x")}},
		{"search without value", Message{Action: ActionSearch, Field: "phone"}},
		{"add without values", Message{Action: ActionAdd}},
		{"add missing field", Message{Action: ActionAdd, Values: map[string]string{"surname": "Ivanov"}}},
		{"delete without value", Message{Action: ActionDelete}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeRequest(tt.msg)
			require.Nil(t, req)
			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr), "expected *RequestError, got %T", err)
		})
	}
}

// TestConfigString tests that the config renderers mention the important values
func TestConfigString(t *testing.T) {
	server := ServerConfig{Endpoint: "0.0.0.0:65432", StorePath: "database.txt", LogLevel: "info"}
	out := server.String()
	require.Contains(t, out, "0.0.0.0:65432")
	require.Contains(t, out, "database.txt")
	require.Contains(t, out, "disabled")

	client := ClientConfig{Endpoint: "localhost:65432", ContentType: "text/json", Reconnect: DefaultReconnectConf()}
	out = client.String()
	require.Contains(t, out, "localhost:65432")
	require.Contains(t, out, "2m0s")
}

// TestParseLogLevel tests the log level parser
func TestParseLogLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error"} {
		_, err := ParseLogLevel(lvl)
		require.NoError(t, err, lvl)
	}
	_, err := ParseLogLevel("verbose")
	require.Error(t, err)
}
