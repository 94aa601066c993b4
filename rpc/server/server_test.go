//go:build unix

package server

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/3esharf1k/phone-book/lib/store/fstore"
	"github.com/3esharf1k/phone-book/rpc/codec"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/3esharf1k/phone-book/rpc/serializer"
	"github.com/stretchr/testify/require"
)

const ioTimeout = 5 * time.Second

// startServer runs a server on a loopback port until the test ends
func startServer(t *testing.T) *RPCServer {
	t.Helper()
	config := common.ServerConfig{
		Endpoint:    "127.0.0.1:0",
		StorePath:   filepath.Join(t.TempDir(), "database.txt"),
		PollTimeout: 10 * time.Millisecond,
		TCP:         common.TCPConf{TCPNoDelay: true, TCPLingerSec: -1},
		LogLevel:    "info",
	}
	s := NewRPCServer(config, fstore.NewFileStore(config.StorePath), NewRecordStoreServerAdapter())
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(ioTimeout):
			t.Error("server did not stop")
		}
	})
	return s
}

// testClient is a blocking client speaking the frame protocol
type testClient struct {
	t    *testing.T
	conn net.Conn
	buf  []byte
	ser  serializer.IRPCSerializer
}

func dial(t *testing.T, s *RPCServer) *testClient {
	t.Helper()
	c, err := net.DialTimeout("tcp", s.Addr().String(), ioTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return &testClient{t: t, conn: c, ser: serializer.NewJSONSerializer()}
}

func (c *testClient) send(req common.Request) {
	c.t.Helper()
	content, err := c.ser.Serialize(common.ToMessage(req))
	require.NoError(c.t, err)
	frame, err := codec.Encode(&codec.Message{ContentType: c.ser.ContentType(), ContentEncoding: codec.EncodingUTF8, Content: content})
	require.NoError(c.t, err)
	_, err = c.conn.Write(frame)
	require.NoError(c.t, err)
}

func (c *testClient) receive() common.Response {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(ioTimeout)))
	chunk := make([]byte, 1024)
	for {
		msg, n, err := codec.Decode(c.buf)
		if err == nil {
			c.buf = c.buf[n:]
			var resp common.Response
			require.NoError(c.t, c.ser.Deserialize(msg.Content, &resp))
			return resp
		}
		require.ErrorIs(c.t, err, codec.ErrIncomplete)

		n, err = c.conn.Read(chunk)
		require.NoError(c.t, err)
		c.buf = append(c.buf, chunk[:n]...)
	}
}

func (c *testClient) roundTrip(req common.Request) common.Response {
	c.t.Helper()
	c.send(req)
	return c.receive()
}

// requireClosed waits until the server closed the connection
func (c *testClient) requireClosed() {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(ioTimeout)))
	_, err := c.conn.Read(make([]byte, 1))
	require.True(c.t, errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || isReset(err), "expected closed connection, got %v", err)
}

func isReset(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && !opErr.Timeout()
}

// TestServerScenario runs the add, search, delete, check sequence over TCP
func TestServerScenario(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	require.Equal(t, common.ResultAdded, c.roundTrip(common.AddRequest{Record: ivanov}).Result)
	require.Equal(t, "Ivanov Ivan Ivanovich 1112223333 none\n", c.roundTrip(common.SearchRequest{Field: "surname", Value: "Iva"}).Result)
	require.Equal(t, common.ResultDeleted, c.roundTrip(common.DeleteRequest{Value: "1112223333"}).Result)
	require.Equal(t, common.ResultEmpty, c.roundTrip(common.CheckRequest{}).Result)

	require.Equal(t, common.ResultClosing, c.roundTrip(common.ExitRequest{}).Result)
	c.requireClosed()
}

// TestServerPipelinedRequests tests that requests sent back to back are answered in order
func TestServerPipelinedRequests(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.send(common.AddRequest{Record: ivanov})
	c.send(common.CheckRequest{})
	c.send(common.ExitRequest{})

	require.Equal(t, common.ResultAdded, c.receive().Result)
	require.Equal(t, "Ivanov Ivan Ivanovich 1112223333 none\n", c.receive().Result)
	require.Equal(t, common.ResultClosing, c.receive().Result)
	c.requireClosed()
}

// TestServerSplitWrites tests a frame arriving one byte at a time
func TestServerSplitWrites(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	content, err := c.ser.Serialize(common.ToMessage(common.CheckRequest{}))
	require.NoError(t, err)
	frame, err := codec.Encode(&codec.Message{ContentType: codec.ContentTypeJSON, ContentEncoding: codec.EncodingUTF8, Content: content})
	require.NoError(t, err)

	for _, b := range frame {
		_, err := c.conn.Write([]byte{b})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, common.ResultEmpty, c.receive().Result)
}

// TestServerProtocolErrorIsolated tests that a malformed frame closes only its own connection
func TestServerProtocolErrorIsolated(t *testing.T) {
	s := startServer(t)
	good := dial(t, s)
	bad := dial(t, s)

	require.Equal(t, common.ResultEmpty, good.roundTrip(common.CheckRequest{}).Result)

	header := []byte(`{"byteorder":"little","content-type":"text/json","content-length":2}`)
	frame := binary.BigEndian.AppendUint16(nil, uint16(len(header)))
	frame = append(frame, header...)
	frame = append(frame, "{}"...)
	_, err := bad.conn.Write(frame)
	require.NoError(t, err)
	bad.requireClosed()

	require.Equal(t, common.ResultAdded, good.roundTrip(common.AddRequest{Record: ivanov}).Result)
	require.Eventually(t, func() bool { return s.metrics.protocolErrors.Get() == 1 }, ioTimeout, 10*time.Millisecond)
}

// TestServerInvalidRequestKeepsConnection tests that an invalid request is answered with an error
func TestServerInvalidRequestKeepsConnection(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	content := []byte(`{"action":"update"}`)
	frame, err := codec.Encode(&codec.Message{ContentType: codec.ContentTypeJSON, ContentEncoding: codec.EncodingUTF8, Content: content})
	require.NoError(t, err)
	_, err = c.conn.Write(frame)
	require.NoError(t, err)

	resp := c.receive()
	require.Contains(t, resp.Error, "unknown action")
	require.Equal(t, common.ResultEmpty, c.roundTrip(common.CheckRequest{}).Result)
}

// TestServerPeerClose tests that a client disconnecting is removed from the working set
func TestServerPeerClose(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)
	require.Equal(t, common.ResultEmpty, c.roundTrip(common.CheckRequest{}).Result)
	require.Equal(t, 1, s.conns.Size())

	require.NoError(t, c.conn.Close())
	require.Eventually(t, func() bool { return s.conns.Size() == 0 }, ioTimeout, 10*time.Millisecond)
	require.Equal(t, uint64(1), s.metrics.accepted.Get())
}

// TestServerMetricsOutput tests the prometheus rendering of the metric set
func TestServerMetricsOutput(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)
	require.Equal(t, common.ResultEmpty, c.roundTrip(common.CheckRequest{}).Result)

	var out bytes.Buffer
	s.metrics.set.WritePrometheus(&out)
	require.Contains(t, out.String(), `phonebook_requests_total{action="check"} 1`)
	require.Contains(t, out.String(), "phonebook_active_connections 1")
	require.Contains(t, out.String(), "phonebook_store_duration_seconds")
}
