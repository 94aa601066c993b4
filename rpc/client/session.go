//go:build unix

package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/3esharf1k/phone-book/rpc/codec"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/3esharf1k/phone-book/rpc/serializer"
	"github.com/3esharf1k/phone-book/rpc/transport"
	"github.com/3esharf1k/phone-book/rpc/transport/conn"
	"github.com/3esharf1k/phone-book/rpc/transport/netpoll"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("client")

// DefaultPollTimeout is used when the config does not set a poll timeout
const DefaultPollTimeout = 100 * time.Millisecond

// ErrTooManyResends is returned when the connection keeps being reset before a
// request is answered
var ErrTooManyResends = errors.New("too many resends")

// Session sends the requests of an IntentProvider over one connection and
// passes every response to a ResultSink. If the server resets the connection,
// the session reconnects and sends the unanswered request again.
//
// Session implements conn.Role, it must not be shared between connections.
type Session struct {
	id       uuid.UUID
	config   common.ClientConfig
	intents  IntentProvider
	sink     ResultSink
	ser      serializer.IRPCSerializer
	encoding string
	rng      *rand.Rand

	// pending is the request sent on the current connection that has not been answered yet
	pending common.Request
	// resends counts the resets since the last response
	resends int
	closing bool
}

// NewSession creates a session. Nothing is sent before Run is called.
func NewSession(config common.ClientConfig, intents IntentProvider, sink ResultSink) (*Session, error) {
	if config.ContentType == "" {
		config.ContentType = codec.ContentTypeJSON
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = DefaultPollTimeout
	}
	ser, err := serializer.ForContentType(config.ContentType)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = func(common.Request, common.Response) {}
	}
	return &Session{
		id:       uuid.New(),
		config:   config,
		intents:  intents,
		sink:     sink,
		ser:      ser,
		encoding: serializer.ContentEncoding(ser, config.ContentEncoding),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// ID returns the unique id of the session
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Run connects to the server and exchanges requests until the server answers
// with the closing result, the intent provider runs dry or an error occurs.
func (s *Session) Run(ctx context.Context) error {
	for {
		sock, err := s.connect(ctx)
		if err != nil {
			return err
		}

		err = s.drive(ctx, sock)
		if !errors.Is(err, transport.ErrConnectionReset) {
			return err
		}

		s.resends++
		if s.resends > s.config.Reconnect.MaxResends {
			return fmt.Errorf("%w: connection reset %d times without a response: %v", ErrTooManyResends, s.resends, err)
		}
		Logger.Warningf("session %s: %v, reconnecting (resend %d of %d)", s.id, err, s.resends, s.config.Reconnect.MaxResends)
	}
}

// connect dials the server, retrying with backoff until ConnectTimeout has passed
func (s *Session) connect(ctx context.Context) (*netpoll.Socket, error) {
	if s.config.Reconnect.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Reconnect.ConnectTimeout)
		defer cancel()
	}

	var dialer net.Dialer
	for attempt := 1; ; attempt++ {
		c, err := dialer.DialContext(ctx, "tcp", s.config.Endpoint)
		if err == nil {
			if err := transport.UpgradeConnection(c, s.config.TCP); err != nil {
				Logger.Warningf("session %s: failed to apply tcp options: %v", s.id, err)
			}
			sock, err := netpoll.NewSocket(c)
			if err != nil {
				c.Close()
				return nil, err
			}
			Logger.Debugf("session %s: connected to %s", s.id, sock.RemoteAddr())
			return sock, nil
		}

		delay := NextBackoffDelay(s.config.Reconnect, attempt, s.rng)
		Logger.Infof("session %s: connection attempt %d to %s failed: %v, retrying in %s", s.id, attempt, s.config.Endpoint, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("failed to connect to %s: %w (last error: %v)", s.config.Endpoint, ctx.Err(), err)
		case <-timer.C:
		}
	}
}

// drive runs the readiness loop of one connection until it is closed.
func (s *Session) drive(ctx context.Context, sock *netpoll.Socket) error {
	poller := netpoll.New()
	defer poller.Close()

	if err := poller.Register(sock.FD(), transport.InterestReadWrite); err != nil {
		sock.Close()
		return err
	}
	c := conn.New(sock, poller.Watcher(sock.FD()), s, sock.RemoteAddr())
	defer c.Close()

	for !c.Closed() {
		if err := ctx.Err(); err != nil {
			return err
		}
		events, err := poller.Wait(s.config.PollTimeout)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if err := c.HandleEvent(ev.Readable, ev.Writable); err != nil {
				return err
			}
		}
	}
	return nil
}

// Next implements conn.Role
func (s *Session) Next(in *codec.Message) (*codec.Message, bool, error) {
	if in != nil {
		resp, err := s.decodeResponse(in)
		if err != nil {
			return nil, false, err
		}

		req := s.pending
		s.pending = nil
		s.resends = 0
		s.sink(req, resp)

		if resp.Result == common.ResultClosing {
			s.closing = true
			return nil, true, nil
		}
	}

	// after a reset the unanswered request goes out first
	if s.pending == nil {
		req, ok := s.intents.NextRequest()
		if !ok {
			return nil, true, nil
		}
		s.pending = req
	}

	out, err := s.encodeRequest(s.pending)
	if err != nil {
		return nil, false, err
	}
	return out, false, nil
}

// Closing reports whether the server has confirmed the end of the session
func (s *Session) Closing() bool {
	return s.closing
}

func (s *Session) encodeRequest(req common.Request) (*codec.Message, error) {
	content, err := s.ser.Serialize(common.ToMessage(req))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s request: %w", req.Action(), err)
	}
	return &codec.Message{
		ContentType:     s.ser.ContentType(),
		ContentEncoding: s.encoding,
		Content:         content,
	}, nil
}

func (s *Session) decodeResponse(in *codec.Message) (common.Response, error) {
	var resp common.Response
	ser, err := serializer.ForContentType(in.ContentType)
	if err != nil {
		return resp, &codec.ProtocolError{Reason: "unsupported response payload", Err: err}
	}
	if err := ser.Deserialize(in.Content, &resp); err != nil {
		return resp, &codec.ProtocolError{Reason: "failed to deserialize response", Err: err}
	}
	return resp, nil
}
