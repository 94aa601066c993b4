//go:build unix

package netpoll

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/3esharf1k/phone-book/rpc/transport"
	"golang.org/x/sys/unix"
)

var (
	// ErrClosed is returned by operations on a closed Poller
	ErrClosed = errors.New("poller closed")
	// ErrNotRegistered is returned when modifying an unknown file descriptor
	ErrNotRegistered = errors.New("file descriptor not registered")
)

// Event reports the readiness of one registered file descriptor
type Event struct {
	FD       int
	Readable bool
	Writable bool
}

// Poller is a readiness multiplexer based on poll(2). It keeps the set of
// registered file descriptors together with their interest and reports which
// of them are ready on every call to Wait.
type Poller struct {
	mu        sync.Mutex
	interests map[int]transport.Interest
	closed    bool
}

// New creates an empty poller
func New() *Poller {
	return &Poller{interests: make(map[int]transport.Interest)}
}

// Register adds fd with the given interest
func (p *Poller) Register(fd int, interest transport.Interest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if _, ok := p.interests[fd]; ok {
		return fmt.Errorf("file descriptor %d already registered", fd)
	}
	p.interests[fd] = interest
	return nil
}

// Modify replaces the interest of a registered fd
func (p *Poller) Modify(fd int, interest transport.Interest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if _, ok := p.interests[fd]; !ok {
		return fmt.Errorf("%w: %d", ErrNotRegistered, fd)
	}
	p.interests[fd] = interest
	return nil
}

// Unregister removes fd. Removing an unknown fd is a no-op.
func (p *Poller) Unregister(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.interests, fd)
	return nil
}

// Len returns the number of registered file descriptors
func (p *Poller) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.interests)
}

// Wait blocks until at least one registered fd is ready or the timeout expires.
// A negative timeout waits forever. An interrupted wait returns no events.
func (p *Poller) Wait(timeout time.Duration) ([]Event, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	fds := make([]unix.PollFd, 0, len(p.interests))
	for fd, interest := range p.interests {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: pollEvents(interest)})
	}
	p.mu.Unlock()

	if len(fds) == 0 {
		return nil, nil
	}
	sort.Slice(fds, func(i, j int) bool { return fds[i].Fd < fds[j].Fd })

	n, err := unix.Poll(fds, pollTimeout(timeout))
	if errors.Is(err, unix.EINTR) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("poll failed: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	events := make([]Event, 0, n)
	for _, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}
		// errors and hang ups wake up both directions, the socket call reports the cause
		failed := pfd.Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0
		ev := Event{
			FD:       int(pfd.Fd),
			Readable: pfd.Events&unix.POLLIN != 0 && (pfd.Revents&unix.POLLIN != 0 || failed),
			Writable: pfd.Events&unix.POLLOUT != 0 && (pfd.Revents&unix.POLLOUT != 0 || failed),
		}
		if ev.Readable || ev.Writable {
			events = append(events, ev)
		}
	}
	return events, nil
}

// Watcher returns a transport.Watcher bound to fd
func (p *Poller) Watcher(fd int) transport.Watcher {
	return &fdWatcher{poller: p, fd: fd}
}

// Close drops all registrations. The registered sockets are not closed.
func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	clear(p.interests)
	return nil
}

// pollTimeout converts a timeout to poll(2) milliseconds. Positive timeouts
// below one millisecond are rounded up so that they still block.
func pollTimeout(timeout time.Duration) int {
	switch {
	case timeout < 0:
		return -1
	case timeout == 0:
		return 0
	case timeout >= math.MaxInt32*time.Millisecond:
		return math.MaxInt32
	}
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}

func pollEvents(interest transport.Interest) int16 {
	var events int16
	if interest&transport.InterestRead != 0 {
		events |= unix.POLLIN
	}
	if interest&transport.InterestWrite != 0 {
		events |= unix.POLLOUT
	}
	return events
}

// --------------------------------------------------------------------------
// Watcher
// --------------------------------------------------------------------------

type fdWatcher struct {
	poller *Poller
	fd     int
}

func (w *fdWatcher) Watch(interest transport.Interest) error {
	return w.poller.Modify(w.fd, interest)
}

func (w *fdWatcher) Release() error {
	return w.poller.Unregister(w.fd)
}
