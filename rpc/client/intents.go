package client

import (
	"github.com/3esharf1k/phone-book/rpc/common"
)

// IntentProvider supplies the requests of a session one at a time
type IntentProvider interface {
	// NextRequest returns the next request to send, or false if there is none.
	// It is called once per request, a request is never asked for twice.
	NextRequest() (common.Request, bool)
}

// ResultSink receives every response together with the request it answers
type ResultSink func(req common.Request, resp common.Response)

// NewSliceIntents returns a provider that yields reqs in order
func NewSliceIntents(reqs ...common.Request) IntentProvider {
	return &sliceIntents{reqs: reqs}
}

type sliceIntents struct {
	reqs []common.Request
}

func (p *sliceIntents) NextRequest() (common.Request, bool) {
	if len(p.reqs) == 0 {
		return nil, false
	}
	req := p.reqs[0]
	p.reqs = p.reqs[1:]
	return req, true
}

// IntentFunc adapts a function to the IntentProvider interface
type IntentFunc func() (common.Request, bool)

func (f IntentFunc) NextRequest() (common.Request, bool) {
	return f()
}
