package server

import (
	"fmt"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/3esharf1k/phone-book/rpc/codec"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/3esharf1k/phone-book/rpc/serializer"
)

// serverRole answers every decoded request of one connection. It implements conn.Role.
type serverRole struct {
	store   store.IRecordStore
	adapter IRPCServerAdapter
	metrics *serverMetrics
}

func (r *serverRole) Next(in *codec.Message) (*codec.Message, bool, error) {
	// the server never opens a conversation
	if in == nil {
		return nil, false, nil
	}

	s, err := serializer.ForContentType(in.ContentType)
	if err != nil {
		return nil, false, &codec.ProtocolError{Reason: "unsupported payload", Err: err}
	}

	var msg common.Message
	if err := s.Deserialize(in.Content, &msg); err != nil {
		return nil, false, &codec.ProtocolError{Reason: "failed to deserialize request", Err: err}
	}

	var resp *common.Response
	req, err := common.DecodeRequest(msg)
	if err != nil {
		Logger.Warningf("rejected request: %v", err)
		resp = common.NewErrorResponse(err.Error())
	} else {
		r.metrics.request(req.Action())
		resp = r.adapter.Handle(req, r.store)
		if resp.Error != "" {
			Logger.Errorf("%s request failed: %s", req.Action(), resp.Error)
		}
	}

	content, err := s.Serialize(resp)
	if err != nil {
		return nil, false, fmt.Errorf("failed to serialize response: %w", err)
	}

	_, exit := req.(common.ExitRequest)
	return &codec.Message{
		ContentType:     s.ContentType(),
		ContentEncoding: serializer.ContentEncoding(s, codec.EncodingUTF8),
		Content:         content,
	}, exit, nil
}
