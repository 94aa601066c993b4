package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/3esharf1k/phone-book/lib/store"
)

// --------------------------------------------------------------------------
// Actions
// --------------------------------------------------------------------------

// Action is the name of a request operation as sent on the wire.
type Action string

const (
	ActionSearch Action = "search"
	ActionAdd    Action = "add"
	ActionDelete Action = "delete"
	ActionCheck  Action = "check"
	ActionExit   Action = "exit"
)

// Actions lists all supported actions.
var Actions = [...]Action{ActionSearch, ActionAdd, ActionDelete, ActionCheck, ActionExit}

func (a Action) String() string {
	return string(a)
}

// --------------------------------------------------------------------------
// Result Sentinels
// --------------------------------------------------------------------------

// Fixed result strings recognized by both sides.
const (
	ResultNoMatches = "There are no such lines in the phone book.\n"
	ResultEmpty     = "Phone book is empty.\n"
	ResultAdded     = "Line was added"
	ResultDeleted   = "Line was deleted"
	ResultNotFound  = "Line wasn't found"
	ResultClosing   = "Closing..."
)

// --------------------------------------------------------------------------
// Wire Structures
// --------------------------------------------------------------------------

// Message is a request payload as it travels on the wire.
// Which fields are used depends on the action.
type Message struct {
	Action Action            `json:"action"`
	Field  string            `json:"field,omitempty"`  // Used for: search
	Value  *string           `json:"value,omitempty"`  // Used for: search, delete
	Values map[string]string `json:"values,omitempty"` // Used for: add
}

// Response is the payload of every server reply. Error is empty on success.
type Response struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// NewResultResponse creates a successful response
func NewResultResponse(result string) *Response {
	return &Response{Result: result}
}

// NewErrorResponse creates a response that reports a failed request
func NewErrorResponse(msg string) *Response {
	return &Response{Error: msg}
}

// --------------------------------------------------------------------------
// Requests
// --------------------------------------------------------------------------

// Request is one of SearchRequest, AddRequest, DeleteRequest, CheckRequest
// or ExitRequest.
type Request interface {
	Action() Action
	isRequest()
}

// SearchRequest asks for all records whose Field contains Value.
type SearchRequest struct {
	Field store.Field
	Value string
}

// AddRequest appends Record to the store.
type AddRequest struct {
	Record store.Record
}

// DeleteRequest removes the first record with any field equal to Value.
type DeleteRequest struct {
	Value string
}

// CheckRequest lists all records.
type CheckRequest struct{}

// ExitRequest ends the session. The server replies and closes the connection.
type ExitRequest struct{}

func (SearchRequest) Action() Action { return ActionSearch }
func (AddRequest) Action() Action    { return ActionAdd }
func (DeleteRequest) Action() Action { return ActionDelete }
func (CheckRequest) Action() Action  { return ActionCheck }
func (ExitRequest) Action() Action   { return ActionExit }

func (SearchRequest) isRequest() {}
func (AddRequest) isRequest()    {}
func (DeleteRequest) isRequest() {}
func (CheckRequest) isRequest()  {}
func (ExitRequest) isRequest()   {}

// RequestError reports a well-formed message that does not describe a valid
// request. It is answered with an error response, the connection stays open.
type RequestError struct {
	Msg string
}

func (e *RequestError) Error() string {
	return "invalid request: " + e.Msg
}

// ToMessage converts a request to its wire structure.
func ToMessage(req Request) Message {
	switch r := req.(type) {
	case SearchRequest:
		value := r.Value
		return Message{Action: ActionSearch, Field: string(r.Field), Value: &value}
	case AddRequest:
		return Message{Action: ActionAdd, Values: r.Record.ToMap()}
	case DeleteRequest:
		value := r.Value
		return Message{Action: ActionDelete, Value: &value}
	default:
		return Message{Action: req.Action()}
	}
}

// DecodeRequest validates a wire message and converts it to a Request.
// The returned error is always a *RequestError.
func DecodeRequest(msg Message) (Request, error) {
	switch msg.Action {
	case ActionSearch:
		field, ok := store.ParseField(msg.Field)
		if !ok {
			return nil, &RequestError{Msg: fmt.Sprintf("unknown field %q, use one of: %s", msg.Field, strings.Join(store.FieldNames(), ", "))}
		}
		if msg.Value == nil {
			return nil, &RequestError{Msg: "search requires a value"}
		}
		return SearchRequest{Field: field, Value: *msg.Value}, nil
	case ActionAdd:
		record, err := store.NewRecordFromMap(msg.Values)
		if err != nil {
			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return nil, &RequestError{Msg: storeErr.Msg}
			}
			return nil, &RequestError{Msg: err.Error()}
		}
		return AddRequest{Record: record}, nil
	case ActionDelete:
		if msg.Value == nil {
			return nil, &RequestError{Msg: "delete requires a value"}
		}
		return DeleteRequest{Value: *msg.Value}, nil
	case ActionCheck:
		return CheckRequest{}, nil
	case ActionExit:
		return ExitRequest{}, nil
	default:
		return nil, &RequestError{Msg: fmt.Sprintf("unknown action %q", msg.Action)}
	}
}
