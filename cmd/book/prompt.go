package book

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/3esharf1k/phone-book/rpc/client"
	"github.com/3esharf1k/phone-book/rpc/common"
)

// promptIntents asks for every request on a line based terminal. End of input
// is treated like an entered exit.
type promptIntents struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPromptIntents returns an IntentProvider that reads requests from in and writes the prompts to out
func NewPromptIntents(in io.Reader, out io.Writer) client.IntentProvider {
	return &promptIntents{in: bufio.NewScanner(in), out: out}
}

func (p *promptIntents) NextRequest() (common.Request, bool) {
	actions := make([]string, len(common.Actions))
	for i, a := range common.Actions {
		actions[i] = a.String()
	}
	fields := strings.Join(store.FieldNames(), ", ")

	action, ok := p.ask("Choose action: "+strings.Join(actions[:len(actions)-1], ", ")+" or exit.", func(s string) bool {
		for _, a := range common.Actions {
			if s == a.String() {
				return true
			}
		}
		return false
	}, "Unknown action. Enter "+strings.Join(actions[:len(actions)-1], ", ")+" or exit.")
	if !ok {
		return common.ExitRequest{}, true
	}

	switch common.Action(action) {
	case common.ActionSearch:
		name, ok := p.ask("Choose field where search: "+fields+".", func(s string) bool {
			_, known := store.ParseField(s)
			return known
		}, "Field wasn't found. Use this fields: "+fields)
		if !ok {
			return common.ExitRequest{}, true
		}
		field, _ := store.ParseField(name)
		value, ok := p.ask("Enter value for search:", nil, "")
		if !ok {
			return common.ExitRequest{}, true
		}
		return common.SearchRequest{Field: field, Value: value}, true

	case common.ActionAdd:
		values := make(map[string]string, len(store.Schema))
		for _, field := range store.Schema {
			value, ok := p.ask(fmt.Sprintf("Enter %s:", field), nil, "")
			if !ok {
				return common.ExitRequest{}, true
			}
			values[string(field)] = value
		}
		record, err := store.NewRecordFromMap(values)
		if err != nil {
			fmt.Fprintln(p.out, err)
			return common.ExitRequest{}, true
		}
		return common.AddRequest{Record: record}, true

	case common.ActionDelete:
		value, ok := p.ask("Enter value for delete line:", nil, "")
		if !ok {
			return common.ExitRequest{}, true
		}
		return common.DeleteRequest{Value: value}, true

	case common.ActionCheck:
		return common.CheckRequest{}, true

	default:
		return common.ExitRequest{}, true
	}
}

// ask prints prompt and reads lines until valid accepts one (nil accepts any).
// It returns false at the end of the input.
func (p *promptIntents) ask(prompt string, valid func(string) bool, retry string) (string, bool) {
	fmt.Fprintln(p.out, prompt)
	for p.in.Scan() {
		line := strings.TrimRight(p.in.Text(), "\r")
		if valid == nil || valid(line) {
			return line, true
		}
		fmt.Fprintln(p.out, retry)
	}
	return "", false
}
