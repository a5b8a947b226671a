package response

import "fmt"

// Message is a single human readable line produced while building or validating.
type Message struct {
	Text string
}

// Response accumulates informational messages and errors in the order they
// were recorded. A run is considered failed when at least one error exists.
type Response struct {
	Messages []Message
	Errors   []Message
}

func New() *Response {
	return &Response{}
}

func (r *Response) AddMessage(format string, args ...any) {
	r.Messages = append(r.Messages, Message{Text: fmt.Sprintf(format, args...)})
}

func (r *Response) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, Message{Text: fmt.Sprintf(format, args...)})
}

// AddErr records err's message as an error entry.
func (r *Response) AddErr(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, Message{Text: err.Error()})
}

func (r *Response) HasErrors() bool {
	return len(r.Errors) > 0
}
