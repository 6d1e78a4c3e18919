package api

import "context"

// ChatAPI defines the interface for the chat backend client.
// *Client satisfies this interface. TUI, web and tests can use mock implementations.
type ChatAPI interface {
	// Chat sends one question and returns the decoded reply together with
	// the raw response body.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, []byte, error)
}
