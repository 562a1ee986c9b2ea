package core

import "context"

// Client is a live connection as seen by the core layer.
type Client struct {
	ID     string
	Events chan *Event
}

// NewClient constructs a client with a buffered event channel.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 32
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}

func (c *Client) deliver(event *Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}

// Send queues an event for the client, waiting for buffer space until ctx is done.
func (c *Client) Send(ctx context.Context, event *Event) error {
	select {
	case c.Events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
