package chathub

import "langbridge/backend/internal/models"

// Client is the interface for any type of connection the relay can serve.
// It abstracts the underlying communication mechanism, allowing the hub to manage
// connections uniformly and to be tested without a live network listener.
type Client interface {
	// GetUserID returns the session identifier assigned by the Registry.
	GetUserID() string
	// SetUserID assigns the session identifier. It is called exactly once, by the
	// hub, before the client's pumps are started.
	SetUserID(string)

	// GetSendChannel returns the channel to which the hub sends events intended
	// for this specific client. It is a send-only channel.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close closes the send channel, which makes the write pump say goodbye and
	// release the connection. Close must be safe to call more than once.
	Close()
}
