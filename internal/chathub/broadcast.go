package chathub

import (
	"langbridge/backend/internal/models"
	"log"
)

// Broadcaster delivers events to sessions. Delivery is a non-blocking hand-off
// to the recipient's send buffer; the recipient's write pump does the socket I/O.
type Broadcaster struct {
	directory *Directory
	metrics   *Metrics
}

// NewBroadcaster creates a Broadcaster reading room membership from directory.
func NewBroadcaster(directory *Directory, metrics *Metrics) *Broadcaster {
	return &Broadcaster{directory: directory, metrics: metrics}
}

// Broadcast delivers event to every member of the room except exclude (which may
// be empty) and returns the number of members it was handed to. Membership is
// snapshotted on entry. A failed delivery is logged and skipped; it never
// affects the other recipients.
func (b *Broadcaster) Broadcast(roomID string, event models.ServerEvent, exclude string) int {
	room, ok := b.directory.Get(roomID)
	if !ok {
		return 0
	}

	members := room.Snapshot()
	b.metrics.recordBroadcast(event.Type)

	delivered := 0
	for _, member := range members {
		if exclude != "" && member.ID == exclude {
			continue
		}
		if b.Send(member, event) {
			delivered++
		}
	}
	return delivered
}

// Send hands event to a single session's client. It returns false when the
// session is closed or its buffer is full.
func (b *Broadcaster) Send(session *Session, event models.ServerEvent) bool {
	if session == nil || session.closed {
		b.metrics.recordSkippedDelivery()
		return false
	}
	if trySend(session.Client.GetSendChannel(), event) {
		return true
	}

	log.Printf("WARNING: Dropped %s event for session %s: client is not keeping up", event.Type, session.ID)
	b.metrics.recordSkippedDelivery()
	return false
}

// trySend never blocks. A client that closed its own channel counts as gone.
func trySend(ch chan<- models.ServerEvent, event models.ServerEvent) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			sent = false
		}
	}()

	select {
	case ch <- event:
		return true
	default:
		return false
	}
}
