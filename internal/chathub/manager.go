package chathub

import (
	"context"
	"langbridge/backend/internal/config"
	"langbridge/backend/internal/localization"
	"langbridge/backend/internal/models"
	"log"
)

// Options configures a ManagerService.
type Options struct {
	// Localizer supplies system message and error texts. Defaults to the bundled locales.
	Localizer *localization.Localizer
	// Language selects the locale for system messages and error replies.
	Language string
	// Metrics may be nil.
	Metrics *Metrics
}

type registration struct {
	client Client
	reply  chan string
}

// ManagerService is the relay hub. A single goroutine (Run) owns the Registry,
// the Directory and every membership set, so joins, leaves, room creation and
// deletion never interleave. Everything else talks to it through channels.
type ManagerService struct {
	registry    *Registry
	directory   *Directory
	broadcaster *Broadcaster
	membership  *Membership
	dispatcher  *Dispatcher
	metrics     *Metrics

	registerCh   chan registration
	unregisterCh chan Client
	incomingCh   chan models.IncomingFrame
	statsCh      chan chan models.RelayStats

	done chan struct{}
}

// NewManagerService builds the relay components and the hub that serializes them.
func NewManagerService(opts Options) *ManagerService {
	if opts.Localizer == nil {
		opts.Localizer = localization.Bundled()
	}
	if opts.Language == "" {
		opts.Language = config.DefaultLanguage
	}

	directory := NewDirectory()
	broadcaster := NewBroadcaster(directory, opts.Metrics)
	registry := NewRegistry(broadcaster)
	membership := NewMembership(registry, directory, broadcaster, opts.Localizer, opts.Language, opts.Metrics)
	registry.SetUnregisterHook(membership.LeaveRoom)
	dispatcher := NewDispatcher(registry, membership, broadcaster, opts.Localizer, opts.Language, opts.Metrics)

	return &ManagerService{
		registry:     registry,
		directory:    directory,
		broadcaster:  broadcaster,
		membership:   membership,
		dispatcher:   dispatcher,
		metrics:      opts.Metrics,
		registerCh:   make(chan registration),
		unregisterCh: make(chan Client),
		incomingCh:   make(chan models.IncomingFrame),
		statsCh:      make(chan chan models.RelayStats),
		done:         make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns after ctx is cancelled and every
// registered client has been closed.
func (m *ManagerService) Run(ctx context.Context) {
	defer close(m.done)
	log.Println("Relay hub started.")

	for {
		select {
		case <-ctx.Done():
			closed := m.registry.CloseAll()
			m.metrics.setSessions(0)
			m.metrics.setRooms(m.directory.Len())
			log.Printf("Relay hub stopped. Closed %d client connections.", closed)
			return

		case reg := <-m.registerCh:
			reg.reply <- m.registry.Register(reg.client)
			m.metrics.setSessions(m.registry.Len())

		case client := <-m.unregisterCh:
			m.registry.Unregister(client.GetUserID())
			m.metrics.setSessions(m.registry.Len())

		case frame := <-m.incomingCh:
			m.dispatcher.Dispatch(frame.SessionID, frame.Data)

		case reply := <-m.statsCh:
			reply <- models.RelayStats{
				TotalRooms: m.directory.Len(),
				TotalUsers: m.registry.Len(),
				Rooms:      m.directory.Stats(),
			}
		}
	}
}

// Register hands client to the hub and returns its new session identifier.
// The connection_established greeting is already queued when it returns.
func (m *ManagerService) Register(client Client) (string, error) {
	reply := make(chan string, 1)
	select {
	case m.registerCh <- registration{client: client, reply: reply}:
	case <-m.done:
		return "", ErrHubStopped
	}
	return <-reply, nil
}

// Unregister removes client from the hub, leaving its room first. Calling it
// for an unknown or already removed client, or after the hub stopped, is a no-op.
func (m *ManagerService) Unregister(client Client) {
	select {
	case m.unregisterCh <- client:
	case <-m.done:
	}
}

// Submit queues a raw inbound frame from sessionID. It returns false once the
// hub has stopped.
func (m *ManagerService) Submit(sessionID string, data []byte) bool {
	select {
	case m.incomingCh <- models.IncomingFrame{SessionID: sessionID, Data: data}:
		return true
	case <-m.done:
		return false
	}
}

// Stats returns a snapshot of rooms and sessions.
func (m *ManagerService) Stats() (models.RelayStats, error) {
	reply := make(chan models.RelayStats, 1)
	select {
	case m.statsCh <- reply:
	case <-m.done:
		return models.RelayStats{}, ErrHubStopped
	}
	return <-reply, nil
}

// Done is closed when Run has returned.
func (m *ManagerService) Done() <-chan struct{} {
	return m.done
}
