package chathub

import (
	"langbridge/backend/internal/models"
	"log"
	"time"

	"github.com/google/uuid"
)

// Session is one live connection as seen by the relay. It is owned by the
// Registry; rooms only reference it.
type Session struct {
	ID       string
	Client   Client
	RoomID   string
	Name     string
	Role     models.Role
	JoinedAt time.Time

	joinSeq uint64
	closed  bool
}

// Info returns the public view of the session.
func (s *Session) Info() models.MemberInfo {
	return models.MemberInfo{ID: s.ID, Name: s.Name, Role: s.Role}
}

// InRoom reports whether the session is currently bound to a room.
func (s *Session) InRoom() bool {
	return s.RoomID != ""
}

// UnregisterHook runs before a session record is dropped.
type UnregisterHook func(sessionID string)

// Registry owns the set of live sessions. Like the rest of the relay state it
// is not safe for concurrent use; ManagerService serializes every call.
type Registry struct {
	sessions     map[string]*Session
	sender       *Broadcaster
	onUnregister UnregisterHook
}

// NewRegistry creates an empty Registry that greets new sessions through sender.
func NewRegistry(sender *Broadcaster) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		sender:   sender,
	}
}

// SetUnregisterHook installs the hook run on every Unregister (the leave-room
// side effect of a disconnect).
func (r *Registry) SetUnregisterHook(hook UnregisterHook) {
	r.onUnregister = hook
}

// Register allocates a fresh session identifier for client, stores the session
// and queues the connection_established greeting.
func (r *Registry) Register(client Client) string {
	id := uuid.New().String()
	client.SetUserID(id)

	session := &Session{ID: id, Client: client}
	r.sessions[id] = session

	r.sender.Send(session, models.ServerEvent{
		Type:    models.EventConnectionEstablished,
		Payload: models.ConnectionEstablished{UserID: id},
	})
	log.Printf("INFO: Session %s registered. Total sessions: %d", id, len(r.sessions))
	return id
}

// Unregister runs the unregister hook, removes the session and closes its client.
// Unknown identifiers are ignored, so a double disconnect is harmless.
func (r *Registry) Unregister(id string) {
	session, ok := r.sessions[id]
	if !ok {
		return
	}

	if r.onUnregister != nil {
		r.onUnregister(id)
	}

	delete(r.sessions, id)
	session.closed = true
	session.Client.Close()
	log.Printf("INFO: Session %s unregistered. Total sessions: %d", id, len(r.sessions))
}

// Get returns the session with the given identifier.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// CloseAll unregisters every session.
func (r *Registry) CloseAll() int {
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	for _, id := range ids {
		r.Unregister(id)
	}
	return len(ids)
}
