package chathub

import (
	"langbridge/backend/internal/localization"
	"langbridge/backend/internal/models"
	"log"
	"time"

	"github.com/google/uuid"
)

// Membership binds sessions to at most one room at a time and produces the
// join and leave notifications.
type Membership struct {
	registry    *Registry
	directory   *Directory
	broadcaster *Broadcaster
	localizer   *localization.Localizer
	lang        string
	metrics     *Metrics
	now         func() time.Time
	joins       uint64
}

// NewMembership wires a Membership over the given relay state.
func NewMembership(registry *Registry, directory *Directory, broadcaster *Broadcaster, localizer *localization.Localizer, lang string, metrics *Metrics) *Membership {
	return &Membership{
		registry:    registry,
		directory:   directory,
		broadcaster: broadcaster,
		localizer:   localizer,
		lang:        lang,
		metrics:     metrics,
		now:         time.Now,
	}
}

// JoinRoom moves the session into the room called cmd.RoomName, leaving its
// current room first. The joiner gets room_joined and then user_list; everyone
// else in the room gets user_joined.
func (m *Membership) JoinRoom(sessionID string, cmd JoinRoomCommand) (models.RoomJoined, error) {
	if cmd.RoomName == "" || cmd.UserName == "" || cmd.Role == "" {
		return models.RoomJoined{}, validationError("error_missing_join_fields")
	}
	if !cmd.Role.Valid() {
		return models.RoomJoined{}, validationError("error_invalid_role", string(cmd.Role))
	}

	session, ok := m.registry.Get(sessionID)
	if !ok {
		log.Printf("WARNING: Join for unknown session %s ignored", sessionID)
		return models.RoomJoined{}, stateError("error_unknown_session")
	}

	m.LeaveRoom(sessionID)

	room := m.directory.FindOrCreate(cmd.RoomName)
	session.Name = cmd.UserName
	session.Role = cmd.Role
	session.JoinedAt = m.now()
	m.joins++
	session.joinSeq = m.joins
	room.Members[session.ID] = session
	session.RoomID = room.ID
	m.metrics.setRooms(m.directory.Len())

	joined := models.RoomJoined{RoomID: room.ID, RoomName: room.Name, UserCount: len(room.Members)}
	m.broadcaster.Send(session, models.ServerEvent{Type: models.EventRoomJoined, Payload: joined})

	users := room.MemberList()
	m.broadcaster.Broadcast(room.ID, models.ServerEvent{
		Type: models.EventUserJoined,
		Payload: models.MembershipChange{
			User:    session.Info(),
			Users:   users,
			Message: m.systemMessage("user_joined", session.Name),
		},
	}, session.ID)

	m.broadcaster.Send(session, models.ServerEvent{Type: models.EventUserList, Payload: models.UserList{Users: users}})

	log.Printf("INFO: Session %s joined room %q as %s (%s). Members: %d", session.ID, room.Name, session.Name, session.Role, len(room.Members))
	return joined, nil
}

// LeaveRoom removes the session from its room, tells the remaining members and
// deletes the room if it is now empty. It is a no-op for a session with no room.
func (m *Membership) LeaveRoom(sessionID string) {
	session, ok := m.registry.Get(sessionID)
	if !ok || !session.InRoom() {
		return
	}

	roomID := session.RoomID
	session.RoomID = ""

	room, ok := m.directory.Get(roomID)
	if !ok {
		log.Printf("WARNING: Session %s referenced missing room %s", sessionID, roomID)
		return
	}
	delete(room.Members, sessionID)

	if len(room.Members) > 0 {
		m.broadcaster.Broadcast(room.ID, models.ServerEvent{
			Type: models.EventUserLeft,
			Payload: models.MembershipChange{
				User:    session.Info(),
				Users:   room.MemberList(),
				Message: m.systemMessage("user_left", session.Name),
			},
		}, "")
	}

	m.directory.DeleteIfEmpty(room.ID)
	m.metrics.setRooms(m.directory.Len())
	log.Printf("INFO: Session %s left room %q. Members: %d", sessionID, room.Name, len(room.Members))
}

// ListMembers returns the member list of the session's room. The second result
// is false when the session is not in a room.
func (m *Membership) ListMembers(sessionID string) ([]models.MemberInfo, bool) {
	session, ok := m.registry.Get(sessionID)
	if !ok || !session.InRoom() {
		return nil, false
	}
	room, ok := m.directory.Get(session.RoomID)
	if !ok {
		return nil, false
	}
	return room.MemberList(), true
}

func (m *Membership) systemMessage(key, userName string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.New().String(),
		Type:      models.MessageTypeSystem,
		UserName:  m.localizer.GetString(m.lang, "system_sender"),
		Content:   m.localizer.Format(m.lang, key, userName),
		Timestamp: m.now(),
	}
}
