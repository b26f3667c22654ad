package chathub

import (
	"errors"
	"langbridge/backend/internal/localization"
	"langbridge/backend/internal/models"
	"log"
	"time"

	"github.com/google/uuid"
)

// Dispatcher decodes inbound frames and routes them to Membership or the
// Broadcaster. It is the only place where command failures become error replies.
type Dispatcher struct {
	registry    *Registry
	membership  *Membership
	broadcaster *Broadcaster
	localizer   *localization.Localizer
	lang        string
	metrics     *Metrics
	now         func() time.Time
}

// NewDispatcher wires a Dispatcher over the given relay components.
func NewDispatcher(registry *Registry, membership *Membership, broadcaster *Broadcaster, localizer *localization.Localizer, lang string, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		membership:  membership,
		broadcaster: broadcaster,
		localizer:   localizer,
		lang:        lang,
		metrics:     metrics,
		now:         time.Now,
	}
}

// Dispatch handles one raw frame from sessionID. Failures are answered with a
// private error reply; the connection is never closed here.
func (d *Dispatcher) Dispatch(sessionID string, data []byte) {
	session, ok := d.registry.Get(sessionID)
	if !ok {
		log.Printf("WARNING: Dropping frame from unknown session %s", sessionID)
		return
	}

	cmd, err := DecodeCommand(data)
	if err == nil {
		err = d.execute(session, cmd)
	}
	if err != nil {
		d.replyError(session, err)
	}
}

func (d *Dispatcher) execute(session *Session, cmd Command) error {
	switch c := cmd.(type) {
	case JoinRoomCommand:
		_, err := d.membership.JoinRoom(session.ID, c)
		return err

	case ChatMessageCommand:
		return d.relayChat(session, c.Content)

	case LeaveRoomCommand:
		d.membership.LeaveRoom(session.ID)
		return nil

	case ListUsersCommand:
		users, ok := d.membership.ListMembers(session.ID)
		if !ok {
			return nil
		}
		d.broadcaster.Send(session, models.ServerEvent{Type: models.EventUserList, Payload: models.UserList{Users: users}})
		return nil
	}
	return protocolError("error_unknown_command", cmd.commandType())
}

func (d *Dispatcher) relayChat(session *Session, content string) error {
	if !session.InRoom() {
		return stateError("error_not_in_room")
	}

	msg := models.ChatMessage{
		ID:        uuid.New().String(),
		Type:      models.MessageTypeChat,
		UserID:    session.ID,
		UserName:  session.Name,
		UserRole:  session.Role,
		Content:   content,
		Timestamp: d.now(),
	}
	d.broadcaster.Broadcast(session.RoomID, models.ServerEvent{Type: models.EventChatMessage, Payload: msg}, session.ID)
	return nil
}

func (d *Dispatcher) replyError(session *Session, err error) {
	text := err.Error()
	var ce *CommandError
	if errors.As(err, &ce) {
		text = d.localizer.Format(d.lang, ce.Key, ce.Args...)
	}

	d.metrics.recordRejectedFrame(KindOf(err))
	log.Printf("WARNING: Rejected frame from session %s: %v", session.ID, err)
	d.broadcaster.Send(session, models.ServerEvent{Type: models.EventError, Payload: models.ErrorReply{Error: text}})
}
