package chathub

import (
	"bytes"
	"encoding/json"
	"langbridge/backend/internal/models"
	"strings"
)

// Command is one decoded inbound frame. The set of implementations is closed:
// JoinRoomCommand, ChatMessageCommand, LeaveRoomCommand and ListUsersCommand.
type Command interface {
	commandType() string
}

// JoinRoomCommand asks to move the session into a named room.
type JoinRoomCommand struct {
	RoomName string
	UserName string
	Role     models.Role
}

// ChatMessageCommand asks to relay Content to the rest of the session's room.
type ChatMessageCommand struct {
	Content string
}

// LeaveRoomCommand asks to leave the current room.
type LeaveRoomCommand struct{}

// ListUsersCommand asks for the current room's member list.
type ListUsersCommand struct{}

func (JoinRoomCommand) commandType() string    { return models.CommandJoinRoom }
func (ChatMessageCommand) commandType() string { return models.CommandChatMessage }
func (LeaveRoomCommand) commandType() string   { return models.CommandLeaveRoom }
func (ListUsersCommand) commandType() string   { return models.CommandListUsers }

// DecodeCommand parses and validates a raw frame. Every field a command needs
// is checked here, before any relay state is touched.
func DecodeCommand(data []byte) (Command, error) {
	var frame models.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, protocolError("error_invalid_frame")
	}

	switch frame.Type {
	case models.CommandJoinRoom:
		var p models.JoinRoomPayload
		if err := decodePayload(frame.Payload, &p); err != nil {
			return nil, err
		}
		cmd := JoinRoomCommand{
			RoomName: strings.TrimSpace(p.RoomName),
			UserName: strings.TrimSpace(p.UserName),
			Role:     p.UserRole,
		}
		if cmd.RoomName == "" || cmd.UserName == "" || cmd.Role == "" {
			return nil, validationError("error_missing_join_fields")
		}
		if !cmd.Role.Valid() {
			return nil, validationError("error_invalid_role", string(cmd.Role))
		}
		return cmd, nil

	case models.CommandChatMessage:
		var p models.ChatMessagePayload
		if err := decodePayload(frame.Payload, &p); err != nil {
			return nil, err
		}
		var content string
		if len(p.Content) > 0 && !isJSONNull(p.Content) {
			if err := json.Unmarshal(p.Content, &content); err != nil {
				return nil, validationError("error_invalid_content")
			}
		}
		if strings.TrimSpace(content) == "" {
			return nil, validationError("error_empty_content")
		}
		return ChatMessageCommand{Content: content}, nil

	case models.CommandLeaveRoom:
		return LeaveRoomCommand{}, nil

	case models.CommandListUsers:
		return ListUsersCommand{}, nil

	case "":
		return nil, protocolError("error_invalid_frame")

	default:
		return nil, protocolError("error_unknown_command", frame.Type)
	}
}

// decodePayload accepts a missing or null payload as an empty object.
func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || isJSONNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return protocolError("error_invalid_frame")
	}
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
