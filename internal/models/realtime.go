package models

import (
	"encoding/json"
	"time"
)

// Inbound command kinds.
const (
	CommandJoinRoom    = "join_room"
	CommandChatMessage = "chat_message"
	CommandLeaveRoom   = "leave_room"
	CommandListUsers   = "list_users"
)

// Outbound event kinds.
const (
	EventConnectionEstablished = "connection_established"
	EventRoomJoined            = "room_joined"
	EventUserJoined            = "user_joined"
	EventUserLeft              = "user_left"
	EventChatMessage           = "chat_message"
	EventUserList              = "user_list"
	EventError                 = "error"
)

// Message kinds carried inside chat and system payloads.
const (
	MessageTypeChat   = "chat_message"
	MessageTypeSystem = "system_message"
)

// Frame is the raw envelope of every inbound text frame.
// Payload stays undecoded until the command kind is known.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JoinRoomPayload is the payload of a join_room command.
type JoinRoomPayload struct {
	RoomName string `json:"roomName"`
	UserName string `json:"userName"`
	UserRole Role   `json:"userRole"`
}

// ChatMessagePayload is the payload of a chat_message command. Content stays
// raw so a non-string value can be told apart from a missing one.
type ChatMessagePayload struct {
	Content json.RawMessage `json:"content"`
}

// ServerEvent is one outbound frame. Every frame the relay writes is a
// ServerEvent serialized as a single JSON object.
type ServerEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ConnectionEstablished is sent once, right after registration.
type ConnectionEstablished struct {
	UserID string `json:"userId"`
}

// RoomJoined is the private reply to a successful join.
type RoomJoined struct {
	RoomID    string `json:"roomId"`
	RoomName  string `json:"roomName"`
	UserCount int    `json:"userCount"`
}

// MembershipChange is the payload of user_joined and user_left.
type MembershipChange struct {
	User    MemberInfo   `json:"user"`
	Users   []MemberInfo `json:"users"`
	Message ChatMessage  `json:"message"`
}

// UserList carries a room's member list.
type UserList struct {
	Users []MemberInfo `json:"users"`
}

// ErrorReply is the single shape for every command-level failure.
type ErrorReply struct {
	Error string `json:"error"`
}

// ChatMessage is the transient message broadcast to a room. It is built once
// per broadcast and never stored.
type ChatMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	UserName  string    `json:"userName"`
	UserRole  Role      `json:"userRole,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// IncomingFrame is a raw frame tagged with the session that sent it.
type IncomingFrame struct {
	SessionID string
	Data      []byte
}
