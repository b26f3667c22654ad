package models

import "time"

// RoomStats is the public view of a live room, as reported by the stats endpoint.
type RoomStats struct {
	// ID is the identifier generated when the room was first created (UUID).
	ID string `json:"id"`
	// Name is the case-sensitive room name clients join by.
	Name string `json:"name"`
	// UserCount is the number of sessions currently in the room.
	UserCount int `json:"userCount"`
	// CreatedAt is the timestamp of the first join.
	CreatedAt time.Time `json:"createdAt"`
}

// RelayStats summarizes the relay's in-memory state.
type RelayStats struct {
	TotalRooms int         `json:"totalRooms"`
	TotalUsers int         `json:"totalUsers"`
	Rooms      []RoomStats `json:"rooms"`
}
