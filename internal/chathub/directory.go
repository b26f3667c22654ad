package chathub

import (
	"langbridge/backend/internal/models"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Room is a named group of sessions. A Room with no members is never kept in
// the Directory.
type Room struct {
	ID        string
	Name      string
	Members   map[string]*Session
	CreatedAt time.Time
}

// Snapshot returns the room's current members. The returned slice is a copy,
// so later joins and leaves do not affect a caller iterating over it.
func (r *Room) Snapshot() []*Session {
	members := make([]*Session, 0, len(r.Members))
	for _, s := range r.Members {
		members = append(members, s)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].joinSeq != members[j].joinSeq {
			return members[i].joinSeq < members[j].joinSeq
		}
		return members[i].ID < members[j].ID
	})
	return members
}

// MemberList returns the public view of every member, in join order.
func (r *Room) MemberList() []models.MemberInfo {
	snapshot := r.Snapshot()
	users := make([]models.MemberInfo, 0, len(snapshot))
	for _, s := range snapshot {
		users = append(users, s.Info())
	}
	return users
}

// Stats returns the public view of the room.
func (r *Room) Stats() models.RoomStats {
	return models.RoomStats{ID: r.ID, Name: r.Name, UserCount: len(r.Members), CreatedAt: r.CreatedAt}
}

// Directory maps room names to live rooms. Lookup by name finds at most one
// room; rooms are created on first join and deleted with their last member.
type Directory struct {
	rooms  map[string]*Room
	byName map[string]string
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[string]*Room),
		byName: make(map[string]string),
	}
}

// FindOrCreate returns the live room called name, creating an empty one if none exists.
func (d *Directory) FindOrCreate(name string) *Room {
	if id, ok := d.byName[name]; ok {
		return d.rooms[id]
	}

	room := &Room{
		ID:        uuid.New().String(),
		Name:      name,
		Members:   make(map[string]*Session),
		CreatedAt: time.Now(),
	}
	d.rooms[room.ID] = room
	d.byName[name] = room.ID
	log.Printf("INFO: Room %q created (%s)", name, room.ID)
	return room
}

// Get returns the room with the given identifier.
func (d *Directory) Get(id string) (*Room, bool) {
	room, ok := d.rooms[id]
	return room, ok
}

// FindByName returns the live room called name.
func (d *Directory) FindByName(name string) (*Room, bool) {
	id, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return d.rooms[id], true
}

// DeleteIfEmpty removes the room when it has no members and reports whether it did.
func (d *Directory) DeleteIfEmpty(id string) bool {
	room, ok := d.rooms[id]
	if !ok || len(room.Members) > 0 {
		return false
	}
	delete(d.rooms, id)
	if d.byName[room.Name] == id {
		delete(d.byName, room.Name)
	}
	log.Printf("INFO: Room %q deleted (%s)", room.Name, id)
	return true
}

// Len returns the number of live rooms.
func (d *Directory) Len() int {
	return len(d.rooms)
}

// Stats lists every live room, oldest first.
func (d *Directory) Stats() []models.RoomStats {
	stats := make([]models.RoomStats, 0, len(d.rooms))
	for _, room := range d.rooms {
		stats = append(stats, room.Stats())
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].CreatedAt.Equal(stats[j].CreatedAt) {
			return stats[i].CreatedAt.Before(stats[j].CreatedAt)
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}
