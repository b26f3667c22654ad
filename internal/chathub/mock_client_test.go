package chathub_test

import (
	"langbridge/backend/internal/chathub"
	"langbridge/backend/internal/localization"
	"langbridge/backend/internal/models"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient is a test double for the chathub.Client interface.
type MockClient struct {
	mock.Mock
	mu     sync.Mutex
	userID string
	send   chan models.ServerEvent
}

func newMockClient() *MockClient {
	return newMockClientWithBuffer(32)
}

func newMockClientWithBuffer(size int) *MockClient {
	c := &MockClient{send: make(chan models.ServerEvent, size)}
	c.On("Close").Return().Maybe()
	c.On("Run").Return().Maybe()
	return c
}

func (c *MockClient) GetUserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *MockClient) SetUserID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

func (c *MockClient) GetSendChannel() chan<- models.ServerEvent {
	return c.send
}

func (c *MockClient) Run() {
	c.Called()
}

func (c *MockClient) Close() {
	c.Called()
}

// DrainEvents returns everything queued for the client so far.
func (c *MockClient) DrainEvents() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

// WaitEvent blocks until the next event arrives or fails the test.
func (c *MockClient) WaitEvent(t *testing.T) models.ServerEvent {
	t.Helper()
	select {
	case ev := <-c.send:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return models.ServerEvent{}
	}
}

// testRelay is the relay wired the way NewManagerService wires it, but driven
// synchronously from the test goroutine.
type testRelay struct {
	registry    *chathub.Registry
	directory   *chathub.Directory
	broadcaster *chathub.Broadcaster
	membership  *chathub.Membership
	dispatcher  *chathub.Dispatcher
}

func newTestRelay() *testRelay {
	loc := localization.Bundled()
	directory := chathub.NewDirectory()
	broadcaster := chathub.NewBroadcaster(directory, nil)
	registry := chathub.NewRegistry(broadcaster)
	membership := chathub.NewMembership(registry, directory, broadcaster, loc, "en", nil)
	registry.SetUnregisterHook(membership.LeaveRoom)
	dispatcher := chathub.NewDispatcher(registry, membership, broadcaster, loc, "en", nil)
	return &testRelay{
		registry:    registry,
		directory:   directory,
		broadcaster: broadcaster,
		membership:  membership,
		dispatcher:  dispatcher,
	}
}

// connect registers a fresh mock client and discards its greeting.
func (r *testRelay) connect() (string, *MockClient) {
	c := newMockClient()
	id := r.registry.Register(c)
	c.DrainEvents()
	return id, c
}

func (r *testRelay) join(t *testing.T, id, room, name string, role models.Role) models.RoomJoined {
	t.Helper()
	joined, err := r.membership.JoinRoom(id, chathub.JoinRoomCommand{RoomName: room, UserName: name, Role: role})
	require.NoError(t, err)
	return joined
}

func eventTypes(events []models.ServerEvent) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func memberNames(users []models.MemberInfo) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names
}
