package chathub_test

import (
	"langbridge/backend/internal/chathub"
	"langbridge/backend/internal/models"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAssignsUniqueIDAndGreets(t *testing.T) {
	directory := chathub.NewDirectory()
	registry := chathub.NewRegistry(chathub.NewBroadcaster(directory, nil))

	clientA := newMockClient()
	clientB := newMockClient()
	idA := registry.Register(clientA)
	idB := registry.Register(clientB)

	assert.NotEqual(t, idA, idB)
	_, err := uuid.Parse(idA)
	assert.NoError(t, err, "session ids are UUIDs")
	assert.Equal(t, idA, clientA.GetUserID())
	assert.Equal(t, 2, registry.Len())

	events := clientA.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventConnectionEstablished, events[0].Type)
	assert.Equal(t, models.ConnectionEstablished{UserID: idA}, events[0].Payload)

	session, ok := registry.Get(idA)
	require.True(t, ok)
	assert.False(t, session.InRoom(), "new sessions are not in a room")
}

func TestRegistry_UnregisterRunsHookThenCloses(t *testing.T) {
	directory := chathub.NewDirectory()
	registry := chathub.NewRegistry(chathub.NewBroadcaster(directory, nil))

	var hooked []string
	registry.SetUnregisterHook(func(id string) {
		_, stillThere := registry.Get(id)
		assert.True(t, stillThere, "hook runs before the session is removed")
		hooked = append(hooked, id)
	})

	client := newMockClient()
	id := registry.Register(client)

	registry.Unregister(id)
	registry.Unregister(id)

	assert.Equal(t, []string{id}, hooked, "second unregister is a no-op")
	assert.Equal(t, 0, registry.Len())
	client.AssertNumberOfCalls(t, "Close", 1)
}

func TestRegistry_CloseAll(t *testing.T) {
	directory := chathub.NewDirectory()
	registry := chathub.NewRegistry(chathub.NewBroadcaster(directory, nil))

	clients := []*MockClient{newMockClient(), newMockClient(), newMockClient()}
	for _, c := range clients {
		registry.Register(c)
	}

	assert.Equal(t, 3, registry.CloseAll())
	assert.Equal(t, 0, registry.Len())
	for _, c := range clients {
		c.AssertCalled(t, "Close")
	}
}
