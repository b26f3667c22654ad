package chathub_test

import (
	"context"
	"fmt"
	"langbridge/backend/internal/chathub"
	"langbridge/backend/internal/models"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, opts chathub.Options) (*chathub.ManagerService, context.CancelFunc) {
	t.Helper()
	if opts.Language == "" {
		opts.Language = "en"
	}
	hub := chathub.NewManagerService(opts)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub, cancel
}

func joinFrame(room, name string, role models.Role) []byte {
	return []byte(fmt.Sprintf(`{"type":"join_room","payload":{"roomName":%q,"userName":%q,"userRole":%q}}`, room, name, role))
}

func TestManager_RegisterAndUnregister(t *testing.T) {
	hub, _ := startHub(t, chathub.Options{})
	client := newMockClient()

	id, err := hub.Register(client)
	require.NoError(t, err)
	assert.Equal(t, id, client.GetUserID())

	greeting := client.WaitEvent(t)
	assert.Equal(t, models.EventConnectionEstablished, greeting.Type)

	stats, err := hub.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)

	hub.Unregister(client)
	stats, err = hub.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalUsers)
	client.AssertCalled(t, "Close")
}

func TestManager_StatsScenario(t *testing.T) {
	hub, _ := startHub(t, chathub.Options{})
	clientA, clientB := newMockClient(), newMockClient()
	idA, err := hub.Register(clientA)
	require.NoError(t, err)
	idB, err := hub.Register(clientB)
	require.NoError(t, err)

	require.True(t, hub.Submit(idA, joinFrame("alpha", "Alice", models.RoleProductManager)))
	require.True(t, hub.Submit(idB, joinFrame("alpha", "Bob", models.RoleDeveloper)))

	stats, err := hub.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRooms)
	assert.Equal(t, 2, stats.TotalUsers)
	require.Len(t, stats.Rooms, 1)
	assert.Equal(t, "alpha", stats.Rooms[0].Name)
	assert.Equal(t, 2, stats.Rooms[0].UserCount)
	assert.NotEmpty(t, stats.Rooms[0].ID)

	// A disconnects: room survives with Bob.
	hub.Unregister(clientA)
	stats, err = hub.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRooms)
	assert.Equal(t, 1, stats.Rooms[0].UserCount)

	// B leaves: room is gone.
	require.True(t, hub.Submit(idB, []byte(`{"type":"leave_room"}`)))
	stats, err = hub.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRooms)
	assert.Empty(t, stats.Rooms)
}

func TestManager_ShutdownClosesClients(t *testing.T) {
	hub, cancel := startHub(t, chathub.Options{})
	clients := []*MockClient{newMockClient(), newMockClient()}
	for _, c := range clients {
		_, err := hub.Register(c)
		require.NoError(t, err)
	}

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	for _, c := range clients {
		c.AssertCalled(t, "Close")
	}

	_, err := hub.Register(newMockClient())
	assert.ErrorIs(t, err, chathub.ErrHubStopped)
	_, err = hub.Stats()
	assert.ErrorIs(t, err, chathub.ErrHubStopped)
	assert.False(t, hub.Submit("x", []byte(`{}`)))
	assert.NotPanics(t, func() { hub.Unregister(clients[0]) })
}

func TestManager_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hub, _ := startHub(t, chathub.Options{Metrics: chathub.NewMetrics(reg)})
	clientA, clientB := newMockClient(), newMockClient()
	idA, _ := hub.Register(clientA)
	idB, _ := hub.Register(clientB)

	hub.Submit(idA, joinFrame("alpha", "Alice", models.RoleProductManager))
	hub.Submit(idB, joinFrame("alpha", "Bob", models.RoleDeveloper))
	hub.Submit(idB, []byte(`{"type":"chat_message","payload":{"content":"hi"}}`))
	hub.Submit(idB, []byte(`not json`))
	_, err := hub.Stats() // flushes the queue
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				values[f.GetName()] += m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				values[f.GetName()] += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["langbridge_relay_sessions"])
	assert.Equal(t, 1.0, values["langbridge_relay_rooms"])
	// Two user_joined broadcasts and one chat message.
	assert.Equal(t, 3.0, values["langbridge_relay_messages_broadcast_total"])
	assert.Equal(t, 1.0, values["langbridge_relay_frames_rejected_total"])
}

// TestManager_ConcurrentClients drives the hub from many goroutines and checks
// that membership ends up exactly as the last operations describe.
func TestManager_ConcurrentClients(t *testing.T) {
	hub, _ := startHub(t, chathub.Options{})

	const n = 20
	clients := make([]*MockClient, n)
	ids := make([]string, n)
	for i := range clients {
		clients[i] = newMockClientWithBuffer(1024)
		id, err := hub.Register(clients[i])
		require.NoError(t, err)
		ids[i] = id
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := fmt.Sprintf("room-%d", i%3)
			for j := 0; j < 10; j++ {
				hub.Submit(ids[i], joinFrame(fmt.Sprintf("tmp-%d", j%2), "u", models.RoleDeveloper))
				hub.Submit(ids[i], []byte(`{"type":"chat_message","payload":{"content":"x"}}`))
			}
			hub.Submit(ids[i], joinFrame(room, fmt.Sprintf("user-%d", i), models.RoleDeveloper))
		}(i)
	}
	wg.Wait()

	stats, err := hub.Stats()
	require.NoError(t, err)
	assert.Equal(t, n, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalRooms, "every temporary room was deleted")

	total := 0
	names := map[string]bool{}
	for _, room := range stats.Rooms {
		assert.False(t, names[room.Name], "room names are unique")
		names[room.Name] = true
		total += room.UserCount
	}
	assert.Equal(t, n, total, "each session is in exactly one room")
}

// TestRelay_RandomOperations checks the directory against a simple model after
// every step of a random join/leave/disconnect sequence.
func TestRelay_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := newTestRelay()
	rooms := []string{"alpha", "beta", "gamma"}

	type sessionState struct {
		id     string
		room   string
		online bool
	}
	var sessions []*sessionState

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(10); {
		case op < 2 || len(sessions) == 0:
			id, _ := r.connect()
			sessions = append(sessions, &sessionState{id: id, online: true})
		case op < 6:
			s := sessions[rng.Intn(len(sessions))]
			if !s.online {
				continue
			}
			room := rooms[rng.Intn(len(rooms))]
			r.join(t, s.id, room, "user", models.RoleDeveloper)
			s.room = room
		case op < 8:
			s := sessions[rng.Intn(len(sessions))]
			r.membership.LeaveRoom(s.id)
			s.room = ""
		default:
			s := sessions[rng.Intn(len(sessions))]
			r.registry.Unregister(s.id)
			s.online = false
			s.room = ""
		}

		expected := map[string]map[string]bool{}
		for _, s := range sessions {
			if s.online && s.room != "" {
				if expected[s.room] == nil {
					expected[s.room] = map[string]bool{}
				}
				expected[s.room][s.id] = true
			}
		}

		require.Equal(t, len(expected), r.directory.Len(), "step %d: a room exists iff it has members", step)
		for name, members := range expected {
			room, ok := r.directory.FindByName(name)
			require.True(t, ok, "step %d: room %s exists", step, name)
			got := map[string]bool{}
			for id := range room.Members {
				got[id] = true
			}
			require.Equal(t, members, got, "step %d: membership of %s", step, name)
		}
	}
}
