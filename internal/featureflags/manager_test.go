package featureflags

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestManagerParsing(t *testing.T) {
	m := NewManager(" Post_List_Cache = on , new_feed=25%, legacy=off,, bad-pair ")

	raw := m.Raw()
	assert.Equal(t, "on", raw["post_list_cache"])
	assert.Equal(t, "25%", raw["new_feed"])
	assert.Equal(t, "off", raw["legacy"])
	assert.NotContains(t, raw, "bad-pair")
}

func TestEnabled(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=0,full=100%,none=0%")
	user := uuid.New()

	assert.True(t, m.Enabled("a", user))
	assert.False(t, m.Enabled("b", user))
	assert.True(t, m.Enabled("c", user))
	assert.False(t, m.Enabled("d", user))
	assert.True(t, m.Enabled("full", user))
	assert.False(t, m.Enabled("none", user))
	assert.False(t, m.Enabled("unknown", user))
}

func TestPercentageRollout(t *testing.T) {
	m := NewManager("rollout=50%")
	user := uuid.New()

	// Deterministic per user.
	first := m.Enabled("rollout", user)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("rollout", user))
	}

	// Anonymous callers never land in a partial rollout.
	assert.False(t, m.Enabled("rollout", uuid.Nil))

	// Roughly half of a user population should be enabled.
	enabled := 0
	const n = 1000
	for i := 0; i < n; i++ {
		if m.Enabled("rollout", uuid.New()) {
			enabled++
		}
	}
	assert.Greater(t, enabled, n/4)
	assert.Less(t, enabled, 3*n/4)
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled("anything", uuid.New()))
}

func TestSnapshot(t *testing.T) {
	m := NewManager("a=on,b=off")
	snap := m.Snapshot(uuid.New())
	assert.Equal(t, map[string]bool{"a": true, "b": false}, snap)
}
