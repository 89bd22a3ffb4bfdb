package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0,g=yes")

	for _, name := range []string{"a", "c", "e", "g"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%")

	assert.True(t, m.Enabled("always", 1))
	assert.True(t, m.On("always"))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("junk", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout must be deterministic per user")
	}
	assert.False(t, m.Enabled("canary", 0), "partial rollout is off for anonymous callers")
}

func TestNewManager_SkipsMalformedPairs(t *testing.T) {
	m := NewManager(" bad ,x=on, Y = 20% ,z=off,=on,w= ")

	assert.Equal(t, map[string]string{"x": "on", "y": "20%", "z": "off"}, m.Raw())
	assert.Equal(t, []string{"x", "y", "z"}, m.Names())
}

func TestPredicate_SeesRuntimeOverrides(t *testing.T) {
	m := NewManager("")
	check := m.Predicate(InvalidateOnCreate)

	assert.False(t, check())
	m.Set("INVALIDATE_ON_CREATE", "on")
	assert.True(t, check())
	m.Set(InvalidateOnCreate, "off")
	assert.False(t, check())
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(InvalidateOnCreate, 1))
	assert.Empty(t, m.Raw())
}

func TestPartial(t *testing.T) {
	m := NewManager("canary=25%,full=100%,none=0%,plain=on")

	assert.True(t, m.Partial("canary"))
	for _, name := range []string{"full", "none", "plain", "missing"} {
		assert.False(t, m.Partial(name), name)
	}
	// a partial rollout never turns on a check made without a user
	assert.False(t, m.On("canary"))
}
