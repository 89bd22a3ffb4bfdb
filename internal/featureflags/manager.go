// Package featureflags evaluates runtime toggles supplied through FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// InvalidateOnCreate makes post and comment creation clear the response cache.
const InvalidateOnCreate = "invalidate_on_create"

// Manager holds flags parsed from a "name=value,..." list.
// Values are on/off style booleans or a percentage rollout such as "25%".
type Manager struct {
	mu    sync.RWMutex
	flags map[string]string
}

// NewManager parses raw. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	m := &Manager{flags: make(map[string]string)}
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		m.set(name, value)
	}
	return m
}

// Set overrides one flag at runtime.
func (m *Manager) Set(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(name, value)
}

func (m *Manager) set(name, value string) {
	name, value = normalize(name), normalize(value)
	if name == "" || value == "" {
		return
	}
	m.flags[name] = value
}

// Enabled evaluates name for userID. Percentage rollouts hash the pair so a
// user always lands in the same bucket, and anonymous callers (userID 0)
// only see fully rolled out flags.
func (m *Manager) Enabled(name string, userID uint) bool {
	value, ok := m.lookup(name)
	if !ok {
		return false
	}
	if on, isBool := parseBool(value); isBool {
		return on
	}
	pct, isPct := parsePercent(value)
	switch {
	case !isPct || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < pct
}

// On reports whether name is enabled for everyone.
func (m *Manager) On(name string) bool {
	return m.Enabled(name, 0)
}

// Partial reports whether name is set to a rollout strictly between 0% and
// 100%. Such values only mean something to user-scoped checks.
func (m *Manager) Partial(name string) bool {
	value, ok := m.lookup(name)
	if !ok {
		return false
	}
	pct, isPct := parsePercent(value)
	return isPct && pct > 0 && pct < 100
}

// ProcessWide lists flags that are checked without a user and so accept
// only on/off values (or 0% and 100%).
var ProcessWide = []string{InvalidateOnCreate}

// Predicate returns a live check of name, for components that must see
// runtime overrides made through Set.
func (m *Manager) Predicate(name string) func() bool {
	return func() bool { return m.On(name) }
}

// Raw returns a copy of the configured values.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Names lists configured flags in sorted order.
func (m *Manager) Names() []string {
	raw := m.Raw()
	names := make([]string, 0, len(raw))
	for k := range raw {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) lookup(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.flags[normalize(name)]
	return v, ok
}

func parseBool(v string) (value, ok bool) {
	switch v {
	case "on", "true", "1", "yes":
		return true, true
	case "off", "false", "0", "no":
		return false, true
	}
	return false, false
}

func parsePercent(v string) (int, bool) {
	raw, found := strings.CutSuffix(v, "%")
	if !found {
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
