package table

import (
	"time"

	"github.com/decred/slog"

	"github.com/parlorgames/parlor/pkg/game"
)

// Manager owns every live table. It is confined to the server
// goroutine: creation, lookup, ticking and destruction all happen on
// the tick loop, so no locking is needed.
type Manager struct {
	log    slog.Logger
	cb     Callbacks
	tables map[string]*Table
}

// NewManager creates an empty table manager.
func NewManager(log slog.Logger, cb Callbacks) *Manager {
	return &Manager{
		log:    log,
		cb:     cb,
		tables: make(map[string]*Table),
	}
}

// Create builds a fresh table of the given game type with the named
// user as host.
func (m *Manager) Create(gtype, hostID, hostName string, seat game.Seat) (*Table, error) {
	t := &Table{
		ID:       newTableID(),
		GameType: gtype,
		mgr:      m,
	}
	v, err := game.New(gtype, m.log, t, time.Now().UnixNano())
	if err != nil {
		return nil, err
	}
	t.Game = v
	m.tables[t.ID] = t
	v.State().InitializeLobby(hostID, hostName, seat)
	m.log.Infof("table %s created: %s hosted by %s", t.ID, gtype, hostName)
	return t, nil
}

// Restore rebuilds a table from a snapshot's game JSON. Seats are not
// attached; the caller binds bots and online humans afterwards.
func (m *Manager) Restore(gtype string, gameJSON []byte) (*Table, error) {
	t := &Table{
		ID:       newTableID(),
		GameType: gtype,
		mgr:      m,
	}
	v, err := game.Restore(gtype, gameJSON, m.log, t)
	if err != nil {
		return nil, err
	}
	t.Game = v
	m.tables[t.ID] = t
	m.log.Infof("table %s restored: %s hosted by %s", t.ID, gtype, v.State().HostName)
	return t, nil
}

// Get returns a table by id, or nil.
func (m *Manager) Get(id string) *Table {
	return m.tables[id]
}

// All returns every live table.
func (m *Manager) All() []*Table {
	out := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, t)
	}
	return out
}

// Count returns the number of live tables.
func (m *Manager) Count() int {
	return len(m.tables)
}

// FindUserTable returns the table where the player id is seated, or
// nil.
func (m *Manager) FindUserTable(playerID string) *Table {
	for _, t := range m.tables {
		if t.HasPlayer(playerID) {
			return t
		}
	}
	return nil
}

// WaitingTables lists tables still in their lobby phase (joinable).
func (m *Manager) WaitingTables() []*Table {
	var out []*Table
	for _, t := range m.tables {
		if t.Base().Status == game.StatusWaiting {
			out = append(out, t)
		}
	}
	return out
}

// OnTick advances every live game by one tick. A panicking game must
// not take down the other tables or the tick loop.
func (m *Manager) OnTick() {
	for _, t := range m.tables {
		m.tickTable(t)
	}
}

func (m *Manager) tickTable(t *Table) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorf("table %s (%s) panicked on tick: %v", t.ID, t.GameType, r)
		}
	}()
	t.Base().OnTick()
}

// Destroy removes a table and notifies the server.
func (m *Manager) Destroy(id string) {
	t, ok := m.tables[id]
	if !ok {
		return
	}
	delete(m.tables, id)
	m.log.Infof("table %s destroyed (%s)", t.ID, t.GameType)
	m.cb.TableDestroyed(t)
}
