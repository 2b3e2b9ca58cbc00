package browser

// LocationKey is the storage key SessionHistory persists the location under.
const LocationKey = "location"

// SessionHistory is a MemoryHistory whose current location survives process
// restarts through a Storage. Only the location is kept, not the stack.
type SessionHistory struct {
	*MemoryHistory
	storage Storage
}

// NewSessionHistory restores the last location from storage ("/" if none).
func NewSessionHistory(storage Storage) *SessionHistory {
	initial, _ := storage.GetItem(LocationKey)
	h := &SessionHistory{
		MemoryHistory: NewMemoryHistory(initial),
		storage:       storage,
	}
	h.MemoryHistory.OnPopState(h.persist)
	return h
}

// PushState pushes path and persists it as the current location.
func (h *SessionHistory) PushState(state map[string]string, path string) {
	h.MemoryHistory.PushState(state, path)
	h.persist(path)
}

func (h *SessionHistory) persist(path string) {
	// A failed write only loses the remembered location.
	_ = h.storage.SetItem(LocationKey, path)
}
