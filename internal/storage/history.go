package storage

import "time"

// HistoryEntry records one CLI action against a workspace.
type HistoryEntry struct {
	Time     time.Time `json:"time"`
	ActionID string    `json:"action_id"`
	Action   string    `json:"action"`
	Target   string    `json:"target,omitempty"`
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
	Used     int       `json:"used"` // operations used after the action
}

// AppendHistory adds an entry to the history file.
func AppendHistory(path string, e HistoryEntry) error {
	return AppendJSONL(path, e)
}

// ReadHistory returns the history, oldest first. With limit > 0 only the
// last limit entries are returned.
func ReadHistory(path string, limit int) ([]HistoryEntry, error) {
	entries, err := ReadJSONL[HistoryEntry](path)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
