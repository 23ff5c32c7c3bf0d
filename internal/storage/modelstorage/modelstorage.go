// Package modelstorage provides locally used types and their structure for storage objects.
package modelstorage

// SlotJournalEntry is one line of the file journal. Deleted entries are tombstones.
type SlotJournalEntry struct {
	ClientID string `json:"clientID"`
	Key      string `json:"key"`
	Value    string `json:"value,omitempty"`
	Deleted  bool   `json:"deleted,omitempty"`
}

// SlotMap holds the slots of a single client.
type SlotMap map[string]string
