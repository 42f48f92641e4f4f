package model

import "time"

// Run is one persisted summarise invocation and its result tables.
type Run struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Input     string         `json:"input"`
	Timezone  string         `json:"timezone"`
	Delimiter string         `json:"delimiter"`
	Events    int            `json:"events"`
	FlatRows  int            `json:"flat_rows"`
	Messages  int            `json:"messages"`
	Skipped   int            `json:"skipped"`
	People    []string       `json:"people,omitempty"`
	Counts    []PersonCount  `json:"counts,omitempty"`
	Sent      []MonthlySent  `json:"monthly_sent,omitempty"`
	Contacts  []MonthlyShare `json:"monthly_contacts,omitempty"`
}
