package models

import "time"

// RawRecord is one interaction event exactly as read from an input file.
// Input is schema-on-read: no field set is enforced at extraction time, so
// the record stays an open key→value mapping until the transformer coerces
// it into an Interaction.
type RawRecord map[string]any

// Interaction is the enriched, typed record ready for PostgreSQL storage.
// Optional fields are pointers so that an absent value loads as NULL rather
// than an empty string.
type Interaction struct {
	InteractionID    string
	UserID           string
	SessionID        string
	Timestamp        time.Time
	PageURL          string
	Action           string
	DeviceType       *string
	Referrer         *string
	EventDate        time.Time
	EventTime        string
	EventHour        int
	EventDay         int
	EventMonth       int
	EventYear        int
	EventDayOfWeek   int
	IsWeekend        bool
	ContentCategory  string
	ArticleID        string
	ReferrerCategory string
	TimeSpentSeconds *string
	ScrollDepth      *string
}

// InsertSummary reports the outcome of a load call.
type InsertSummary struct {
	Inserted int
	Skipped  int
}
