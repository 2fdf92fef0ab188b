package domain

// Preference holds a user's scheduling defaults. Both fields may be empty,
// in which case the scheduler falls back to the runtime's local timezone and
// the configured default posting time.
type Preference struct {
	UserID      string
	Timezone    string // IANA identifier, e.g. "America/New_York"
	PostingTime string // wall clock "HH:MM", e.g. "09:00"
}
