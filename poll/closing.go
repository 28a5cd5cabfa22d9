package poll

import "time"

// IsClosed reports whether the poll still accepts votes and options. Closing
// is monotonic: an explicit ClosedAt is permanent, and time-based closing is
// recomputed from ActiveTill on every read so no background job is needed to
// flip a stored flag.
func (p *Poll) IsClosed(now time.Time) bool {
	return p.ClosedAt != nil || now.After(p.Settings.ActiveTill)
}
