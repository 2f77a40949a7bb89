// Package presence derives online/offline status from activity timestamps.
package presence

import "time"

// OnlineThreshold is how recent a contact's last activity must be for the
// contact to count as online.
const OnlineThreshold = 120 * time.Second

// lastSeenLayout renders timestamps to minute precision.
const lastSeenLayout = "Jan 2, 2006 15:04"

// Presence is the derived status of a contact.
type Presence struct {
	Online bool
	Label  string
}

// Status classifies lastActivity (unix seconds) against now. A contact is
// online while strictly less than OnlineThreshold has elapsed; exactly at
// the threshold counts as offline.
func Status(lastActivity int64, now time.Time) Presence {
	if now.Unix()-lastActivity < int64(OnlineThreshold.Seconds()) {
		return Presence{Online: true, Label: "online"}
	}
	last := time.Unix(lastActivity, 0)
	return Presence{Label: "last seen " + last.Format(lastSeenLayout)}
}
