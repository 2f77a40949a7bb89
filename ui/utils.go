package ui

import (
	"strings"
	"time"
)

// formatMessageTime renders a message timestamp for the feed.
func formatMessageTime(unix int64) string {
	return time.Unix(unix, 0).Format("15:04")
}

// formatDateSeparator formats a date for display as a separator between
// messages from different days.
func formatDateSeparator(unix int64) string {
	t := time.Unix(unix, 0)
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(yesterday):
		return "Yesterday"
	case day.Year() == now.Year():
		return t.Format("January 2")
	default:
		return t.Format("January 2, 2006")
	}
}

// messageDay returns the YYYY-MM-DD key used to detect day changes.
func messageDay(unix int64) string {
	return time.Unix(unix, 0).Format("2006-01-02")
}

// escapeTags protects message bodies from being interpreted as tview
// color tags.
func escapeTags(s string) string {
	return strings.ReplaceAll(s, "[", "[[")
}
