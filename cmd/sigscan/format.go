package main

import "strings"

// formatForConsole escapes line breaks and tabs and truncates s for a
// single output line.
func formatForConsole(s string, maxLen int) string {
	display := strings.ReplaceAll(s, "\n", "\\n")
	display = strings.ReplaceAll(display, "\r", "\\r")
	display = strings.ReplaceAll(display, "\t", "\\t")

	return truncateString(display, maxLen)
}

// truncateString shortens s to maxLen bytes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
