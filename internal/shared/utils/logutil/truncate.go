package logutil

// Truncate keeps the first maxLen runes of s for logging and marks the cut with "...".
// Signatures and token ids are logged through it so only a prefix is visible.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
