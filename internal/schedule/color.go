package schedule

// palette matches the calendar UI; repeated titles map to the same
// swatch so the grid stays visually stable across sessions.
var palette = []string{"#9248FE", "#F8DA36", "#F45856"}

// ColorForTitle derives a deterministic palette color from a title by
// summing its bytes. Empty titles get the first palette entry.
func ColorForTitle(title string) string {
	if title == "" {
		return palette[0]
	}
	sum := 0
	for _, b := range []byte(title) {
		sum += int(b)
	}
	return palette[sum%len(palette)]
}
