package season

// Season is one league year. CurrentWeek is the league clock; it is advanced
// from the scoring provider's state and falls back to the stored value when
// the provider is unreachable.
type Season struct {
	ID          int64
	Year        int
	CurrentWeek int
	Active      bool
}
