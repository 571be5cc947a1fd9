package config

// FilterConfig holds the content filter phrase table. Phrases map to
// their safe replacements; an empty table selects the built-in default.
// TOML only: the table has no environment variable form.
type FilterConfig struct {
	Phrases map[string]string `toml:"phrases"`
}

// Finalize is a no-op: an empty table is valid and selects the default.
func (c *FilterConfig) Finalize() error {
	return nil
}

// Merge replaces the table wholesale when the overlay defines one.
// Phrase tables are curated as a unit; merging entries would leave
// stale replacements behind.
func (c *FilterConfig) Merge(overlay *FilterConfig) {
	if len(overlay.Phrases) > 0 {
		c.Phrases = overlay.Phrases
	}
}
