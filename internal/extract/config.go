// Package extract parses one file's raw text (plus
// a small config record) into typed entities and outgoing references. Each
// extractor function is independent and order-agnostic; internal/document
// assembles their output into one document model.
package extract

// Config mirrors the configuration keys that affect extraction.
type Config struct {
	TagsInCodeblocks       bool
	ReferencesInCodeblocks bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		TagsInCodeblocks:       false,
		ReferencesInCodeblocks: false,
	}
}
