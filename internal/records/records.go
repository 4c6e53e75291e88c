// Package records reads question files and writes answer files.
//
// Question files are plain YAML sequences of mappings. Answer files use a
// line-oriented block layout (see Encode) so that multi-paragraph answers stay
// readable and survive repeated load/save cycles unchanged.
package records

// UnknownQuestion stands in for entries that carry no question text.
const UnknownQuestion = "Unknown Question"

// InputRecord is a single entry read from a questions file.
type InputRecord struct {
	Question string `mapstructure:"question"`
	// Model overrides the run's default model when non-empty.
	Model string `mapstructure:"model"`
}

// OutputRecord is a single question/answer pair written to an answers file.
type OutputRecord struct {
	Question string
	Answer   string
	// Flagged marks records whose completion was refused with HTTP 403.
	Flagged bool
}

// FileStore persists answers to a fixed path.
type FileStore struct {
	Path string
}

// Save overwrites the store's file with recs.
func (s FileStore) Save(recs []OutputRecord) error {
	return Save(recs, s.Path)
}
