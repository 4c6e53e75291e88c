package records

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML sequence of question mappings from path.
//
// Entries without a question get UnknownQuestion instead of being dropped.
// A missing or unparseable file yields an empty, non-nil slice together with
// the error, so callers can report the problem and carry on with no work.
func Load(path string) ([]InputRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return []InputRecord{}, fmt.Errorf("records: open %s: %w", path, err)
	}

	var entries []any
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return []InputRecord{}, fmt.Errorf("records: parse %s: %w", path, err)
	}

	recs := make([]InputRecord, 0, len(entries))
	for i, entry := range entries {
		rec, err := decodeInput(entry)
		if err != nil {
			return []InputRecord{}, fmt.Errorf("records: parse %s: entry %d: %w", path, i+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func decodeInput(entry any) (InputRecord, error) {
	fields, ok := entry.(map[string]any)
	if !ok {
		return InputRecord{Question: UnknownQuestion}, nil
	}

	var rec InputRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return InputRecord{}, err
	}
	if err := dec.Decode(fields); err != nil {
		return InputRecord{}, err
	}

	if q, ok := fields["question"]; !ok || q == nil {
		rec.Question = UnknownQuestion
	}
	return rec, nil
}
