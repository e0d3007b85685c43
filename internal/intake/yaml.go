package intake

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFromYAML reads a pre-filled record from disk. Vitals present in the
// file are validated; a file may omit them entirely.
func LoadFromYAML(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading intake file: %w", err)
	}

	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing intake file: %w", err)
	}

	if r.Gender != "" {
		g, err := ParseGender(string(r.Gender))
		if err != nil {
			return nil, err
		}
		r.Gender = g
		if err := ValidateVitals(r.Gender, r.Age, r.HeightCm, r.WeightKg); err != nil {
			return nil, fmt.Errorf("invalid vitals in %s: %w", path, err)
		}
	}

	return &r, nil
}

// SaveToYAML writes the record to disk.
func SaveToYAML(r *Record, path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding intake: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing intake file: %w", err)
	}
	return nil
}
