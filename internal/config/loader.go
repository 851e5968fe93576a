package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadError reports a problem loading or validating a Skel, carrying the
// source file for diagnostics. Grounded on the teacher's
// manifest.ValidationError (File/Reason/Suggestion), trimmed to what a
// star-config loader needs.
type LoadError struct {
	File   string
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.File, e.Reason)
}

// Load reads and parses a Skel from a YAML file at path, filling any unset
// fields from Defaults().
func Load(path string) (Skel, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Skel{}, &LoadError{File: path, Reason: "config file not found"}
		}
		return Skel{}, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Skel{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	skel := Defaults()
	if err := yaml.Unmarshal(data, &skel); err != nil {
		return Skel{}, &LoadError{File: path, Reason: "invalid YAML: " + err.Error()}
	}

	if err := validate(skel); err != nil {
		return Skel{}, &LoadError{File: path, Reason: err.Error()}
	}
	return skel, nil
}

func validate(s Skel) error {
	if s.Star.Key == "" {
		return fmt.Errorf("star.key must not be empty")
	}
	if s.Star.Listen == "" {
		return fmt.Errorf("star.listen must not be empty")
	}
	if s.Star.MaxHops <= 0 {
		return fmt.Errorf("star.max_hops must be positive")
	}
	return nil
}
