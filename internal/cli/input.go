package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/nichescope/internal/model"
)

// decodeFile decodes a JSON or YAML file into v, chosen by extension
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported file type %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
	return nil
}

// observationsFile accepts either a bare list or an object with an observations key
type observationsFile struct {
	Observations []model.Observation `json:"observations" yaml:"observations"`
}

// readObservations loads and validates observations from path
func readObservations(path string) ([]model.Observation, error) {
	var wrapped observationsFile
	err := decodeFile(path, &wrapped)
	observations := wrapped.Observations
	if err != nil {
		var list []model.Observation
		if listErr := decodeFile(path, &list); listErr != nil {
			return nil, err
		}
		observations = list
	}

	if err := model.ValidateObservations(observations); err != nil {
		return nil, err
	}
	return observations, nil
}
