package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/markdave123-py/DocShare/internal/core"
)

// styleFile is the on-disk layout of STYLES_FILE:
//
//	styles:
//	  - name: short
//	    max_length: 60
//	    min_length: 20
//	  - name: detailed
//	    max_length: 400
//	    min_length: 150
//	    instruction: Cover every section of the document.
type styleFile struct {
	Styles []struct {
		Name        string `yaml:"name"`
		MaxLength   int    `yaml:"max_length"`
		MinLength   int    `yaml:"min_length"`
		Instruction string `yaml:"instruction"`
	} `yaml:"styles"`
}

// LoadStyles reads the style variants from a YAML file.
func LoadStyles(path string) ([]core.Style, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read styles file: %w", err)
	}

	var f styleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse styles file: %w", err)
	}
	if len(f.Styles) == 0 {
		return nil, fmt.Errorf("styles file %s defines no styles", path)
	}

	seen := make(map[string]bool, len(f.Styles))
	styles := make([]core.Style, 0, len(f.Styles))
	for i, s := range f.Styles {
		if s.Name == "" {
			return nil, fmt.Errorf("style #%d has no name", i+1)
		}
		if s.Name == core.KeyPointsStyle {
			return nil, fmt.Errorf("style name %q is reserved", s.Name)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate style %q", s.Name)
		}
		if s.MaxLength <= 0 || s.MinLength < 0 || s.MinLength > s.MaxLength {
			return nil, fmt.Errorf("style %q: invalid length bounds %d..%d", s.Name, s.MinLength, s.MaxLength)
		}
		seen[s.Name] = true
		styles = append(styles, core.Style{
			Name:        s.Name,
			MaxLength:   s.MaxLength,
			MinLength:   s.MinLength,
			Instruction: s.Instruction,
		})
	}
	return styles, nil
}
