// Package profile exports and imports controller mappings as standalone yaml or toml documents.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var log = logger.GetLogger()

var ErrUnsupportedFormat = errors.New("unsupported profile format")

type Format int

const (
	YAML Format = iota
	TOML
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// FormatOf picks the format by file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return 0, fmt.Errorf("%w: \"%s\"", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

type tuningDoc struct {
	Deadzone     *float64 `yaml:"deadzone,omitempty" toml:"deadzone,omitempty"`
	OuterEdge    *float64 `yaml:"outer_edge,omitempty" toml:"outer_edge,omitempty"`
	Range        *int     `yaml:"range,omitempty" toml:"range,omitempty"`
	Clamped      *bool    `yaml:"clamped,omitempty" toml:"clamped,omitempty"`
	A2DThreshold *float64 `yaml:"a2d_threshold,omitempty" toml:"a2d_threshold,omitempty"`
}

type bindingDoc struct {
	Primary   *string `yaml:"primary,omitempty" toml:"primary,omitempty"`
	Secondary *string `yaml:"secondary,omitempty" toml:"secondary,omitempty"`
}

type document struct {
	Name     string                `yaml:"name" toml:"name"`
	Tuning   tuningDoc             `yaml:"tuning" toml:"tuning"`
	Bindings map[string]bindingDoc `yaml:"bindings" toml:"bindings"`
}

func newDocument(name string, p mapping.Profile) document {
	t := p.Tuning
	doc := document{
		Name: name,
		Tuning: tuningDoc{
			Deadzone:     &t.Deadzone,
			OuterEdge:    &t.OuterEdge,
			Range:        &t.Range,
			Clamped:      &t.Clamped,
			A2DThreshold: &t.A2DThreshold,
		},
		Bindings: make(map[string]bindingDoc, mapping.InputCount),
	}
	for _, in := range mapping.Inputs() {
		primary := p.Bindings[in].Primary.String()
		secondary := p.Bindings[in].Secondary.String()
		doc.Bindings[in.Key()] = bindingDoc{Primary: &primary, Secondary: &secondary}
	}
	return doc
}

// profile applies the document over the defaults, absent values keep their default.
func (d document) profile() (mapping.Profile, error) {
	p := mapping.DefaultProfile()

	if d.Tuning.Deadzone != nil {
		p.Tuning.Deadzone = *d.Tuning.Deadzone
	}
	if d.Tuning.OuterEdge != nil {
		p.Tuning.OuterEdge = *d.Tuning.OuterEdge
	}
	if d.Tuning.Range != nil {
		p.Tuning.Range = *d.Tuning.Range
	}
	if d.Tuning.Clamped != nil {
		p.Tuning.Clamped = *d.Tuning.Clamped
	}
	if d.Tuning.A2DThreshold != nil {
		p.Tuning.A2DThreshold = *d.Tuning.A2DThreshold
	}
	p.Tuning = p.Tuning.Normalize()

	for key, b := range d.Bindings {
		in, err := mapping.ParseInput(key)
		if err != nil {
			return mapping.Profile{}, fmt.Errorf("bindings: %w", err)
		}
		for _, pair := range []struct {
			text *string
			dst  *mapping.Source
		}{
			{b.Primary, &p.Bindings[in].Primary},
			{b.Secondary, &p.Bindings[in].Secondary},
		} {
			if pair.text == nil {
				continue
			}
			src, err := mapping.ParseSource(*pair.text)
			if err != nil {
				return mapping.Profile{}, fmt.Errorf("binding \"%s\": %w", key, err)
			}
			*pair.dst = src
		}
	}
	return p, nil
}

func Marshal(format Format, name string, p mapping.Profile) ([]byte, error) {
	doc := newDocument(name, p)
	switch format {
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err := enc.Encode(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml failed: %w", err)
		}
		err = enc.Close()
		if err != nil {
			return nil, fmt.Errorf("encoding yaml failed: %w", err)
		}
		return buf.Bytes(), nil
	case TOML:
		data, err := toml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding toml failed: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Unmarshal decodes a profile document. Unknown fields are rejected.
func Unmarshal(format Format, data []byte) (string, mapping.Profile, error) {
	var doc document

	switch format {
	case YAML:
		d := yaml.NewDecoder(bytes.NewReader(data))
		d.KnownFields(true)
		err := d.Decode(&doc)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", mapping.Profile{}, fmt.Errorf("parsing yaml failed: %w", err)
		}
	case TOML:
		d := toml.NewDecoder(bytes.NewReader(data))
		d.DisallowUnknownFields()
		err := d.Decode(&doc)
		if err != nil {
			return "", mapping.Profile{}, fmt.Errorf("parsing toml failed: %w", err)
		}
	default:
		return "", mapping.Profile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	p, err := doc.profile()
	if err != nil {
		return "", mapping.Profile{}, err
	}
	return doc.Name, p, nil
}

// Export writes the profile to path, the format follows the extension.
func Export(path, name string, p mapping.Profile) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Marshal(format, name, p)
	if err != nil {
		return err
	}
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("cannot write profile: %w", err)
	}
	return nil
}

// Import reads a profile file. Without a name inside, the file name is used.
func Import(path string) (string, mapping.Profile, error) {
	format, err := FormatOf(path)
	if err != nil {
		return "", mapping.Profile{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", mapping.Profile{}, fmt.Errorf("cannot read profile: %w", err)
	}
	name, p, err := Unmarshal(format, data)
	if err != nil {
		return "", mapping.Profile{}, fmt.Errorf("\"%s\": %w", filepath.Base(path), err)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return name, p, nil
}
