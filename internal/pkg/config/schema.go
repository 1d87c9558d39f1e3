package config

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"github.com/go-ini/ini"
)

// field is one persisted key of a controller section.
// read parses the key into the profile and reports whether the stored text needs rewriting,
// on error the profile keeps its previous value for that key.
type field struct {
	key   string
	read  func(k *ini.Key, p *mapping.Profile) (fixed bool, err error)
	write func(p mapping.Profile) string
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func fractionField(key string, ref func(t *mapping.Tuning) *float64) field {
	return field{
		key: key,
		read: func(k *ini.Key, p *mapping.Profile) (bool, error) {
			v, err := k.Float64()
			if err != nil {
				return false, err
			}
			if math.IsNaN(v) {
				return false, fmt.Errorf("%s is not a number", k.String())
			}
			fixed := false
			switch {
			case v < 0:
				v, fixed = 0, true
			case v > 1:
				v, fixed = 1, true
			}
			*ref(&p.Tuning) = v
			return fixed, nil
		},
		write: func(p mapping.Profile) string {
			return formatFloat(*ref(&p.Tuning))
		},
	}
}

var rangeField = field{
	key: "range",
	read: func(k *ini.Key, p *mapping.Profile) (bool, error) {
		v, err := k.Int()
		if err != nil {
			return false, err
		}
		fixed := false
		switch {
		case v < 0:
			v, fixed = 0, true
		case v > mapping.MaxRange:
			v, fixed = mapping.MaxRange, true
		}
		p.Tuning.Range = v
		return fixed, nil
	},
	write: func(p mapping.Profile) string {
		return strconv.Itoa(p.Tuning.Range)
	},
}

var clampedField = field{
	key: "is_clamped",
	read: func(k *ini.Key, p *mapping.Profile) (bool, error) {
		v, err := k.Int()
		if err != nil {
			b, berr := k.Bool()
			if berr != nil {
				return false, err
			}
			p.Tuning.Clamped = b
			return true, nil
		}
		p.Tuning.Clamped = v != 0
		return v != 0 && v != 1, nil
	},
	write: func(p mapping.Profile) string {
		if p.Tuning.Clamped {
			return "1"
		}
		return "0"
	},
}

func sourceField(in mapping.Input, secondary bool) field {
	suffix := "_primary"
	if secondary {
		suffix = "_secondary"
	}
	ref := func(p *mapping.Profile) *mapping.Source {
		if secondary {
			return &p.Bindings[in].Secondary
		}
		return &p.Bindings[in].Primary
	}

	return field{
		key: in.Key() + suffix,
		read: func(k *ini.Key, p *mapping.Profile) (bool, error) {
			v, err := k.Int()
			if err != nil {
				return false, err
			}
			if v < math.MinInt16 || v > math.MaxInt16 {
				return false, fmt.Errorf("%d does not fit a source", v)
			}
			s, err := mapping.DecodeSource(int16(v))
			if err != nil {
				return false, err
			}
			*ref(p) = s
			return false, nil
		},
		write: func(p mapping.Profile) string {
			return strconv.Itoa(int(ref(&p).Encode()))
		},
	}
}

// schema lists every key of a controller section in file order.
var schema = buildSchema()

func buildSchema() []field {
	fields := []field{
		fractionField("deadzone", func(t *mapping.Tuning) *float64 { return &t.Deadzone }),
		fractionField("outer_edge", func(t *mapping.Tuning) *float64 { return &t.OuterEdge }),
		rangeField,
		clampedField,
		fractionField("a2d_threshold", func(t *mapping.Tuning) *float64 { return &t.A2DThreshold }),
	}
	for _, in := range mapping.Inputs() {
		fields = append(fields, sourceField(in, false), sourceField(in, true))
	}
	return fields
}

// Keys returns the names of all keys of a controller section.
func Keys() []string {
	keys := make([]string, 0, len(schema))
	for _, f := range schema {
		keys = append(keys, f.key)
	}
	return keys
}
