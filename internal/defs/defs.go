// Package defs loads unit definitions from TOML (.ud, .toml) and YAML
// (.yaml, .yml) files. Each file maps category names to tables of units:
//
//	[length]
//	m = { name = "meter", symbol = "m" }
//	cm = { name = "centimeter", symbol = "cm", factor = 0.01 }
//
//	[area]
//	m2 = { name = "square meter", symbol = "m²", derived = "m * m" }
//
// Declaration order is preserved because the first unit of a category is its
// base unit.
package defs

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/unitforge/pkg/types"
)

//go:embed basic.ud
var basicUD string

// Format is the syntax of a definition file.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported definition file format")
	ErrInvalidDefinition = errors.New("invalid unit definition")
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ud", ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Default returns the built-in definitions.
func Default() types.Definitions {
	defs, err := Decode([]byte(basicUD), FormatTOML)
	if err != nil {
		panic(fmt.Sprintf("built-in definitions: %v", err))
	}
	return defs
}

// LoadFile reads one definition file.
func LoadFile(path string) (types.Definitions, error) {
	format, err := FormatOf(path)
	if err != nil {
		return types.Definitions{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Definitions{}, fmt.Errorf("read definitions: %w", err)
	}
	defs, err := Decode(data, format)
	if err != nil {
		return types.Definitions{}, fmt.Errorf("%s: %w", path, err)
	}
	logrus.WithFields(logrus.Fields{
		"path":       path,
		"categories": len(defs.Categories),
		"units":      defs.UnitCount(),
	}).Debug("loaded unit definitions")
	return defs, nil
}

// LoadDir reads every definition file in dir, in lexical file name order,
// and merges them. Files with other extensions are ignored. Errors from
// individual files are collected and returned together.
func LoadDir(dir string) (types.Definitions, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return types.Definitions{}, fmt.Errorf("read definitions dir: %w", err)
	}

	var (
		all    types.Definitions
		result *multierror.Error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, err := FormatOf(path); err != nil {
			logrus.WithField("path", path).Debug("skipping non-definition file")
			continue
		}
		defs, err := LoadFile(path)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		all.Merge(defs)
	}
	if err := result.ErrorOrNil(); err != nil {
		return types.Definitions{}, err
	}
	return all, nil
}

// Load reads path, which may be a single file or a directory of files.
func Load(path string) (types.Definitions, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.Definitions{}, fmt.Errorf("stat definitions: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// Decode parses definitions in the given format.
func Decode(data []byte, format Format) (types.Definitions, error) {
	switch format {
	case FormatTOML:
		return decodeTOML(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return types.Definitions{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func decodeTOML(data []byte) (types.Definitions, error) {
	var raw map[string]map[string]map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return types.Definitions{}, fmt.Errorf("parse toml: %w", err)
	}

	// MetaData.Keys lists keys in document order; the decoded maps do not.
	var (
		categories []string
		units      = make(map[string][]string)
		seen       = make(map[string]bool)
	)
	for _, key := range md.Keys() {
		if len(key) >= 1 && !seen[key[0]] {
			seen[key[0]] = true
			categories = append(categories, key[0])
		}
		if len(key) >= 2 {
			id := key[0] + "\x00" + key[1]
			if !seen[id] {
				seen[id] = true
				units[key[0]] = append(units[key[0]], key[1])
			}
		}
	}

	var defs types.Definitions
	for _, category := range categories {
		defs.Categories = append(defs.Categories, types.Category{Name: category})
		for _, key := range units[category] {
			def, err := unitFromFields(category, key, raw[category][key])
			if err != nil {
				return types.Definitions{}, err
			}
			defs.Add(category, key, def)
		}
	}
	return defs, nil
}

func decodeYAML(data []byte) (types.Definitions, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.Definitions{}, fmt.Errorf("parse yaml: %w", err)
	}
	var defs types.Definitions
	if len(doc.Content) == 0 {
		return defs, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return defs, fmt.Errorf("%w: line %d: expected a mapping of categories", ErrInvalidDefinition, root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		category, body := root.Content[i].Value, root.Content[i+1]
		defs.Categories = append(defs.Categories, types.Category{Name: category})
		if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
			continue
		}
		if body.Kind != yaml.MappingNode {
			return types.Definitions{}, fmt.Errorf("%w: line %d: category %q must be a mapping of units",
				ErrInvalidDefinition, body.Line, category)
		}
		for j := 0; j+1 < len(body.Content); j += 2 {
			key := body.Content[j].Value
			var fields map[string]any
			if err := body.Content[j+1].Decode(&fields); err != nil {
				return types.Definitions{}, fmt.Errorf("%w: line %d: unit %q: %v",
					ErrInvalidDefinition, body.Content[j+1].Line, key, err)
			}
			def, err := unitFromFields(category, key, fields)
			if err != nil {
				return types.Definitions{}, err
			}
			defs.Add(category, key, def)
		}
	}
	return defs, nil
}

// unitFromFields converts a decoded unit table into a definition. Unknown
// fields are rejected; factor may be written as an integer or a float.
func unitFromFields(category, key string, fields map[string]any) (types.UnitDefinition, error) {
	fail := func(format string, args ...any) (types.UnitDefinition, error) {
		return types.UnitDefinition{}, fmt.Errorf("%w: unit %q of category %q: %s",
			ErrInvalidDefinition, key, category, fmt.Sprintf(format, args...))
	}

	def := types.UnitDefinition{Factor: types.DefaultFactor}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := fields[name]
		switch name {
		case "name", "symbol", "derived":
			s, ok := value.(string)
			if !ok {
				return fail("field %q must be a string", name)
			}
			switch name {
			case "name":
				def.Name = s
			case "symbol":
				def.Symbol = s
			case "derived":
				def.Derived = s
			}
		case "factor":
			f, ok := toFloat(value)
			if !ok {
				return fail("field \"factor\" must be a number")
			}
			def.Factor = f
		default:
			return fail("unknown field %q", name)
		}
	}

	if _, ok := fields["name"]; !ok {
		return fail("missing field \"name\"")
	}
	if _, ok := fields["symbol"]; !ok {
		return fail("missing field \"symbol\"")
	}
	return def, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
