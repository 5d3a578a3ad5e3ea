package seed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

const logPrefix = "seed:loader"

// ErrUnsupportedVersion is returned for seed files outside SupportedVersions.
var ErrUnsupportedVersion = errors.New("unsupported seed file version")

// Load reads the first readable seed file. Explicit paths are tried first, then the
// default locations. The built-in default is returned when no file exists. A file
// that exists but cannot be parsed is an error.
func Load(paths ...string) (*File, error) {
	all := make([]string, 0, len(paths)+4)
	for _, p := range paths {
		if p != "" {
			all = append(all, p)
		}
	}
	all = append(all, "config/seed.yaml", "config/seed.json", "seed.yaml", "seed.json")

	for _, p := range all {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := Parse(data, formatOf(p))
		if err != nil {
			return nil, fmt.Errorf("%s - failed to parse seed file %s: %w", logPrefix, p, err)
		}
		slog.Info(fmt.Sprintf("%s - Loaded seed file %s (version %s)", logPrefix, p, f.Version))
		return f, nil
	}

	slog.Info(fmt.Sprintf("%s - Using default seed", logPrefix))
	return Default(), nil
}

// Format of a seed file.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

func formatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes and checks a seed file.
func Parse(data []byte, format Format) (*File, error) {
	var raw rawFile
	var err error
	if format == FormatJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, err
	}
	if err := CheckVersion(raw.Version); err != nil {
		return nil, err
	}

	f := &File{
		Name:        raw.Name,
		Version:     raw.Version,
		Description: raw.Description,
		Modules:     make(map[string]map[string]string, len(raw.Modules)),
	}
	for module, props := range raw.Modules {
		values := make(map[string]string, len(props))
		for k, v := range props {
			s, err := formatValue(v)
			if err != nil {
				return nil, fmt.Errorf("module %s key %s: %w", module, k, err)
			}
			values[k] = s
		}
		f.Modules[module] = values
	}
	return f, nil
}

func formatValue(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// CheckVersion reports whether version satisfies SupportedVersions.
func CheckVersion(version string) error {
	v, err := masterminds.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, version, err)
	}
	c, err := masterminds.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, version, SupportedVersions)
	}
	return nil
}

// Default returns the built-in seed.
func Default() *File {
	return &File{
		Name:        "olat-gateway-defaults",
		Version:     "1.0.0",
		Description: "Default module settings",
		Modules: map[string]map[string]string{
			"help": {
				"help.enabled": "true",
				"help.plugin":  "ooConfluenceLinkHelp",
			},
			"lecture": {
				"lecture.enabled": "false",
			},
			"onlyoffice": {
				"onlyoffice.enabled": "false",
			},
		},
	}
}

// Merge overlays override onto base. Properties of override win.
func Merge(base, override *File) *File {
	merged := &File{
		Name:        base.Name,
		Version:     base.Version,
		Description: base.Description,
		Modules:     make(map[string]map[string]string, len(base.Modules)+len(override.Modules)),
	}
	for _, src := range []*File{base, override} {
		for module, props := range src.Modules {
			dst, ok := merged.Modules[module]
			if !ok {
				dst = make(map[string]string, len(props))
				merged.Modules[module] = dst
			}
			for k, v := range props {
				dst[k] = v
			}
		}
	}
	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	return merged
}
