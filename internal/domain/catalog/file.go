package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/ecopoints/internal/domain/model"
)

// fileCatalog is the on-disk catalog shape shared by the YAML and TOML loaders.
type fileCatalog struct {
	DetectorLabels []string       `koanf:"detector_labels" toml:"detector_labels"`
	Activities     []fileActivity `koanf:"activities" toml:"activities"`
}

type fileActivity struct {
	Key         string   `koanf:"key" toml:"key"`
	Points      int      `koanf:"points" toml:"points"`
	Description string   `koanf:"description" toml:"description"`
	Icon        string   `koanf:"icon" toml:"icon"`
	Components  []string `koanf:"components" toml:"components"`
}

// LoadFile reads a catalog from a .yaml/.yml or .toml file.
//
//	detector_labels: [person]
//	activities:
//	  - {key: bicycle, points: 5, description: Eco-friendly transportation, icon: "🚲"}
//	  - {key: person and bicycle, points: 12, components: [person, bicycle]}
func LoadFile(path string) (*Catalog, error) {
	var fc fileCatalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		if err := k.UnmarshalWithConf("", &fc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, configErr("", "decode %s: %v", path, err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, configErr("", "decode %s: %v", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return fc.build()
}

// build normalizes keys, components and detector labels the same way
// incoming labels are normalized, so hand-written files match API input.
func (fc fileCatalog) build() (*Catalog, error) {
	if len(fc.Activities) == 0 {
		return nil, configErr("", "catalog has no activities")
	}
	defs := make([]ActivityDefinition, 0, len(fc.Activities))
	for _, a := range fc.Activities {
		var comps []string
		for _, comp := range a.Components {
			comps = append(comps, model.NormalizeLabel(comp))
		}
		defs = append(defs, ActivityDefinition{
			Key:         model.NormalizeLabel(a.Key),
			Points:      a.Points,
			Description: a.Description,
			Icon:        a.Icon,
			Components:  comps,
		})
	}
	return NewWithOptions([]Option{WithDetectorLabels(model.NormalizeLabels(fc.DetectorLabels)...)}, defs...)
}
