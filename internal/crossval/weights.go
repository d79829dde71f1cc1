package crossval

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/exec-enrich/internal/model"
)

// Weights ranks source types and maps source ids onto them.
type Weights struct {
	Types       map[model.SourceType]float64 `yaml:"weights"`
	SourceTypes map[string]model.SourceType  `yaml:"source_types"`
}

// DefaultWeights returns the built-in source type ranking.
func DefaultWeights() Weights {
	return Weights{
		Types: map[model.SourceType]float64{
			model.SourceTypeOfficialRegistry:    1.0,
			model.SourceTypeCompanyWebsite:      0.9,
			model.SourceTypeProfessionalNetwork: 0.8,
			model.SourceTypeThirdPartyDirectory: 0.6,
			model.SourceTypeSocialMedia:         0.5,
			model.SourceTypeGenericWeb:          0.3,
		},
		SourceTypes: map[string]model.SourceType{
			"companies_house": model.SourceTypeOfficialRegistry,
			"website":         model.SourceTypeCompanyWebsite,
			"linkedin_search": model.SourceTypeProfessionalNetwork,
			"email_finder":    model.SourceTypeThirdPartyDirectory,
			"search_engine":   model.SourceTypeGenericWeb,
		},
	}
}

// FromMaps builds Weights from config maps, layered over the defaults.
func FromMaps(types map[string]float64, sourceTypes map[string]string) Weights {
	w := DefaultWeights()
	for k, v := range types {
		w.Types[model.SourceType(k)] = v
	}
	for k, v := range sourceTypes {
		w.SourceTypes[k] = model.SourceType(v)
	}
	return w
}

// LoadWeights reads a weights file and layers it over the defaults.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, eris.Wrapf(err, "crossval: read weights %s", path)
	}

	var file Weights
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Weights{}, eris.Wrap(err, "crossval: parse weights")
	}

	w := DefaultWeights()
	for k, v := range file.Types {
		if v < 0 {
			return Weights{}, eris.Errorf("crossval: negative weight for %s", k)
		}
		w.Types[k] = v
	}
	for k, v := range file.SourceTypes {
		w.SourceTypes[k] = v
	}
	return w, nil
}

// TypeOf returns the source type for a source id; unknown ids are generic web.
func (w Weights) TypeOf(sourceID string) model.SourceType {
	if t, ok := w.SourceTypes[sourceID]; ok {
		return t
	}
	return model.SourceTypeGenericWeb
}

// Of returns the weight for a source id.
func (w Weights) Of(sourceID string) float64 {
	return w.Types[w.TypeOf(sourceID)]
}
