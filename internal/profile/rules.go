// Package profile encodes and decodes persisted mapping-profile rules,
// including migration of the legacy unversioned shape.
package profile

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/summitfloors/pricebook/internal/model"
)

// CurrentVersion is the rules schema written by EncodeRules.
const CurrentVersion = 2

// ErrBadShape marks a rules payload that matches no known schema version.
// Callers recover by falling back to an empty mapping; a bad profile must
// never crash an import.
var ErrBadShape = eris.New("profile: rules payload has unknown shape")

// versioned is the v2 wrapper shape. Version 0 in the payload means the
// wrapper predates the version field but already used the mapping key.
type versioned struct {
	Version  int                  `json:"version"`
	Mapping  map[string]int       `json:"mapping"`
	Defaults model.ImportDefaults `json:"defaults"`
}

// DecodeRules parses persisted rules.
//
// Two shapes exist in the wild:
//
//	v2: {"version":2,"mapping":{"productName":1},"defaults":{...}}
//	v1: {"productName":1,"unitCost":5}            (bare mapping, no wrapper)
//
// Shape is detected by the presence of a "mapping" key; a v1 payload is
// migrated by treating the whole object as the column mapping with empty
// defaults.
func DecodeRules(raw []byte) (model.MappingRules, error) {
	if len(raw) == 0 {
		return model.MappingRules{}, eris.Wrap(ErrBadShape, "profile: empty payload")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return model.MappingRules{}, eris.Wrap(ErrBadShape, err.Error())
	}

	if _, ok := probe["mapping"]; ok {
		var v versioned
		if err := json.Unmarshal(raw, &v); err != nil {
			return model.MappingRules{}, eris.Wrap(ErrBadShape, err.Error())
		}
		rules := model.MappingRules{
			Version:  CurrentVersion,
			Mapping:  toMapping(v.Mapping),
			Defaults: v.Defaults,
		}
		if err := rules.Mapping.Validate(); err != nil {
			return model.MappingRules{}, eris.Wrap(ErrBadShape, err.Error())
		}
		return rules, nil
	}

	// Legacy: the whole object is the mapping.
	var bare map[string]int
	if err := json.Unmarshal(raw, &bare); err != nil {
		return model.MappingRules{}, eris.Wrap(ErrBadShape, err.Error())
	}
	rules := model.MappingRules{
		Version: CurrentVersion,
		Mapping: toMapping(bare),
	}
	if err := rules.Mapping.Validate(); err != nil {
		return model.MappingRules{}, eris.Wrap(ErrBadShape, err.Error())
	}
	return rules, nil
}

// EncodeRules serializes rules in the current schema version.
func EncodeRules(rules model.MappingRules) ([]byte, error) {
	out := versioned{
		Version:  CurrentVersion,
		Mapping:  make(map[string]int, len(rules.Mapping)),
		Defaults: rules.Defaults,
	}
	for k, col := range rules.Mapping {
		out.Mapping[string(k)] = col
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, eris.Wrap(err, "profile: encode rules")
	}
	return data, nil
}

func toMapping(m map[string]int) model.ColumnMapping {
	out := make(model.ColumnMapping, len(m))
	for k, col := range m {
		out[model.FieldKey(k)] = col
	}
	return out
}
