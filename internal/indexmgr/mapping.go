package indexmgr

import (
	"github.com/cheminee/search-engine/internal/schema"
	"github.com/cheminee/search-engine/pkg/errors"
	"github.com/cheminee/search-engine/pkg/types/common"
)

// BuildMapping translates a registered schema name into the inverted-index
// engine's create-index body. descriptor_v1 gets one mapped field per
// schema.KnownDescriptors entry (double for continuous descriptors, long for
// Num*/lipinski* ones) plus smiles/fingerprint/extra_data; scaffold gets a
// flat smiles/id pair.
func BuildMapping(schemaName string) (common.IndexMapping, error) {
	switch schemaName {
	case schema.DescriptorV1:
		return descriptorV1Mapping(), nil
	case schema.Scaffold:
		return scaffoldMapping(), nil
	default:
		return common.IndexMapping{}, errors.SchemaUnknown(schemaName)
	}
}

func descriptorV1Mapping() common.IndexMapping {
	properties := map[string]interface{}{
		"smiles":      map[string]interface{}{"type": "keyword"},
		"fingerprint": map[string]interface{}{"type": "binary"},
		"extra_data":  map[string]interface{}{"type": "object", "enabled": true},
	}
	for _, name := range schema.KnownDescriptors {
		if schema.IsIntegerDescriptor(name) {
			properties[name] = map[string]interface{}{"type": "long"}
		} else {
			properties[name] = map[string]interface{}{"type": "double"}
		}
	}
	return common.IndexMapping{
		Settings: map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		Mappings: map[string]interface{}{
			"properties": properties,
		},
	}
}

func scaffoldMapping() common.IndexMapping {
	return common.IndexMapping{
		Settings: map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		Mappings: map[string]interface{}{
			"properties": map[string]interface{}{
				"smiles": map[string]interface{}{"type": "keyword"},
				"id":     map[string]interface{}{"type": "long"},
			},
		},
	}
}
