// Package schema defines the stable per-index document shape: the ordered
// descriptor set, the two registered schema names (descriptor_v1 and
// scaffold), and the codec that turns a prepared molecule into the
// document the index manager's backing engine stores.
package schema

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"

	"github.com/cheminee/search-engine/pkg/errors"
)

// DescriptorV1 and Scaffold are the two schema names this module registers.
const (
	DescriptorV1 = "descriptor_v1"
	Scaffold     = "scaffold"
)

// KnownDescriptors is the fixed, ordered set of numeric descriptor field
// names every descriptor_v1 document carries. Integer-typed fields are
// those whose name begins with "Num" or "lipinski"; every other field is
// floating-point.
var KnownDescriptors = []string{
	"exactmw", "amw", "lipinskiHBA", "lipinskiHBD", "NumHBD", "NumHBA",
	"NumRotatableBonds", "NumHeavyAtoms", "NumAtoms", "NumHeteroatoms",
	"NumAmideBonds", "NumRings", "NumAromaticRings", "NumAliphaticRings",
	"NumSaturatedRings", "NumAromaticHeterocycles", "NumAromaticCarbocycles",
	"NumAliphaticHeterocycles", "NumAliphaticCarbocycles",
	"NumSaturatedHeterocycles", "NumSaturatedCarbocycles",
	"NumHeterocycles", "NumSpiroAtoms", "NumBridgeheadAtoms",
	"NumAtomStereoCenters", "NumUnspecifiedAtomStereoCenters",
	"NumAromaticAtoms", "NumAliphaticAtoms", "NumSulfurAtoms",
	"NumNitrogenAtoms", "NumOxygenAtoms", "NumHalogenAtoms",
	"lipinskiLogP", "CrippenClogP", "tpsa", "labuteASA", "FractionCSP3",
	"chi0v", "chi1v", "kappa1", "kappa2", "phi", "qed", "NumRadicalElectrons",
}

// structureMatchDescriptors is the subset of KnownDescriptors relevant to
// containment bounds in the substructure/superstructure query builders:
// every Num* ring/atom count plus exactmw and lipinskiHBA.
var structureMatchDescriptors = buildStructureMatchDescriptors()

func buildStructureMatchDescriptors() []string {
	var out []string
	for _, name := range KnownDescriptors {
		if strings.HasPrefix(name, "Num") {
			out = append(out, name)
		}
	}
	out = append(out, "exactmw", "lipinskiHBA")
	sort.Strings(out)
	return out
}

// StructureMatchDescriptors returns the descriptor subset used to bound
// identity/substructure/superstructure candidate queries.
func StructureMatchDescriptors() []string {
	out := make([]string, len(structureMatchDescriptors))
	copy(out, structureMatchDescriptors)
	return out
}

// IsIntegerDescriptor reports whether name is integer-typed by the naming
// convention ("Num*" or "lipinski*" prefix).
func IsIntegerDescriptor(name string) bool {
	return strings.HasPrefix(name, "Num") || strings.HasPrefix(name, "lipinski")
}

// IsKnownDescriptor reports whether name is a registered descriptor field.
func IsKnownDescriptor(name string) bool {
	for _, d := range KnownDescriptors {
		if d == name {
			return true
		}
	}
	return false
}

// Document is one indexed molecule. ExtraData always carries a "scaffolds"
// key ([]int, or [-1] when empty) plus whatever user-supplied keys were
// merged in at write time.
type Document struct {
	SMILES      string                 `json:"smiles"`
	Fingerprint []byte                 `json:"fingerprint"`
	Descriptors map[string]float64     `json:"-"`
	ExtraData   map[string]interface{} `json:"extra_data"`
}

// ScaffoldRecord is the auxiliary on-disk scaffold listing document.
type ScaffoldRecord struct {
	SMILES string `json:"smiles"`
	ID     uint64 `json:"id"`
}

// NoScaffoldSentinel is persisted in extra_data.scaffolds when a molecule
// matches no registered reference scaffold.
const NoScaffoldSentinel = -1

// EncodeDocument builds a Document from a prepared molecule's canonical
// SMILES, fingerprint bytes, a name→float64 descriptor mapping, scaffold
// ids, and caller-supplied extra data. User extra-data keys are preserved;
// "scaffolds" is reserved and always overwritten by scaffoldIDs.
func EncodeDocument(smiles string, fingerprint []byte, descriptors map[string]float64, scaffoldIDs []int, extra map[string]interface{}) (Document, error) {
	if smiles == "" {
		return Document{}, errors.FieldMissing("smiles")
	}
	if fingerprint == nil {
		return Document{}, errors.FieldMissing("fingerprint")
	}

	merged := make(map[string]interface{}, len(extra)+1)
	for k, v := range extra {
		if k == "scaffolds" {
			continue
		}
		merged[k] = v
	}
	if len(scaffoldIDs) == 0 {
		merged["scaffolds"] = []int{NoScaffoldSentinel}
	} else {
		ids := make([]int, len(scaffoldIDs))
		copy(ids, scaffoldIDs)
		sort.Ints(ids)
		merged["scaffolds"] = ids
	}

	return Document{
		SMILES:      smiles,
		Fingerprint: fingerprint,
		Descriptors: truncateIntegerDescriptors(descriptors),
		ExtraData:   merged,
	}, nil
}

// truncateIntegerDescriptors casts every integer-typed descriptor
// (KnownDescriptors entries whose name begins with Num/lipinski) by
// truncation toward zero, matching the codec's documented integer cast
// rule; floating-point fields pass through unchanged.
func truncateIntegerDescriptors(descriptors map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(descriptors))
	for name, v := range descriptors {
		if IsIntegerDescriptor(name) {
			out[name] = float64(int64(v))
		} else {
			out[name] = v
		}
	}
	return out
}

// ToIndexDocument flattens a Document into the plain field map the index
// manager's backing engine stores: descriptors and extra_data sit alongside
// smiles/fingerprint at the top level, matching the one-field-per-descriptor
// mapping BuildMapping registers for descriptor_v1. Fingerprint bytes are
// base64-encoded, matching the "binary" field type in that mapping.
func ToIndexDocument(doc Document) map[string]interface{} {
	out := make(map[string]interface{}, len(doc.Descriptors)+3)
	out["smiles"] = doc.SMILES
	out["fingerprint"] = base64.StdEncoding.EncodeToString(doc.Fingerprint)
	out["extra_data"] = doc.ExtraData
	for name, v := range doc.Descriptors {
		out[name] = v
	}
	return out
}

// indexSource mirrors the subset of a stored document this codec can
// reconstruct a Document from: the raw JSON source an index search hit
// carries in its _source field.
type indexSource struct {
	SMILES      string                 `json:"smiles"`
	Fingerprint string                 `json:"fingerprint"`
	ExtraData   map[string]interface{} `json:"extra_data"`
}

// FromIndexSource decodes a stored document's raw _source back into a
// Document, recovering the base64-encoded fingerprint. Descriptors are not
// reconstructed since the verification loop and aggregation never need them
// back out of the index — only smiles, fingerprint, and extra_data do.
func FromIndexSource(raw json.RawMessage) (Document, error) {
	var src indexSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return Document{}, errors.Wrap(err, errors.CodeStorage, "schema: failed to decode index source")
	}
	fp, err := base64.StdEncoding.DecodeString(src.Fingerprint)
	if err != nil {
		return Document{}, errors.Wrap(err, errors.CodeStorage, "schema: failed to decode fingerprint")
	}
	return Document{
		SMILES:      src.SMILES,
		Fingerprint: fp,
		ExtraData:   src.ExtraData,
	}, nil
}

// Definition describes a registered schema: its name and field list, used
// by the index manager to validate a create() call's requested schema and
// by /schemas to list what is available.
type Definition struct {
	Name   string
	Fields []string
}

var registry = map[string]Definition{
	DescriptorV1: {
		Name:   DescriptorV1,
		Fields: append([]string{"smiles", "fingerprint", "extra_data"}, KnownDescriptors...),
	},
	Scaffold: {
		Name:   Scaffold,
		Fields: []string{"smiles", "id"},
	},
}

// Get returns the named schema definition.
func Get(name string) (Definition, bool) {
	def, ok := registry[name]
	return def, ok
}

// List returns every registered schema name, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
