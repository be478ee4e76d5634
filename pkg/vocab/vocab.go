// Package vocab holds the NCBI controlled vocabularies for constrained SRA
// fields and the coercion rule applied to cells of those fields.
package vocab

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/omicslab/sra-engine/pkg/normalize"
)

//go:embed vocabularies.yaml
var vocabularyYAML []byte

// Set is one controlled vocabulary. Membership is case-sensitive: the SRA
// portal distinguishes WGS from wgs.
type Set []string

// Contains reports whether v is a member of the set.
func (s Set) Contains(v string) bool {
	for _, opt := range s {
		if opt == v {
			return true
		}
	}
	return false
}

// Outcome classifies what Coerce did with a cell.
type Outcome string

const (
	// OutcomeAccepted means the value is a set member, possibly after
	// synonym folding.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeReplaced means the value was not a member and the field's
	// default was substituted.
	OutcomeReplaced Outcome = "replaced"
	// OutcomeRejected means the value was not a member and no default was
	// available, so it was kept as-is.
	OutcomeRejected Outcome = "rejected"
)

var sets = loadSets()

func loadSets() map[string]Set {
	var raw map[string][]string
	if err := yaml.Unmarshal(vocabularyYAML, &raw); err != nil {
		panic(fmt.Sprintf("vocab: parsing embedded vocabularies: %v", err))
	}
	out := make(map[string]Set, len(raw))
	for field, options := range raw {
		out[field] = Set(options)
	}
	return out
}

// Lookup returns the vocabulary for a field name.
func Lookup(field string) (Set, bool) {
	s, ok := sets[field]
	return s, ok
}

// Fields returns the constrained field names in sorted order.
func Fields() []string {
	out := make([]string, 0, len(sets))
	for field := range sets {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Coerce validates value against the field's vocabulary. library_layout
// synonyms (pair, pe, se) fold to canonical members before the membership
// check. Non-members are substituted with def when one is configured;
// fields without a vocabulary accept anything.
func Coerce(field, value, def string) (string, Outcome) {
	set, ok := sets[field]
	if !ok {
		return value, OutcomeAccepted
	}

	v := value
	if field == "library_layout" {
		v = normalize.LibraryLayout(v)
	}
	if set.Contains(v) {
		return v, OutcomeAccepted
	}
	if def == "" {
		return value, OutcomeRejected
	}
	return def, OutcomeReplaced
}
