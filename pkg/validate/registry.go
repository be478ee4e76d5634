package validate

import (
	"strings"

	"github.com/omicslab/sra-engine/pkg/config"
	"github.com/omicslab/sra-engine/pkg/models"
	"github.com/omicslab/sra-engine/pkg/normalize"
	"github.com/omicslab/sra-engine/pkg/vocab"
)

// FieldSpec describes how the validator treats one column: the configured
// default (empty when none), whether a controlled vocabulary constrains it,
// and the normalizer applied to its cells (nil when none).
type FieldSpec struct {
	Column    string
	Default   string
	HasVocab  bool
	Normalize func(string) string
}

// Registry resolves per-column behavior from the run configuration and the
// built-in controlled vocabularies. It is immutable once built.
type Registry struct {
	defaults map[string]string
}

// NewRegistry builds a registry from the run configuration.
func NewRegistry(cfg *config.Config) *Registry {
	defaults := map[string]string{}
	if cfg != nil {
		for col, val := range cfg.DefaultValues {
			defaults[col] = val
		}
	}
	return &Registry{defaults: defaults}
}

// Spec returns the validation behavior for the named column.
func (r *Registry) Spec(column string) FieldSpec {
	_, hasVocab := vocab.Lookup(column)
	return FieldSpec{
		Column:    column,
		Default:   r.defaults[column],
		HasVocab:  hasVocab,
		Normalize: normalizerFor(column),
	}
}

// Default returns the configured default value for a column.
func (r *Registry) Default(column string) (string, bool) {
	v, ok := r.defaults[column]
	return v, ok
}

func normalizerFor(column string) func(string) string {
	switch column {
	case "geo_loc_name":
		return normalize.GeoLocName
	case "lat_lon":
		return normalize.LatLon
	case "sample_source":
		return normalize.SampleSource
	}
	if strings.HasSuffix(column, "_date") {
		return normalize.Date
	}
	return nil
}

// requiredColumns lists the columns SRA submission portals expect per table
// role. Missing columns are created during validation, not rejected.
var requiredColumns = map[models.TableRole][]string{
	models.RoleSample: {
		models.KeyColumn, "library_ID", "title", "library_strategy",
		"library_source", "library_selection", "library_layout",
		"platform", "instrument_model", "design_description",
		"filetype", "filename",
	},
	models.RoleProject: {
		models.KeyColumn, "organism", "bioproject_id", "project_title",
		"project_description", "sample_source", "collection_date",
		"geo_loc_name", "lat_lon", "library_strategy", "library_source",
		"library_selection", "platform", "instrument_model",
		"env_biome", "env_feature", "env_material",
	},
}

// RequiredColumns returns the required column list for a table role.
func RequiredColumns(role models.TableRole) []string {
	return append([]string(nil), requiredColumns[role]...)
}
