package registry

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	goversion "github.com/hashicorp/go-version"

	"github.com/botcanvas/blockcore/internal/block"
)

// validate runs the full structural check on a definition. Every problem is
// reported at once so an author fixes a bad file in one round trip.
func validate(def block.Definition) error {
	var result *multierror.Error

	if def.ID == "" {
		result = multierror.Append(result, fmt.Errorf("id is empty"))
	}
	if def.Type == "" {
		result = multierror.Append(result, fmt.Errorf("type is empty"))
	}
	if def.DisplayName == "" {
		result = multierror.Append(result, fmt.Errorf("display name is empty"))
	}
	if def.Color == "" {
		result = multierror.Append(result, fmt.Errorf("color is empty"))
	}
	if !def.Category.Valid() {
		result = multierror.Append(result, fmt.Errorf("category %q is not a palette category", def.Category))
	}

	if len(def.Contexts) == 0 {
		result = multierror.Append(result, fmt.Errorf("no canvas contexts declared"))
	}
	for _, c := range def.Contexts {
		if !c.Valid() {
			result = multierror.Append(result, fmt.Errorf("unknown canvas context %q", c))
		}
	}

	if def.Version != "" {
		if _, err := goversion.NewVersion(def.Version); err != nil {
			result = multierror.Append(result, fmt.Errorf("version %q does not parse: %w", def.Version, err))
		}
	}

	for i, f := range def.Fields {
		if f.Name == "" {
			result = multierror.Append(result, fmt.Errorf("field %d has no name", i))
		}
		if !f.Kind.Valid() {
			result = multierror.Append(result, fmt.Errorf("field %q has unknown kind %q", f.Name, f.Kind))
		}
		if f.Kind == block.FieldSelect && len(f.Options) == 0 {
			result = multierror.Append(result, fmt.Errorf("select field %q has no options", f.Name))
		}
	}

	return result.ErrorOrNil()
}

// metadataWarnings collects non-fatal gaps. These never block registration
// but show up in WarningsFor and the registry statistics.
func metadataWarnings(def block.Definition) []string {
	var warnings []string
	if def.Description == "" {
		warnings = append(warnings, "no description")
	}
	if len(def.Tags) == 0 {
		warnings = append(warnings, "no search tags")
	}
	if len(def.UsageHints) == 0 {
		warnings = append(warnings, "no usage hints")
	}
	return warnings
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
