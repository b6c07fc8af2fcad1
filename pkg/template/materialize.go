package template

import (
	"fmt"

	"github.com/minimact/client-go/pkg/vdom"
)

// MaterializePatch converts a template-variant patch into one or more
// concrete patches the patch engine can apply. Non-template patches pass
// through unchanged.
func MaterializePatch(patch vdom.Patch, stateValues map[string]any) ([]vdom.Patch, error) {
	switch patch.Op {
	case vdom.OpUpdateTextTemplate:
		content, err := RenderTemplatePatch(patch.TextTemplate, stateValues)
		if err != nil {
			return nil, err
		}
		return []vdom.Patch{vdom.NewUpdateText(patch.Path, content)}, nil

	case vdom.OpUpdatePropsTemplate:
		content, err := RenderTemplatePatch(patch.PropTemplate, stateValues)
		if err != nil {
			return nil, err
		}
		return []vdom.Patch{vdom.NewUpdateProps(patch.Path, vdom.Props{patch.PropName: content})}, nil

	case vdom.OpUpdateListTemplate:
		return RenderLoopTemplate(patch.Path, patch.ListTemplate, stateValues)

	default:
		return []vdom.Patch{patch}, nil
	}
}

// MaterializeAll materializes a batch of patches in order, collecting the
// concrete result. A failure on one patch does not prevent materialization
// of the rest, matching the patch engine's own continue-on-failure
// behavior.
func MaterializeAll(patches []vdom.Patch, stateValues map[string]any) ([]vdom.Patch, []error) {
	var out []vdom.Patch
	var errs []error
	for _, p := range patches {
		materialized, err := MaterializePatch(p, stateValues)
		if err != nil {
			errs = append(errs, fmt.Errorf("template: materialize %s at %v: %w", p.Op, p.Path, err))
			continue
		}
		out = append(out, materialized...)
	}
	return out, errs
}
