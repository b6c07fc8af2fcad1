package template

import (
	"fmt"

	"github.com/minimact/client-go/pkg/vdom"
)

// RenderLoopTemplate materializes a LoopTemplate over its bound array
// state into one Create patch per item: paths are [...parent, index].
func RenderLoopTemplate(parent vdom.Path, lt *vdom.LoopTemplate, stateValues map[string]any) ([]vdom.Patch, error) {
	raw, ok := stateValues[lt.ArrayBinding]
	if !ok {
		return nil, fmt.Errorf("template: loop array binding %q not found in state", lt.ArrayBinding)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("template: loop array binding %q is not an array", lt.ArrayBinding)
	}

	patches := make([]vdom.Patch, 0, len(items))
	for index, item := range items {
		itemState := mergeItemState(stateValues, lt, item, index)
		node, err := renderItemTemplate(lt.Item, itemState, lt.KeyBinding)
		if err != nil {
			return nil, fmt.Errorf("template: loop item %d: %w", index, err)
		}
		patches = append(patches, vdom.NewCreate(parent.Child(index), node))
	}
	return patches, nil
}

// mergeItemState builds the per-item binding scope: the outer state plus
// "item", "index", the optional custom index variable name, and the
// item's own properties flattened under "item.<prop>" keys.
func mergeItemState(outer map[string]any, lt *vdom.LoopTemplate, item any, index int) map[string]any {
	merged := make(map[string]any, len(outer)+4)
	for k, v := range outer {
		merged[k] = v
	}
	merged["item"] = item
	merged["index"] = index
	if lt.IndexVar != "" {
		merged[lt.IndexVar] = index
	}
	if obj, ok := item.(map[string]any); ok {
		for k, v := range obj {
			merged["item."+k] = v
		}
	}
	return merged
}

func renderItemTemplate(it vdom.ItemTemplate, stateValues map[string]any, keyBindingFallback string) (*vdom.VNode, error) {
	switch it.Kind {
	case vdom.ItemText:
		content, err := RenderTemplatePatch(it.TemplatePatch, stateValues)
		if err != nil {
			return nil, err
		}
		return vdom.Text(content), nil

	case vdom.ItemElement:
		props := make(vdom.Props, len(it.PropsTemplates))
		for name, tp := range it.PropsTemplates {
			val, err := RenderTemplatePatch(tp, stateValues)
			if err != nil {
				return nil, err
			}
			props[name] = val
		}

		children := make([]*vdom.VNode, 0, len(it.ChildrenTemplate))
		for _, childTpl := range it.ChildrenTemplate {
			child, err := renderItemTemplate(childTpl, stateValues, keyBindingFallback)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}

		key := ""
		kb := it.KeyBinding
		if kb == "" {
			kb = keyBindingFallback
		}
		if kb != "" {
			if v, ok := stateValues[kb]; ok {
				key = FormatValue(v)
			} else if v, ok := stateValues["item."+kb]; ok {
				key = FormatValue(v)
			}
		}

		v := vdom.Element(it.Tag, props, children...)
		v.Key = key
		return v, nil

	default:
		return nil, fmt.Errorf("template: unknown item template kind %d", it.Kind)
	}
}
