package vdom

// Kind is the VNode variant discriminator.
type Kind uint8

const (
	KindText Kind = iota
	KindElement
	KindFragment
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Props holds element attributes. Values are always strings on the wire;
// handlers (keys prefixed "on") are never materialized into DOM attributes.
type Props map[string]string

// Clone returns a shallow copy of Props.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// VNode is the tagged virtual node variant: Kind selects which of the
// remaining fields are meaningful (Tag/Props/Children for Element,
// Content for Text/Raw, Children alone for Fragment).
type VNode struct {
	Kind     Kind     `json:"kind"`
	Tag      string   `json:"tag,omitempty"` // Element only
	Props    Props    `json:"props,omitempty"`
	Children []*VNode `json:"children,omitempty"`
	Key      string   `json:"key,omitempty"` // Element only, reconciliation key
	Content  string   `json:"content,omitempty"`
}

// Text constructs a Text VNode.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Content: content}
}

// Element constructs an Element VNode.
func Element(tag string, props Props, children ...*VNode) *VNode {
	return &VNode{Kind: KindElement, Tag: tag, Props: props, Children: children}
}

// KeyedElement constructs an Element VNode carrying a reconciliation key.
func KeyedElement(tag, key string, props Props, children ...*VNode) *VNode {
	v := Element(tag, props, children...)
	v.Key = key
	return v
}

// FragmentOf constructs a Fragment VNode.
func FragmentOf(children ...*VNode) *VNode {
	return &VNode{Kind: KindFragment, Children: children}
}

// Raw constructs a RawHtml VNode.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Content: html}
}

// Path is an ordered list of child-indices from the component root.
type Path []int

// Child returns a new path one level deeper at index i.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Equal reports whether two paths address the same position.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
