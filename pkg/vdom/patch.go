package vdom

// Op identifies the patch variant.
type Op uint8

const (
	OpCreate Op = iota
	OpRemove
	OpReplace
	OpUpdateText
	OpUpdateProps
	OpReorderChildren

	// Template variants must be materialized (see package template) before
	// they reach the patch engine's Apply.
	OpUpdateTextTemplate
	OpUpdatePropsTemplate
	OpUpdateListTemplate
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "Create"
	case OpRemove:
		return "Remove"
	case OpReplace:
		return "Replace"
	case OpUpdateText:
		return "UpdateText"
	case OpUpdateProps:
		return "UpdateProps"
	case OpReorderChildren:
		return "ReorderChildren"
	case OpUpdateTextTemplate:
		return "UpdateTextTemplate"
	case OpUpdatePropsTemplate:
		return "UpdatePropsTemplate"
	case OpUpdateListTemplate:
		return "UpdateListTemplate"
	default:
		return "Unknown"
	}
}

// IsTemplate reports whether this patch must pass through the Template
// Renderer before it can be applied.
func (o Op) IsTemplate() bool {
	return o == OpUpdateTextTemplate || o == OpUpdatePropsTemplate || o == OpUpdateListTemplate
}

// Patch is a typed operation against a path-addressed position in the live
// tree.
type Patch struct {
	Op   Op   `json:"op"`
	Path Path `json:"path"`

	// Create / Replace
	Node *VNode `json:"node,omitempty"`

	// UpdateText
	Content string `json:"content,omitempty"`

	// UpdateProps
	Props Props `json:"props,omitempty"`

	// ReorderChildren: permutation of data-key values.
	Order []string `json:"order,omitempty"`

	// Template variants, materialized by package template before Apply.
	TextTemplate *TemplatePatch `json:"templatePatch,omitempty"`
	PropName     string         `json:"propName,omitempty"` // UpdatePropsTemplate target attribute
	PropTemplate *TemplatePatch `json:"propTemplatePatch,omitempty"`
	ListTemplate *LoopTemplate  `json:"loopTemplate,omitempty"`
}

// TemplatePatch is the parameterized-template payload: a "{0}{1}..."
// template string plus the ordered bindings substituted into it.
type TemplatePatch struct {
	Template                string            `json:"template"`
	Bindings                []Binding         `json:"bindings"`
	Slots                   []int             `json:"slots,omitempty"`
	ConditionalTemplates    map[string]string `json:"conditionalTemplates,omitempty"`
	ConditionalBindingIndex int               `json:"conditionalBindingIndex,omitempty"`
	HasConditional          bool              `json:"hasConditional,omitempty"`
}

// Binding is either a bare state key or a state key with a whitelisted
// transform applied before substitution.
type Binding struct {
	StateKey string `json:"stateKey"`
	// Transform is the raw suffix syntax (e.g. "toFixed(2)", "* 100",
	// "toUpperCase"); empty means no transform.
	Transform string `json:"transform,omitempty"`
}

// LoopTemplate renders a keyed list of children from an array-valued state
// binding.
type LoopTemplate struct {
	ArrayBinding string       `json:"arrayBinding"`
	IndexVar     string       `json:"indexVar,omitempty"` // optional
	Item         ItemTemplate `json:"itemTemplate"`
	KeyBinding   string       `json:"keyBinding,omitempty"` // optional, property name within each item
}

// ItemKind discriminates the two ItemTemplate shapes.
type ItemKind uint8

const (
	ItemText ItemKind = iota
	ItemElement
)

// ItemTemplate is either a Text or an Element template rendered once per
// array item.
type ItemTemplate struct {
	Kind             ItemKind                  `json:"type"`
	TemplatePatch    *TemplatePatch            `json:"templatePatch,omitempty"` // ItemText
	Tag              string                    `json:"tag,omitempty"`           // ItemElement
	PropsTemplates   map[string]*TemplatePatch `json:"propsTemplates,omitempty"`
	ChildrenTemplate []ItemTemplate            `json:"childrenTemplates,omitempty"`
	KeyBinding       string                    `json:"keyBinding,omitempty"`
}

// NewCreate builds a Create patch.
func NewCreate(path Path, node *VNode) Patch { return Patch{Op: OpCreate, Path: path, Node: node} }

// NewRemove builds a Remove patch.
func NewRemove(path Path) Patch { return Patch{Op: OpRemove, Path: path} }

// NewReplace builds a Replace patch.
func NewReplace(path Path, node *VNode) Patch { return Patch{Op: OpReplace, Path: path, Node: node} }

// NewUpdateText builds an UpdateText patch.
func NewUpdateText(path Path, content string) Patch {
	return Patch{Op: OpUpdateText, Path: path, Content: content}
}

// NewUpdateProps builds an UpdateProps patch.
func NewUpdateProps(path Path, props Props) Patch {
	return Patch{Op: OpUpdateProps, Path: path, Props: props}
}

// NewReorderChildren builds a ReorderChildren patch.
func NewReorderChildren(path Path, order []string) Patch {
	return Patch{Op: OpReorderChildren, Path: path, Order: order}
}
