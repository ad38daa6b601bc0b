//revive:disable:exported
package completion

import (
	"strings"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

// ItemKind tells the router how to apply a selected item.
type ItemKind string

const (
	KindProperty ItemKind = "property"
	KindOperator ItemKind = "operator"
	KindValue    ItemKind = "value"
	KindNewGroup ItemKind = "group"
	KindAI       ItemKind = "ai-filter"
	KindCustom   ItemKind = "custom"
	KindLoading  ItemKind = "loading"
	KindAction   ItemKind = "action"
)

// Reserved item values.
const (
	ValueNewGroup = "group"
	ValueAIFilter = "ai-filter"
	ValueCustom   = "custom"
	ValueLoading  = "loading"
)

const (
	LabelNewGroup = "New Group"
	LabelAIFilter = "Filter by AI"
	LabelLoading  = "Loading options..."
)

// Item is a single menu candidate.
type Item struct {
	Value    string
	Label    string
	Kind     ItemKind
	Editor   *filter.CustomEditor // set for KindCustom
	Disabled bool
}

// OptionsView is the read side of the options cache consulted while building
// value menus.
type OptionsView interface {
	Get(property, search string) ([]filter.Option, bool)
	Latest(property string) ([]filter.Option, bool)
	Loading(property string) bool
}

// Request is everything the builder looks at. Text is the focused leaf's
// text: the free text for a group, the value for a value input, and the
// operator draft for an operator input.
type Request struct {
	Tree       *filter.Group
	Active     *filter.ActiveInput
	Properties filter.Properties
	Text       string
	// TypedSinceFocus enables filtering of operator and static value lists.
	TypedSinceFocus bool
	NewGroup        bool
	AI              bool
	Actions         []filter.Action
	Options         OptionsView
}

// LoadRequest asks the caller to fetch options for a property.
type LoadRequest struct {
	Property filter.Property
	Search   string
}

// Menu is the ordered candidate list plus an optional fetch the caller
// should start.
type Menu struct {
	Items []Item
	Load  *LoadRequest
}

// Build produces the candidate list for the focused leaf. It has no side
// effects; the same request always yields the same menu.
func Build(req Request) Menu {
	if !req.Active.Resolves(req.Tree) {
		return Menu{}
	}
	switch req.Active.Kind {
	case filter.InputGroup:
		return Menu{Items: groupItems(req)}
	case filter.InputOperator:
		return Menu{Items: operatorItems(req)}
	case filter.InputValue:
		return valueMenu(req)
	}
	return Menu{}
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func groupItems(req Request) []Item {
	var items []Item
	for _, p := range req.Properties {
		if contains(p.Label, req.Text) {
			items = append(items, Item{Value: p.Name, Label: p.Label, Kind: KindProperty})
		}
	}
	if req.NewGroup {
		items = append(items, Item{Value: ValueNewGroup, Label: LabelNewGroup, Kind: KindNewGroup})
	}
	if strings.TrimSpace(req.Text) == "" {
		return items
	}
	if req.AI {
		items = append(items, Item{Value: ValueAIFilter, Label: LabelAIFilter, Kind: KindAI})
	}
	for _, a := range req.Actions {
		items = append(items, Item{Value: a.Value, Label: a.Label, Kind: KindAction})
	}
	return items
}

func operatorItems(req Request) []Item {
	cond := filter.FindConditionByPath(req.Tree, req.Active.Path)
	ops := []string{filter.DefaultOperator}
	if prop, ok := req.Properties.Lookup(cond.PropertyName); ok {
		ops = prop.OperatorList()
	}
	var items []Item
	for _, op := range ops {
		if req.TypedSinceFocus && !strings.Contains(strings.ToUpper(op), strings.ToUpper(req.Text)) {
			continue
		}
		items = append(items, Item{Value: op, Label: op, Kind: KindOperator})
	}
	return items
}

func valueMenu(req Request) Menu {
	cond := filter.FindConditionByPath(req.Tree, req.Active.Path)
	prop, ok := req.Properties.Lookup(cond.PropertyName)
	if !ok {
		return Menu{}
	}
	switch opts := prop.Options.(type) {
	case *filter.CustomEditor:
		return Menu{Items: []Item{customItem(opts)}}
	case filter.StaticOptions:
		return Menu{Items: staticItems(opts, req)}
	case filter.SyncOptions, filter.AsyncOptions:
		return fetchedMenu(prop, req)
	}
	return Menu{}
}

func customItem(ed *filter.CustomEditor) Item {
	return Item{Value: ValueCustom, Label: ed.EditorLabel(), Kind: KindCustom, Editor: ed}
}

func staticItems(opts filter.StaticOptions, req Request) []Item {
	var items []Item
	for _, o := range opts {
		if o.Editor != nil {
			label := o.Editor.EditorLabel()
			if o.Label != "" {
				label = o.Label
			}
			if req.TypedSinceFocus && !contains(label, req.Text) {
				continue
			}
			item := customItem(o.Editor)
			item.Label = label
			items = append(items, item)
			continue
		}
		if req.TypedSinceFocus && !contains(o.Label, req.Text) {
			continue
		}
		items = append(items, Item{Value: o.Value, Label: o.Label, Kind: KindValue})
	}
	return items
}

// fetchedMenu serves provider-backed options from the cache. An exact hit for
// the current text is shown as is; otherwise a fetch is requested and either
// the loading placeholder or the property's most recent results are shown.
func fetchedMenu(prop filter.Property, req Request) Menu {
	if req.Options == nil {
		return Menu{Load: &LoadRequest{Property: prop, Search: req.Text}}
	}
	if opts, ok := req.Options.Get(prop.Name, req.Text); ok {
		return Menu{Items: optionItems(opts)}
	}
	m := Menu{Load: &LoadRequest{Property: prop, Search: req.Text}}
	if req.Options.Loading(prop.Name) {
		m.Items = []Item{{Value: ValueLoading, Label: LabelLoading, Kind: KindLoading, Disabled: true}}
		return m
	}
	if opts, ok := req.Options.Latest(prop.Name); ok {
		m.Items = optionItems(opts)
	}
	return m
}

func optionItems(opts []filter.Option) []Item {
	items := make([]Item, 0, len(opts))
	for _, o := range opts {
		if o.Editor != nil {
			items = append(items, customItem(o.Editor))
			continue
		}
		items = append(items, Item{Value: o.Value, Label: o.Label, Kind: KindValue})
	}
	return items
}
