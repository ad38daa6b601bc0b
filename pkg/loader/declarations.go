package loader

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/oakwood-commons/filterbar/internal/cel"
	"github.com/oakwood-commons/filterbar/internal/config"
	"github.com/oakwood-commons/filterbar/pkg/filter"
	"github.com/oakwood-commons/filterbar/pkg/logger"
)

// Declarations is a loaded declaration document bound to live option
// providers, validators and action handlers.
type Declarations struct {
	Properties filter.Properties
	Actions    []filter.Action
	AI         config.AIDecl
	Source     config.File
}

// DeclOption configures declaration loading.
type DeclOption func(*declOptions)

type declOptions struct {
	baseDir string
	client  *http.Client
	action  func(decl config.ActionDecl) filter.ActionFunc
}

// WithBaseDir resolves relative options_file paths against dir.
func WithBaseDir(dir string) DeclOption {
	return func(o *declOptions) { o.baseDir = dir }
}

// WithHTTPClient sets the client used by options_url providers.
func WithHTTPClient(c *http.Client) DeclOption {
	return func(o *declOptions) {
		if c != nil {
			o.client = c
		}
	}
}

// WithActionHandler binds declared actions to handlers. Without it, actions
// only log their invocation.
func WithActionHandler(fn func(decl config.ActionDecl) filter.ActionFunc) DeclOption {
	return func(o *declOptions) { o.action = fn }
}

// LoadDeclarations parses a declaration document.
func LoadDeclarations(data []byte, opts ...DeclOption) (*Declarations, error) {
	doc, err := Decode(data, "")
	if err != nil {
		return nil, err
	}
	return bind(doc, opts)
}

// LoadDeclarationsFile parses a declaration file. Relative options_file
// paths are resolved against the file's directory unless WithBaseDir says
// otherwise.
func LoadDeclarationsFile(path string, opts ...DeclOption) (*Declarations, error) {
	doc, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	opts = append([]DeclOption{WithBaseDir(filepath.Dir(path))}, opts...)
	return bind(doc, opts)
}

func bind(doc map[string]any, opts []DeclOption) (*Declarations, error) {
	o := declOptions{client: http.DefaultClient, action: logAction}
	for _, opt := range opts {
		opt(&o)
	}

	var f config.File
	if err := into(doc, &f); err != nil {
		return nil, err
	}
	if err := f.Check(); err != nil {
		return nil, err
	}

	d := &Declarations{AI: f.AI, Source: f}
	for _, decl := range f.Properties {
		p, err := o.property(decl)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", decl.Name, err)
		}
		d.Properties = append(d.Properties, p)
	}
	for _, a := range f.Actions {
		label := a.Label
		if label == "" {
			label = a.Value
		}
		d.Actions = append(d.Actions, filter.Action{Value: a.Value, Label: label, Handler: o.action(a)})
	}
	return d, nil
}

func (o declOptions) property(decl config.PropertyDecl) (filter.Property, error) {
	p := filter.Property{
		Name:      decl.Name,
		Label:     decl.Label,
		Type:      filter.PropertyType(strings.ToLower(decl.Type)),
		Operators: decl.Operators,
	}
	if p.Label == "" {
		p.Label = decl.Name
	}
	switch p.Type {
	case "":
		p.Type = filter.TypeString
	case filter.TypeString, filter.TypeNumber, filter.TypeDate, filter.TypeBoolean:
	default:
		return p, fmt.Errorf("unknown type %q", decl.Type)
	}

	switch {
	case decl.Custom != nil:
		p.Options = &filter.CustomEditor{Label: decl.Custom.Label, Component: decl.Name}
	case decl.OptionsFile != "":
		path := decl.OptionsFile
		if !filepath.IsAbs(path) && o.baseDir != "" {
			path = filepath.Join(o.baseDir, path)
		}
		opts, err := FileOptions(path)
		if err != nil {
			return p, err
		}
		p.Options = opts
	case decl.OptionsURL != "":
		p.Options = URLOptions(decl.OptionsURL, o.client)
	case len(decl.Options) > 0:
		p.Options = staticOptions(decl)
	}

	if decl.Validate != "" {
		check, err := cel.Func(decl.Validate, decl.Name, string(p.Type))
		if err != nil {
			return p, fmt.Errorf("validate: %w", err)
		}
		p.Validate = check
	}
	return p, nil
}

func staticOptions(decl config.PropertyDecl) filter.StaticOptions {
	out := make(filter.StaticOptions, 0, len(decl.Options))
	for _, o := range decl.Options {
		if o.Custom != nil {
			ed := &filter.CustomEditor{Label: o.Custom.Label, Component: decl.Name}
			out = append(out, filter.Option{Label: ed.EditorLabel(), Value: o.Value, Editor: ed})
			continue
		}
		out = append(out, filter.Option{Label: o.DisplayLabel(), Value: o.Value})
	}
	return out
}

func logAction(decl config.ActionDecl) filter.ActionFunc {
	return func(ctx context.Context, text string, ac filter.ActionContext) error {
		logger.FromContext(ctx).Info("action invoked", "action", decl.Value, "text", text, logger.PathKey, ac.Path.String())
		return nil
	}
}

// LoadTree parses a filter tree document.
func LoadTree(data []byte) (*filter.Group, error) {
	doc, err := Decode(data, "")
	if err != nil {
		return nil, err
	}
	return filter.FromMap(doc)
}

// LoadTreeFile parses a filter tree file, honoring its extension.
func LoadTreeFile(path string) (*filter.Group, error) {
	doc, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	g, err := filter.FromMap(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
