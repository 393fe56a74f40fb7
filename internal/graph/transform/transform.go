// Package transform generates GraphQL input types from forms descriptors.
// The mapping is computed once per descriptor and memoized for the life of
// the process.
package transform

import (
	"fmt"
	"strings"
	"sync"

	"github.com/graphql-go/graphql"

	"github.com/inqira/inqira/internal/forms"
	"github.com/inqira/inqira/internal/graph/scalars"
)

// ConfigurationError reports a descriptor the transformer cannot map. It is
// a deployment bug, not a user-recoverable failure.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "transform: " + e.Reason
}

// Transformer converts forms.Form descriptors into GraphQL input objects.
// Enum lookups go through the registry injected at construction.
type Transformer struct {
	mu    sync.Mutex
	enums map[string]*graphql.Enum
	cache map[string]*graphql.InputObject
}

func New(enums map[string]*graphql.Enum) *Transformer {
	if enums == nil {
		enums = map[string]*graphql.Enum{}
	}
	return &Transformer{
		enums: enums,
		cache: map[string]*graphql.InputObject{},
	}
}

// InputObject returns the input type for the form. Repeated calls for the
// same descriptor return the identical object.
func (t *Transformer) InputObject(form *forms.Form) (*graphql.InputObject, error) {
	return t.generate(form, false)
}

// PartialInputObject returns the update variant of the form's input type:
// every field optional regardless of the descriptor's requiredness.
func (t *Transformer) PartialInputObject(form *forms.Form) (*graphql.InputObject, error) {
	return t.generate(form, true)
}

func (t *Transformer) generate(form *forms.Form, partial bool) (*graphql.InputObject, error) {
	name := form.Name + "Input"
	if partial {
		name = form.Name + "PartialInput"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cached, ok := t.cache[name]; ok {
		return cached, nil
	}

	fieldMap := graphql.InputObjectConfigFieldMap{}
	for _, field := range form.Fields {
		inputField, err := t.inputField(form, field, partial)
		if err != nil {
			return nil, err
		}
		fieldMap[toCamelCase(field.Name)] = inputField
	}

	obj := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   name,
		Fields: fieldMap,
	})
	t.cache[name] = obj
	return obj, nil
}

func (t *Transformer) inputField(form *forms.Form, field forms.Field, partial bool) (*graphql.InputObjectFieldConfig, error) {
	fieldType, err := t.fieldType(form, field)
	if err != nil {
		return nil, err
	}

	required := field.Required && !partial
	if required {
		return &graphql.InputObjectFieldConfig{
			Type: graphql.NewNonNull(fieldType),
		}, nil
	}

	// Partial variants leave absent fields absent instead of filling
	// defaults, so updates only touch what the client sent.
	if partial {
		return &graphql.InputObjectFieldConfig{Type: fieldType}, nil
	}

	var defaultValue any
	switch {
	case field.DefaultFunc != nil:
		// Factory defaults keep mutable values from aliasing across types.
		defaultValue = field.DefaultFunc()
	case field.Default != nil:
		defaultValue = field.Default
	case field.Kind == forms.KindString:
		defaultValue = ""
	}

	return &graphql.InputObjectFieldConfig{
		Type:         fieldType,
		DefaultValue: defaultValue,
	}, nil
}

func (t *Transformer) fieldType(form *forms.Form, field forms.Field) (graphql.Input, error) {
	switch field.Kind {
	case forms.KindString:
		return graphql.String, nil
	case forms.KindInt:
		return graphql.Int, nil
	case forms.KindBool:
		return graphql.Boolean, nil
	case forms.KindFloat:
		return graphql.Float, nil
	case forms.KindDecimal:
		return scalars.Decimal, nil
	case forms.KindDateTime:
		return scalars.DateTime, nil
	case forms.KindDate:
		return scalars.Date, nil
	case forms.KindTime:
		return scalars.Time, nil
	case forms.KindJSON:
		return scalars.GenericScalar, nil
	case forms.KindID:
		return graphql.ID, nil
	case forms.KindIDList:
		return graphql.NewList(graphql.NewNonNull(graphql.ID)), nil

	case forms.KindEnum:
		name := field.EnumName
		if name == "" {
			name = form.Name + camelTitle(field.Name)
		}
		enum, ok := t.enums[name]
		if !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("no enum registered under %q for field %s.%s", name, form.Name, field.Name)}
		}
		return enum, nil

	case forms.KindList, forms.KindMultiChoice:
		if field.Child == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("list field %s.%s has no child descriptor", form.Name, field.Name)}
		}
		elem, err := t.fieldType(form, *field.Child)
		if err != nil {
			return nil, err
		}
		if field.Child.Required {
			return graphql.NewList(graphql.NewNonNull(elem)), nil
		}
		return graphql.NewList(elem), nil

	case forms.KindNested:
		if field.Nested == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("nested field %s.%s has no form descriptor", form.Name, field.Name)}
		}
		nested, ok := t.cache[field.Nested.Name+"Input"]
		if ok {
			return nested, nil
		}
		return t.generateLocked(field.Nested)
	}

	return nil, &ConfigurationError{Reason: fmt.Sprintf("unmapped field kind %s for %s.%s", field.Kind, form.Name, field.Name)}
}

// generateLocked builds a nested input object while the transformer mutex is
// already held.
func (t *Transformer) generateLocked(form *forms.Form) (*graphql.InputObject, error) {
	name := form.Name + "Input"
	if cached, ok := t.cache[name]; ok {
		return cached, nil
	}

	fieldMap := graphql.InputObjectConfigFieldMap{}
	for _, field := range form.Fields {
		inputField, err := t.inputField(form, field, false)
		if err != nil {
			return nil, err
		}
		fieldMap[toCamelCase(field.Name)] = inputField
	}

	obj := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   name,
		Fields: fieldMap,
	})
	t.cache[name] = obj
	return obj, nil
}

// camelTitle turns a snake_case name into its TitleCased enum suffix:
// "email_opt_outs" becomes "EmailOptOuts".
func camelTitle(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func toCamelCase(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) == 1 {
		return name
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
