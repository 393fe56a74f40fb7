// Package forms describes input descriptors for the GraphQL surface: which
// fields a mutation accepts, their kinds, requiredness, and defaults. The
// descriptor drives both input-type generation and validation.
package forms

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Kind tags a field with its wire type. The set is closed; anything outside
// it is a configuration bug, not a runtime case.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindFloat
	KindDecimal
	KindDateTime
	KindDate
	KindTime
	KindEnum
	KindID
	KindIDList
	KindList
	KindNested
	KindJSON
	KindMultiChoice
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindFloat:
		return "Float"
	case KindDecimal:
		return "Decimal"
	case KindDateTime:
		return "DateTime"
	case KindDate:
		return "Date"
	case KindTime:
		return "Time"
	case KindEnum:
		return "Enum"
	case KindID:
		return "ID"
	case KindIDList:
		return "IDList"
	case KindList:
		return "List"
	case KindNested:
		return "Nested"
	case KindJSON:
		return "JSON"
	case KindMultiChoice:
		return "MultiChoice"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Field describes one input field. Names are snake_case; the GraphQL layer
// camel-cases them on the wire.
type Field struct {
	Name     string
	Kind     Kind
	Required bool

	// Default applies when the field is absent and not required. Mutable
	// defaults go through DefaultFunc so instances never alias.
	Default     any
	DefaultFunc func() any

	MaxLength int // strings only, 0 means unbounded

	EnumName string // overrides the derived <Form><CamelField> lookup name

	Child  *Field // element descriptor for List/MultiChoice
	Nested *Form  // sub-object descriptor for Nested
}

// Form is an ordered field collection named after the model or serializer it
// mirrors. The name seeds generated-type and enum naming.
type Form struct {
	Name   string
	Fields []Field
}

// Validation messages, matching the wire contract clients already parse.
const (
	msgRequired      = "This field is required."
	msgNotString     = "Not a valid string."
	msgNotInteger    = "A valid integer is required."
	msgNotBool       = "Must be a valid boolean."
	msgNotNumber     = "A valid number is required."
	msgNotID         = "Incorrect type. Expected pk value."
	msgNotList       = "Expected a list of items."
	msgNotObject     = "Invalid data. Expected a dictionary."
	msgMaxLenExceeds = "Ensure this field has no more than %d characters."
)

// Validate checks data against the form and returns the cleaned values. In
// partial mode absent fields are skipped instead of failing as required and
// defaults are not applied.
func (f *Form) Validate(data map[string]any, partial bool) (map[string]any, FieldErrors) {
	cleaned := make(map[string]any, len(f.Fields))
	var errs FieldErrors

	for _, field := range f.Fields {
		value, present := data[field.Name]
		if !present || value == nil {
			if partial {
				continue
			}
			if field.Required {
				errs = errs.Add(field.Name, []string{msgRequired})
				continue
			}
			if def, ok := field.defaultValue(); ok {
				cleaned[field.Name] = def
			}
			continue
		}

		clean, failure := field.validateValue(value, partial)
		if failure != nil {
			errs = errs.Add(field.Name, failure)
			continue
		}
		cleaned[field.Name] = clean
	}

	if errs.Empty() {
		return cleaned, nil
	}
	return nil, errs
}

func (f Field) defaultValue() (any, bool) {
	if f.DefaultFunc != nil {
		return f.DefaultFunc(), true
	}
	if f.Default != nil {
		return f.Default, true
	}
	if !f.Required && f.Kind == KindString {
		return "", true
	}
	return nil, false
}

// validateValue returns the cleaned value or a failure in one of the
// FieldErrors shapes.
func (f Field) validateValue(value any, partial bool) (any, any) {
	switch f.Kind {
	case KindString, KindDecimal, KindDateTime, KindDate, KindTime:
		s, ok := value.(string)
		if !ok {
			return nil, []string{msgNotString}
		}
		if f.Kind == KindString && f.MaxLength > 0 && len([]rune(s)) > f.MaxLength {
			return nil, []string{fmt.Sprintf(msgMaxLenExceeds, f.MaxLength)}
		}
		return s, nil

	case KindInt:
		switch typed := value.(type) {
		case int:
			return typed, nil
		case int64:
			return int(typed), nil
		case float64:
			if typed == float64(int(typed)) {
				return int(typed), nil
			}
			return nil, []string{msgNotInteger}
		default:
			return nil, []string{msgNotInteger}
		}

	case KindEnum:
		// Enum membership is enforced by the GraphQL layer; values arrive
		// already coerced to the enum's backing type.
		switch typed := value.(type) {
		case int, string:
			return typed, nil
		case int64:
			return int(typed), nil
		case float64:
			return int(typed), nil
		default:
			return nil, []string{msgNotInteger}
		}

	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, []string{msgNotBool}
		}
		return b, nil

	case KindFloat:
		switch typed := value.(type) {
		case float64:
			return typed, nil
		case int:
			return float64(typed), nil
		default:
			return nil, []string{msgNotNumber}
		}

	case KindID:
		id, err := coerceID(value)
		if err != nil {
			return nil, []string{msgNotID}
		}
		return id, nil

	case KindIDList:
		raw, ok := value.([]any)
		if !ok {
			return nil, []string{msgNotList}
		}
		ids := make([]snowflake.ID, 0, len(raw))
		for _, item := range raw {
			id, err := coerceID(item)
			if err != nil {
				return nil, []string{msgNotID}
			}
			ids = append(ids, id)
		}
		return ids, nil

	case KindList, KindMultiChoice:
		raw, ok := value.([]any)
		if !ok {
			return nil, []string{msgNotList}
		}
		if f.Child == nil {
			return raw, nil
		}
		cleanedItems := make([]any, 0, len(raw))
		itemErrs := make([]FieldErrors, len(raw))
		failed := false
		for pos, item := range raw {
			if f.Child.Kind == KindNested {
				obj, ok := item.(map[string]any)
				if !ok {
					itemErrs[pos] = FieldErrors{}.Add(NonFieldErrors, []string{msgNotObject})
					failed = true
					continue
				}
				cleanItem, nested := f.Child.Nested.Validate(obj, partial)
				if nested != nil {
					itemErrs[pos] = nested
					failed = true
					continue
				}
				cleanedItems = append(cleanedItems, cleanItem)
				continue
			}
			cleanItem, failure := f.Child.validateValue(item, partial)
			if failure != nil {
				if msgs, ok := failure.([]string); ok {
					itemErrs[pos] = FieldErrors{}.Add(NonFieldErrors, msgs)
				} else {
					itemErrs[pos] = FieldErrors{}.Add(NonFieldErrors, []string{fmt.Sprint(failure)})
				}
				failed = true
				continue
			}
			cleanedItems = append(cleanedItems, cleanItem)
		}
		if failed {
			return nil, itemErrs
		}
		return cleanedItems, nil

	case KindNested:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, []string{msgNotObject}
		}
		if f.Nested == nil {
			return obj, nil
		}
		clean, nested := f.Nested.Validate(obj, partial)
		if nested != nil {
			return nil, nested
		}
		return clean, nil

	case KindJSON:
		return value, nil
	}

	return nil, []string{fmt.Sprintf("Unsupported field kind %s.", f.Kind)}
}

func coerceID(value any) (snowflake.ID, error) {
	switch typed := value.(type) {
	case string:
		return snowflake.ParseString(typed)
	case int:
		return snowflake.ID(typed), nil
	case int64:
		return snowflake.ID(typed), nil
	case float64:
		return snowflake.ID(int64(typed)), nil
	case snowflake.ID:
		return typed, nil
	}
	return 0, fmt.Errorf("forms: cannot coerce %T to id", value)
}
