package graph

import (
	"fmt"
	"strings"

	"github.com/inqira/inqira/internal/forms"
)

// ArrayNonMemberErrors keys array-level failures that do not belong to any
// single item of the submitted list.
const ArrayNonMemberErrors = "nonMemberErrors"

// ErrorRecord is the flat client-facing shape of one failing field.
type ErrorRecord struct {
	Field        string
	Messages     *string
	ObjectErrors []ErrorRecord
	ArrayErrors  []ArrayItemError
}

// ArrayItemError holds the failures of one list item, keyed by the item's
// client-supplied uuid or a positional placeholder.
type ArrayItemError struct {
	Key          string
	Messages     *string
	ObjectErrors []ErrorRecord
}

// ToMap renders the record for the GenericScalar errors field.
func (r ErrorRecord) ToMap() map[string]any {
	out := map[string]any{
		"field":        r.Field,
		"messages":     nil,
		"objectErrors": nil,
		"arrayErrors":  nil,
	}
	if r.Messages != nil {
		out["messages"] = *r.Messages
	}
	if r.ObjectErrors != nil {
		out["objectErrors"] = RecordsToMaps(r.ObjectErrors)
	}
	if r.ArrayErrors != nil {
		items := make([]map[string]any, 0, len(r.ArrayErrors))
		for _, item := range r.ArrayErrors {
			entry := map[string]any{
				"key":          item.Key,
				"messages":     nil,
				"objectErrors": nil,
			}
			if item.Messages != nil {
				entry["messages"] = *item.Messages
			}
			if item.ObjectErrors != nil {
				entry["objectErrors"] = RecordsToMaps(item.ObjectErrors)
			}
			items = append(items, entry)
		}
		out["arrayErrors"] = items
	}
	return out
}

// RecordsToMaps renders a record list for the GenericScalar errors field.
func RecordsToMaps(records []ErrorRecord) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		out = append(out, record.ToMap())
	}
	return out
}

// TransformErrors flattens a nested field→failure tree into client-facing
// records. initialData is the originally submitted input, consulted to tell
// array-level failures apart from scalar ones and to key per-item failures.
func TransformErrors(errs forms.FieldErrors, initialData map[string]any) []ErrorRecord {
	records := make([]ErrorRecord, 0, len(errs))
	for _, entry := range errs {
		records = append(records, transformEntry(entry, initialData))
	}
	return records
}

func transformEntry(entry forms.FieldError, initialData map[string]any) ErrorRecord {
	field := toCamelCase(entry.Field)

	switch failure := entry.Failure.(type) {
	case forms.FieldErrors:
		childData, _ := initialData[entry.Field].(map[string]any)
		return ErrorRecord{
			Field:        field,
			ObjectErrors: TransformErrors(failure, childData),
		}

	case []string:
		joined := strings.Join(failure, "")
		if _, isList := initialData[entry.Field].([]any); isList {
			// An array input failed as a whole, not per item.
			return ErrorRecord{
				Field: field,
				ArrayErrors: []ArrayItemError{{
					Key:      ArrayNonMemberErrors,
					Messages: &joined,
				}},
			}
		}
		return ErrorRecord{Field: field, Messages: &joined}

	case []forms.FieldErrors:
		items, _ := initialData[entry.Field].([]any)
		arrayErrors := make([]ArrayItemError, 0, len(failure))
		for pos, itemFailure := range failure {
			if itemFailure.Empty() {
				continue
			}
			itemData := itemAt(items, pos)
			arrayErrors = append(arrayErrors, ArrayItemError{
				Key:          itemKey(itemData, pos),
				ObjectErrors: TransformErrors(itemFailure, itemData),
			})
		}
		return ErrorRecord{Field: field, ArrayErrors: arrayErrors}

	default:
		joined := fallbackMessage(entry.Failure)
		return ErrorRecord{Field: field, Messages: &joined}
	}
}

func itemAt(items []any, pos int) map[string]any {
	if pos < 0 || pos >= len(items) {
		return nil
	}
	item, _ := items[pos].(map[string]any)
	return item
}

func itemKey(item map[string]any, pos int) string {
	for _, candidate := range []string{"uuid", "clientId", "client_id"} {
		if raw, ok := item[candidate]; ok {
			if key, ok := raw.(string); ok && key != "" {
				return key
			}
		}
	}
	return fmt.Sprintf("NOT_FOUND_%d", pos)
}

func fallbackMessage(failure any) string {
	if parts, ok := failure.([]any); ok {
		rendered := make([]string, 0, len(parts))
		for _, part := range parts {
			rendered = append(rendered, fmt.Sprint(part))
		}
		return strings.Join(rendered, " ")
	}
	return fmt.Sprint(failure)
}

// toCamelCase converts snake_case field names to the API's camelCase.
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
