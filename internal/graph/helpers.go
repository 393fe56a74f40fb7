package graph

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/graphql-go/graphql"

	"github.com/inqira/inqira/internal/forms"
	"github.com/inqira/inqira/pkg/db/pagination"
)

var errMissingRequestContext = errors.New("graph: request context missing")

func requireRequestContext(p graphql.ResolveParams) (*RequestContext, error) {
	rc, ok := RequestContextFrom(p.Context)
	if !ok {
		return nil, errMissingRequestContext
	}
	return rc, nil
}

// formData maps the wire's camelCase argument object back onto the form's
// snake_case field names for validation.
func formData(form *forms.Form, args map[string]any) map[string]any {
	data := make(map[string]any, len(form.Fields))
	for _, field := range form.Fields {
		if value, ok := args[toCamelCase(field.Name)]; ok {
			data[field.Name] = value
		}
	}
	return data
}

func argObject(p graphql.ResolveParams, name string) map[string]any {
	obj, _ := p.Args[name].(map[string]any)
	return obj
}

func argString(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func argInt(args map[string]any, name string) int {
	switch typed := args[name].(type) {
	case int:
		return typed
	case float64:
		return int(typed)
	}
	return 0
}

func argPK(p graphql.ResolveParams, name string) (snowflake.ID, error) {
	raw, _ := p.Args[name].(string)
	return snowflake.ParseString(raw)
}

func argIDList(p graphql.ResolveParams, name string) ([]snowflake.ID, error) {
	raw, ok := p.Args[name].([]any)
	if !ok {
		return nil, nil
	}
	ids := make([]snowflake.ID, 0, len(raw))
	for _, item := range raw {
		s, _ := item.(string)
		id, err := snowflake.ParseString(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// listFilterArgs reads the shared search/offset/limit arguments, applying the
// default page size.
func listFilterArgs(p graphql.ResolveParams) (search string, offset int, limit int) {
	search = argString(p.Args, "search")
	page := pagination.Pagination{
		Offset: argInt(p.Args, "offset"),
		Limit:  argInt(p.Args, "limit"),
	}.Normalize()
	return search, page.Offset, page.Limit
}

func stringPtrFromClean(cleaned map[string]any, field string) *string {
	raw, ok := cleaned[field]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	return &s
}
