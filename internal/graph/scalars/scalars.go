// Package scalars declares the custom scalar types shared by the schema and
// the input-type transformer.
package scalars

import (
	"fmt"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

const (
	dateTimeLayout = time.RFC3339
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
)

// DateTime serializes time.Time as RFC3339.
var DateTime = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "DateTime",
	Description: "An RFC3339 timestamp.",
	Serialize: func(value any) any {
		switch typed := value.(type) {
		case time.Time:
			return typed.UTC().Format(dateTimeLayout)
		case *time.Time:
			if typed == nil {
				return nil
			}
			return typed.UTC().Format(dateTimeLayout)
		case string:
			return typed
		}
		return nil
	},
	ParseValue: func(value any) any {
		return parseTimeValue(value, dateTimeLayout)
	},
	ParseLiteral: func(valueAST ast.Value) any {
		if lit, ok := valueAST.(*ast.StringValue); ok {
			return parseTimeValue(lit.Value, dateTimeLayout)
		}
		return nil
	},
})

// Date serializes a calendar date as YYYY-MM-DD.
var Date = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Date",
	Description: "A calendar date (YYYY-MM-DD).",
	Serialize: func(value any) any {
		switch typed := value.(type) {
		case time.Time:
			return typed.UTC().Format(dateLayout)
		case string:
			return typed
		}
		return nil
	},
	ParseValue: func(value any) any {
		return parseTimeValue(value, dateLayout)
	},
	ParseLiteral: func(valueAST ast.Value) any {
		if lit, ok := valueAST.(*ast.StringValue); ok {
			return parseTimeValue(lit.Value, dateLayout)
		}
		return nil
	},
})

// Time serializes a wall-clock time as HH:MM:SS.
var Time = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Time",
	Description: "A wall-clock time (HH:MM:SS).",
	Serialize: func(value any) any {
		switch typed := value.(type) {
		case time.Time:
			return typed.UTC().Format(timeLayout)
		case string:
			return typed
		}
		return nil
	},
	ParseValue: func(value any) any {
		return parseTimeValue(value, timeLayout)
	},
	ParseLiteral: func(valueAST ast.Value) any {
		if lit, ok := valueAST.(*ast.StringValue); ok {
			return parseTimeValue(lit.Value, timeLayout)
		}
		return nil
	},
})

// Decimal carries exact decimal values as strings across the wire.
var Decimal = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Decimal",
	Description: "An exact decimal value encoded as a string.",
	Serialize: func(value any) any {
		switch typed := value.(type) {
		case string:
			return typed
		case fmt.Stringer:
			return typed.String()
		case float64:
			return fmt.Sprintf("%v", typed)
		}
		return nil
	},
	ParseValue: func(value any) any {
		if s, ok := value.(string); ok {
			return s
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) any {
		switch lit := valueAST.(type) {
		case *ast.StringValue:
			return lit.Value
		case *ast.FloatValue:
			return lit.Value
		case *ast.IntValue:
			return lit.Value
		}
		return nil
	},
})

// GenericScalar passes arbitrary JSON through untouched. Used for the
// structured mutation error tree.
var GenericScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "GenericScalar",
	Description: "A generic type to return error messages",
	Serialize: func(value any) any {
		return value
	},
	ParseValue: func(value any) any {
		return value
	},
	ParseLiteral: parseLiteralValue,
})

func parseTimeValue(value any, layout string) any {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	parsed, err := time.Parse(layout, s)
	if err != nil {
		return nil
	}
	return parsed
}

func parseLiteralValue(valueAST ast.Value) any {
	switch lit := valueAST.(type) {
	case *ast.StringValue:
		return lit.Value
	case *ast.BooleanValue:
		return lit.Value
	case *ast.IntValue:
		return lit.Value
	case *ast.FloatValue:
		return lit.Value
	case *ast.ListValue:
		values := make([]any, 0, len(lit.Values))
		for _, item := range lit.Values {
			values = append(values, parseLiteralValue(item))
		}
		return values
	case *ast.ObjectValue:
		obj := make(map[string]any, len(lit.Fields))
		for _, field := range lit.Fields {
			obj[field.Name.Value] = parseLiteralValue(field.Value)
		}
		return obj
	}
	return nil
}
