// Package graph assembles the GraphQL schema: public/private roots, output
// types generated alongside the forms descriptors, and the mutation payload
// conventions.
package graph

import (
	"context"

	"github.com/graphql-go/graphql"
	"go.uber.org/fx"
	"go.uber.org/zap"

	authdomain "github.com/inqira/inqira/internal/auth/domain"
	"github.com/inqira/inqira/internal/cache"
	"github.com/inqira/inqira/internal/graph/transform"
	projectdomain "github.com/inqira/inqira/internal/project/domain"
	questionnairedomain "github.com/inqira/inqira/internal/questionnaire/domain"
	"github.com/inqira/inqira/internal/scope"
)

type Params struct {
	fx.In

	Log            *zap.Logger
	Auth           authdomain.Service
	Projects       projectdomain.Service
	Questionnaires questionnairedomain.Service
	ClientIDs      *cache.ClientIDCache
}

// Schema owns the executable schema and the services its resolvers call.
type Schema struct {
	log            *zap.Logger
	auth           authdomain.Service
	projects       projectdomain.Service
	questionnaires questionnairedomain.Service
	clientIDs      *cache.ClientIDCache
	transformer    *transform.Transformer

	userType       *graphql.Object
	userMeType     *graphql.Object
	projectType    *graphql.Object
	membershipType *graphql.Object

	questionnaireType     *graphql.Object
	projectListType       *graphql.Object
	membershipListType    *graphql.Object
	questionnaireListType *graphql.Object

	schema graphql.Schema
}

func New(p Params) (*Schema, error) {
	s := &Schema{
		log:            p.Log.Named("graph"),
		auth:           p.Auth,
		projects:       p.Projects,
		questionnaires: p.Questionnaires,
		clientIDs:      p.ClientIDs,
		transformer:    transform.New(NewEnumRegistry()),
	}
	s.buildTypes()

	publicQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "PublicQuery",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type:    s.userMeType,
				Resolve: s.resolveMe,
			},
		},
	})

	privateQuery, err := s.buildPrivateQuery()
	if err != nil {
		return nil, err
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"public": &graphql.Field{
				Type: graphql.NewNonNull(publicQuery),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return struct{}{}, nil
				},
			},
			"private": &graphql.Field{
				Type:    privateQuery,
				Resolve: s.resolvePrivateRoot,
			},
		},
	})

	publicMutation, err := s.buildPublicMutation()
	if err != nil {
		return nil, err
	}
	privateMutation, err := s.buildPrivateMutation()
	if err != nil {
		return nil, err
	}

	rootMutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"public": &graphql.Field{
				Type: graphql.NewNonNull(publicMutation),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return struct{}{}, nil
				},
			},
			"private": &graphql.Field{
				Type:    privateMutation,
				Resolve: s.resolvePrivateRoot,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    rootQuery,
		Mutation: rootMutation,
	})
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return s, nil
}

// Exec runs one GraphQL operation. Application-level failures come back
// inside data; only transport/schema problems populate the result's errors.
func (s *Schema) Exec(ctx context.Context, query string, variables map[string]any, operationName string) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  query,
		VariableValues: variables,
		OperationName:  operationName,
		Context:        ctx,
	})
}

// resolvePrivateRoot gates both private branches: no viewer, no subtree.
func (s *Schema) resolvePrivateRoot(p graphql.ResolveParams) (any, error) {
	rc, ok := RequestContextFrom(p.Context)
	if !ok || !rc.Authenticated() {
		return nil, &scope.AuthError{Reason: "you must be logged in"}
	}
	return struct{}{}, nil
}
