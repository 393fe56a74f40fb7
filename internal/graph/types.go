package graph

import (
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/graphql-go/graphql"

	authdomain "github.com/inqira/inqira/internal/auth/domain"
	"github.com/inqira/inqira/internal/graph/scalars"
	projectdomain "github.com/inqira/inqira/internal/project/domain"
	questionnairedomain "github.com/inqira/inqira/internal/questionnaire/domain"
)

// projectSource is the resolver source for project fields: the row plus the
// viewer's role when the row came from a visibility query.
type projectSource struct {
	Project *projectdomain.Project
	Role    *projectdomain.Role
}

// countList is the {count, items} pagination envelope.
func countList(count int64, items any) map[string]any {
	return map[string]any{"count": count, "items": items}
}

func emptyCountList() map[string]any {
	return map[string]any{"count": 0, "items": []any{}}
}

func (s *Schema) buildTypes() {
	s.userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "UserType",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return viewerSource(p).ID.String(), nil
				},
			},
			"firstName": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return viewerSource(p).FirstName, nil
				},
			},
			"lastName": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return viewerSource(p).LastName, nil
				},
			},
		},
	})

	s.userMeType = graphql.NewObject(graphql.ObjectConfig{
		Name: "UserMeType",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return viewerSource(p).ID.String(), nil
				},
			},
			"firstName": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return viewerSource(p).FirstName, nil
				},
			},
			"lastName": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return viewerSource(p).LastName, nil
				},
			},
			"email": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return viewerSource(p).Email, nil
				},
			},
			"emailOptOuts": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(OptEmailNotificationEnum))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					raw := viewerSource(p).EmailOptOuts
					if len(raw) == 0 {
						return []string{}, nil
					}
					var optOuts []string
					if err := json.Unmarshal(raw, &optOuts); err != nil {
						return []string{}, nil
					}
					return optOuts, nil
				},
			},
		},
	})

	s.membershipType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ProjectMembershipType",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return membershipSource(p).ID.String(), nil
				},
			},
			"clientId": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: s.resolveMembershipClientID,
			},
			"role": &graphql.Field{
				Type: graphql.NewNonNull(RoleEnum),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return int(membershipSource(p).Role), nil
				},
			},
			"joinedAt": &graphql.Field{
				Type: graphql.NewNonNull(scalars.DateTime),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return membershipSource(p).JoinedAt, nil
				},
			},
			"memberId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return membershipSource(p).MemberID.String(), nil
				},
			},
			"addedById": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return optionalID(membershipSource(p).AddedByID), nil
				},
			},
		},
	})

	s.membershipListType = newCountListType("ProjectMembershipListType", s.membershipType)

	s.questionnaireType = graphql.NewObject(graphql.ObjectConfig{
		Name: "QuestionnaireType",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return questionnaireSource(p).ID.String(), nil
				},
			},
			"title": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return questionnaireSource(p).Title, nil
				},
			},
			"projectId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return questionnaireSource(p).ProjectID.String(), nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(scalars.DateTime),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return questionnaireSource(p).CreatedAt, nil
				},
			},
			"modifiedAt": &graphql.Field{
				Type: graphql.NewNonNull(scalars.DateTime),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return questionnaireSource(p).ModifiedAt, nil
				},
			},
			"createdById": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return optionalID(questionnaireSource(p).CreatedByID), nil
				},
			},
			"modifiedById": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return optionalID(questionnaireSource(p).ModifiedByID), nil
				},
			},
		},
	})

	s.questionnaireListType = newCountListType("QuestionnaireListType", s.questionnaireType)

	s.projectType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ProjectType",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return projectSourceOf(p).Project.ID.String(), nil
				},
			},
			"title": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return projectSourceOf(p).Project.Title, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(scalars.DateTime),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return projectSourceOf(p).Project.CreatedAt, nil
				},
			},
			"modifiedAt": &graphql.Field{
				Type: graphql.NewNonNull(scalars.DateTime),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return projectSourceOf(p).Project.ModifiedAt, nil
				},
			},
			"createdById": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return optionalID(projectSourceOf(p).Project.CreatedByID), nil
				},
			},
			"modifiedById": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return optionalID(projectSourceOf(p).Project.ModifiedByID), nil
				},
			},
			"currentUserRole": &graphql.Field{
				Type: RoleEnum,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					role := projectSourceOf(p).Role
					if role == nil {
						return nil, nil
					}
					return int(*role), nil
				},
			},
			"members": &graphql.Field{
				Type:    graphql.NewNonNull(s.membershipListType),
				Args:    listArgs(),
				Resolve: s.resolveProjectMembers,
			},
		},
	})

	s.projectListType = newCountListType("ProjectListType", s.projectType)
}

func newCountListType(name string, item *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"count": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"items": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(item)))},
		},
	})
}

// listArgs are the shared filter arguments of every CountList field.
func listArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"search": &graphql.ArgumentConfig{Type: graphql.String},
		"offset": &graphql.ArgumentConfig{Type: graphql.Int},
		"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
	}
}

// Payload envelopes. ok defaults true; validation failures flip it and carry
// the flattened error tree.

func newResponseType(name string, result graphql.Output) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"ok":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"errors": &graphql.Field{Type: scalars.GenericScalar},
			"result": &graphql.Field{Type: result},
		},
	})
}

func newEmptyResponseType(name string) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"ok":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"errors": &graphql.Field{Type: scalars.GenericScalar},
		},
	})
}

func okPayload(result any) map[string]any {
	return map[string]any{"ok": true, "errors": nil, "result": result}
}

func errorPayload(records []ErrorRecord) map[string]any {
	return map[string]any{"ok": false, "errors": RecordsToMaps(records), "result": nil}
}

// deniedPayload is the recovered shape of a PermissionError.
func deniedPayload() map[string]any {
	return map[string]any{"ok": false, "errors": nil, "result": nil}
}

func optionalID(id *snowflake.ID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// Source accessors keep the per-field resolvers short. A mismatched source is
// a programming error and panics on purpose.

func viewerSource(p graphql.ResolveParams) *authdomain.User {
	return p.Source.(*authdomain.User)
}

func membershipSource(p graphql.ResolveParams) projectdomain.Membership {
	switch source := p.Source.(type) {
	case projectdomain.Membership:
		return source
	case *projectdomain.Membership:
		return *source
	}
	panic("graph: membership field resolved against a non-membership source")
}

func questionnaireSource(p graphql.ResolveParams) questionnairedomain.Questionnaire {
	switch source := p.Source.(type) {
	case questionnairedomain.Questionnaire:
		return source
	case *questionnairedomain.Questionnaire:
		return *source
	}
	panic("graph: questionnaire field resolved against a non-questionnaire source")
}

func projectSourceOf(p graphql.ResolveParams) *projectSource {
	return p.Source.(*projectSource)
}
