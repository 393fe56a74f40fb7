package graph

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/inqira/inqira/internal/authorization"
	"github.com/inqira/inqira/internal/forms"
	"github.com/inqira/inqira/internal/graph/scalars"
	projectdomain "github.com/inqira/inqira/internal/project/domain"
	"github.com/inqira/inqira/internal/scope"
)

// clientIDEntity keys the correlation-id cache for membership rows.
const clientIDEntity = "Membership"

func (s *Schema) buildPrivateQuery() (*graphql.Object, error) {
	scopeQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProjectScopeQuery",
		Fields: graphql.Fields{
			"project": &graphql.Field{
				Type: graphql.NewNonNull(s.projectType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source, nil
				},
			},
			"questionnaires": &graphql.Field{
				Type:    graphql.NewNonNull(s.questionnaireListType),
				Args:    listArgs(),
				Resolve: s.resolveQuestionnaires,
			},
			"questionnaire": &graphql.Field{
				Type: s.questionnaireType,
				Args: graphql.FieldConfigArgument{
					"pk": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveQuestionnaire,
			},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "PrivateQuery",
		Fields: graphql.Fields{
			"projects": &graphql.Field{
				Type:    graphql.NewNonNull(s.projectListType),
				Args:    listArgs(),
				Resolve: s.resolveProjects,
			},
			"projectScope": &graphql.Field{
				Type: scopeQuery,
				Args: graphql.FieldConfigArgument{
					"pk": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveProjectScope,
			},
		},
	}), nil
}

func (s *Schema) buildPrivateMutation() (*graphql.Object, error) {
	passwordChangeInput, err := s.transformer.InputObject(passwordChangeForm)
	if err != nil {
		return nil, err
	}
	userMeInput, err := s.transformer.PartialInputObject(userMeForm)
	if err != nil {
		return nil, err
	}
	projectInput, err := s.transformer.InputObject(projectForm)
	if err != nil {
		return nil, err
	}

	scopeMutation, err := s.buildProjectScopeMutation()
	if err != nil {
		return nil, err
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "PrivateMutation",
		Fields: graphql.Fields{
			"changeUserPassword": &graphql.Field{
				Type: graphql.NewNonNull(newEmptyResponseType("ChangeUserPasswordResponseType")),
				Args: graphql.FieldConfigArgument{
					"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(passwordChangeInput)},
				},
				Resolve: s.resolveChangePassword,
			},
			"updateMe": &graphql.Field{
				Type: graphql.NewNonNull(newResponseType("UpdateMeResponseType", s.userMeType)),
				Args: graphql.FieldConfigArgument{
					"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userMeInput)},
				},
				Resolve: s.resolveUpdateMe,
			},
			"createProject": &graphql.Field{
				Type: graphql.NewNonNull(newResponseType("CreateProjectResponseType", s.projectType)),
				Args: graphql.FieldConfigArgument{
					"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(projectInput)},
				},
				Resolve: s.resolveCreateProject,
			},
			"projectScope": &graphql.Field{
				Type: scopeMutation,
				Args: graphql.FieldConfigArgument{
					"pk": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveProjectScope,
			},
		},
	}), nil
}

func (s *Schema) buildProjectScopeMutation() (*graphql.Object, error) {
	projectInput, err := s.transformer.InputObject(projectForm)
	if err != nil {
		return nil, err
	}
	membershipInput, err := s.transformer.PartialInputObject(membershipForm)
	if err != nil {
		return nil, err
	}
	questionnaireInput, err := s.transformer.InputObject(questionnaireForm)
	if err != nil {
		return nil, err
	}
	questionnairePartialInput, err := s.transformer.PartialInputObject(questionnaireForm)
	if err != nil {
		return nil, err
	}

	membershipsResponse := graphql.NewObject(graphql.ObjectConfig{
		Name: "UpdateProjectMembershipsResponseType",
		Fields: graphql.Fields{
			"ok":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"errors": &graphql.Field{Type: scalars.GenericScalar},
			"results": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(s.membershipType)),
			},
			"deleted": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(s.membershipType)),
			},
		},
	})

	questionnairesResponse := graphql.NewObject(graphql.ObjectConfig{
		Name: "DeleteQuestionnaireResponseType",
		Fields: graphql.Fields{
			"ok":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"errors": &graphql.Field{Type: scalars.GenericScalar},
			"results": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(s.questionnaireType)),
			},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "ProjectScopeMutation",
		Fields: graphql.Fields{
			"updateProject": &graphql.Field{
				Type: graphql.NewNonNull(newResponseType("UpdateProjectResponseType", s.projectType)),
				Args: graphql.FieldConfigArgument{
					"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(projectInput)},
				},
				Resolve: s.resolveUpdateProject,
			},
			"updateMemberships": &graphql.Field{
				Type: graphql.NewNonNull(membershipsResponse),
				Args: graphql.FieldConfigArgument{
					"items": &graphql.ArgumentConfig{
						Type: graphql.NewList(graphql.NewNonNull(membershipInput)),
					},
					"deleteIds": &graphql.ArgumentConfig{
						Type: graphql.NewList(graphql.NewNonNull(graphql.ID)),
					},
				},
				Resolve: s.resolveUpdateMemberships,
			},
			"createQuestionnaire": &graphql.Field{
				Type: graphql.NewNonNull(newResponseType("CreateQuestionnaireResponseType", s.questionnaireType)),
				Args: graphql.FieldConfigArgument{
					"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(questionnaireInput)},
				},
				Resolve: s.resolveCreateQuestionnaire,
			},
			"updateQuestionnaire": &graphql.Field{
				Type: graphql.NewNonNull(newResponseType("UpdateQuestionnaireResponseType", s.questionnaireType)),
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(questionnairePartialInput)},
				},
				Resolve: s.resolveUpdateQuestionnaire,
			},
			"deleteQuestionnaire": &graphql.Field{
				Type: graphql.NewNonNull(questionnairesResponse),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveDeleteQuestionnaire,
			},
		},
	}), nil
}

func (s *Schema) resolveProjects(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}

	search, offset, limit := listFilterArgs(p)
	items, count, err := s.projects.ListForUser(p.Context, rc.Viewer.ID, projectdomain.ListFilter{
		Search: search,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	sources := make([]*projectSource, 0, len(items))
	for i := range items {
		role := items[i].CurrentUserRole
		sources = append(sources, &projectSource{
			Project: &items[i].Project,
			Role:    &role,
		})
	}
	return countList(count, sources), nil
}

// resolveProjectScope looks the project up, binds the request scope to it,
// and hands the project on as the subtree source. An unknown or inaccessible
// pk resolves to null; binding against an already-bound different project is
// a hard conflict.
func (s *Schema) resolveProjectScope(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}

	projectID, err := argPK(p, "pk")
	if err != nil {
		return nil, nil
	}

	item, err := s.projects.GetForUser(p.Context, rc.Viewer.ID, projectID)
	if err != nil {
		if errors.Is(err, projectdomain.ErrNotFound) || errors.Is(err, projectdomain.ErrProjectNotFound) {
			return nil, nil
		}
		return nil, err
	}

	viewerID := rc.Viewer.ID
	if err := rc.Scope.Bind(p.Context, &viewerID, &item.Project); err != nil {
		return nil, err
	}

	role := rc.Scope.Role()
	return &projectSource{Project: &item.Project, Role: role}, nil
}

func (s *Schema) resolveCreateProject(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}

	data := formData(projectForm, argObject(p, "data"))
	cleaned, ferrs := projectForm.Validate(data, false)
	if ferrs != nil {
		return errorPayload(TransformErrors(ferrs, data)), nil
	}

	project, err := s.projects.Create(p.Context, rc.Viewer.ID, projectdomain.CreateProjectRequest{
		Title: argString(cleaned, "title"),
	})
	if err != nil {
		return nil, err
	}

	role := projectdomain.RoleAdmin
	return okPayload(&projectSource{Project: project, Role: &role}), nil
}

func (s *Schema) resolveUpdateProject(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}
	if err := rc.Scope.Require(authorization.PermUpdateProject); err != nil {
		return s.recoverPermission(err, deniedPayload())
	}

	data := formData(projectForm, argObject(p, "data"))
	cleaned, ferrs := projectForm.Validate(data, false)
	if ferrs != nil {
		return errorPayload(TransformErrors(ferrs, data)), nil
	}

	title := argString(cleaned, "title")
	project, err := s.projects.Update(p.Context, rc.Viewer.ID, rc.Scope.Project().ID, projectdomain.UpdateProjectRequest{
		Title: &title,
	})
	if err != nil {
		return nil, err
	}

	return okPayload(&projectSource{Project: project, Role: rc.Scope.Role()}), nil
}

func (s *Schema) resolveUpdateMemberships(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}
	denied := map[string]any{"ok": false, "errors": nil, "results": nil, "deleted": nil}
	if err := rc.Scope.Require(authorization.PermUpdateMemberships); err != nil {
		return s.recoverPermission(err, denied)
	}

	projectID := rc.Scope.Project().ID
	rawItems, _ := p.Args["items"].([]any)

	results := make([]projectdomain.Membership, 0, len(rawItems))
	itemErrs := make([]forms.FieldErrors, len(rawItems))
	failed := false

	for pos, raw := range rawItems {
		obj, ok := raw.(map[string]any)
		if !ok {
			itemErrs[pos] = forms.FieldErrors{}.Add(forms.NonFieldErrors, []string{"Invalid data. Expected a dictionary."})
			failed = true
			continue
		}

		data := formData(membershipForm, obj)
		cleaned, ferrs := membershipForm.Validate(data, true)
		if ferrs != nil {
			itemErrs[pos] = ferrs
			failed = true
			continue
		}

		req := membershipRequestFromClean(cleaned)
		membership, err := s.projects.UpsertMembership(p.Context, rc.Viewer.ID, projectID, req)
		if err != nil {
			switch {
			case errors.Is(err, projectdomain.ErrMembershipExists):
				itemErrs[pos] = forms.FieldErrors{}.Add(forms.NonFieldErrors, []string{"Membership already exists."})
			case errors.Is(err, projectdomain.ErrInvalidUser):
				itemErrs[pos] = forms.FieldErrors{}.Add("member", []string{"Invalid member."})
			case errors.Is(err, projectdomain.ErrNotFound):
				itemErrs[pos] = forms.FieldErrors{}.Add("id", []string{"Membership not found."})
			default:
				return nil, err
			}
			failed = true
			continue
		}

		if clientID, ok := cleaned["client_id"].(string); ok {
			s.clientIDs.Set(rc.RequestID, clientIDEntity, membership.ID, clientID)
		}
		results = append(results, *membership)
	}

	deleteIDs, err := argIDList(p, "deleteIds")
	if err != nil {
		return nil, err
	}
	var deleted []projectdomain.Membership
	if len(deleteIDs) > 0 {
		deleted, err = s.projects.DeleteMemberships(p.Context, projectID, deleteIDs)
		if err != nil {
			return nil, err
		}
	}

	payload := map[string]any{
		"ok":      !failed,
		"errors":  nil,
		"results": results,
		"deleted": deleted,
	}
	if failed {
		bulk := forms.FieldErrors{}.Add("items", itemErrs)
		payload["errors"] = RecordsToMaps(TransformErrors(bulk, map[string]any{"items": rawItems}))
	}
	return payload, nil
}

func membershipRequestFromClean(cleaned map[string]any) projectdomain.MembershipRequest {
	var req projectdomain.MembershipRequest
	if id, ok := cleaned["id"].(snowflake.ID); ok {
		req.ID = &id
	}
	if member, ok := cleaned["member"].(snowflake.ID); ok {
		req.MemberID = &member
	}
	if raw, ok := cleaned["role"]; ok {
		if value, ok := raw.(int); ok {
			role := projectdomain.Role(value)
			req.Role = &role
		}
	}
	return req
}

// resolveProjectMembers serves the members field of a project. Membership
// rows are only visible inside the project's own scope; anywhere else the
// field resolves to an empty list.
func (s *Schema) resolveProjectMembers(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}

	source := projectSourceOf(p)
	if !rc.Scope.Bound() || rc.Scope.Project().ID != source.Project.ID {
		return emptyCountList(), nil
	}

	search, offset, limit := listFilterArgs(p)
	memberships, count, err := s.projects.ListMemberships(p.Context, source.Project.ID, projectdomain.MembershipListFilter{
		Search: search,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return countList(count, memberships), nil
}

// resolveMembershipClientID echoes the client-supplied correlation id of a
// row created in this request, falling back to the storage id.
func (s *Schema) resolveMembershipClientID(p graphql.ResolveParams) (any, error) {
	membership := membershipSource(p)
	if rc, ok := RequestContextFrom(p.Context); ok {
		if clientID, hit := s.clientIDs.Get(rc.RequestID, clientIDEntity, membership.ID); hit {
			return clientID, nil
		}
	}
	return membership.ID.String(), nil
}

// recoverPermission turns a denied permission into an {ok:false} payload and
// lets every other error propagate.
func (s *Schema) recoverPermission(err error, payload map[string]any) (any, error) {
	var denied *scope.PermissionError
	if errors.As(err, &denied) {
		s.log.Debug("permission denied", zap.String("permission", denied.Permission))
		return payload, nil
	}
	return nil, err
}
