package graph

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/inqira/inqira/internal/authorization"
	"github.com/inqira/inqira/internal/forms"
	questionnairedomain "github.com/inqira/inqira/internal/questionnaire/domain"
)

func (s *Schema) resolveQuestionnaires(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}
	if ok, err := rc.Scope.HasPermission(authorization.PermViewQuestionnaire); err != nil || !ok {
		return emptyCountList(), err
	}

	search, offset, limit := listFilterArgs(p)
	items, count, err := s.questionnaires.List(p.Context, rc.Scope.Project().ID, questionnairedomain.ListFilter{
		Search: search,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return countList(count, items), nil
}

func (s *Schema) resolveQuestionnaire(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}
	if ok, err := rc.Scope.HasPermission(authorization.PermViewQuestionnaire); err != nil || !ok {
		return nil, err
	}

	questionnaireID, err := argPK(p, "pk")
	if err != nil {
		return nil, nil
	}

	questionnaire, err := s.questionnaires.Get(p.Context, rc.Scope.Project().ID, questionnaireID)
	if err != nil {
		if errors.Is(err, questionnairedomain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return questionnaire, nil
}

func (s *Schema) resolveCreateQuestionnaire(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}
	if err := rc.Scope.Require(authorization.PermCreateQuestionnaire); err != nil {
		return s.recoverPermission(err, deniedPayload())
	}

	data := formData(questionnaireForm, argObject(p, "data"))
	cleaned, ferrs := questionnaireForm.Validate(data, false)
	if ferrs != nil {
		return errorPayload(TransformErrors(ferrs, data)), nil
	}

	questionnaire, err := s.questionnaires.Create(p.Context, rc.Viewer.ID, rc.Scope.Project().ID, questionnairedomain.CreateRequest{
		Title: argString(cleaned, "title"),
	})
	if err != nil {
		return nil, err
	}
	return okPayload(questionnaire), nil
}

func (s *Schema) resolveUpdateQuestionnaire(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}
	if err := rc.Scope.Require(authorization.PermUpdateQuestionnaire); err != nil {
		return s.recoverPermission(err, deniedPayload())
	}

	questionnaireID, idErr := argPK(p, "id")

	data := formData(questionnaireForm, argObject(p, "data"))
	cleaned, ferrs := questionnaireForm.Validate(data, true)
	if ferrs != nil {
		return errorPayload(TransformErrors(ferrs, data)), nil
	}
	if idErr != nil {
		ferrs := forms.FieldErrors{}.Add("id", []string{"Incorrect type. Expected pk value."})
		return errorPayload(TransformErrors(ferrs, data)), nil
	}

	questionnaire, err := s.questionnaires.Update(p.Context, rc.Viewer.ID, rc.Scope.Project().ID, questionnaireID, questionnairedomain.UpdateRequest{
		ID:    questionnaireID,
		Title: stringPtrFromClean(cleaned, "title"),
	})
	if err != nil {
		if errors.Is(err, questionnairedomain.ErrNotFound) {
			ferrs := forms.FieldErrors{}.Add(forms.NonFieldErrors, []string{"Questionnaire not found."})
			return errorPayload(TransformErrors(ferrs, data)), nil
		}
		return nil, err
	}
	return okPayload(questionnaire), nil
}

func (s *Schema) resolveDeleteQuestionnaire(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}
	denied := map[string]any{"ok": false, "errors": nil, "results": nil}
	if err := rc.Scope.Require(authorization.PermDeleteQuestionnaire); err != nil {
		return s.recoverPermission(err, denied)
	}

	questionnaireID, idErr := argPK(p, "id")
	if idErr != nil {
		ferrs := forms.FieldErrors{}.Add("id", []string{"Incorrect type. Expected pk value."})
		return map[string]any{
			"ok":      false,
			"errors":  RecordsToMaps(TransformErrors(ferrs, nil)),
			"results": nil,
		}, nil
	}

	questionnaire, err := s.questionnaires.Delete(p.Context, rc.Scope.Project().ID, questionnaireID)
	if err != nil {
		if errors.Is(err, questionnairedomain.ErrNotFound) {
			ferrs := forms.FieldErrors{}.Add(forms.NonFieldErrors, []string{"Questionnaire not found."})
			return map[string]any{
				"ok":      false,
				"errors":  RecordsToMaps(TransformErrors(ferrs, nil)),
				"results": nil,
			}, nil
		}
		return nil, err
	}

	return map[string]any{
		"ok":      true,
		"errors":  nil,
		"results": []questionnairedomain.Questionnaire{*questionnaire},
	}, nil
}
