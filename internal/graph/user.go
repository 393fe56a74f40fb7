package graph

import (
	"errors"

	"github.com/graphql-go/graphql"

	authdomain "github.com/inqira/inqira/internal/auth/domain"
	"github.com/inqira/inqira/internal/forms"
)

func (s *Schema) buildPublicMutation() (*graphql.Object, error) {
	registerInput, err := s.transformer.InputObject(registerForm)
	if err != nil {
		return nil, err
	}
	loginInput, err := s.transformer.InputObject(loginForm)
	if err != nil {
		return nil, err
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "PublicMutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type: graphql.NewNonNull(newResponseType("RegisterResponseType", s.userMeType)),
				Args: graphql.FieldConfigArgument{
					"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(registerInput)},
				},
				Resolve: s.resolveRegister,
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(newResponseType("LoginResponseType", s.userMeType)),
				Args: graphql.FieldConfigArgument{
					"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(loginInput)},
				},
				Resolve: s.resolveLogin,
			},
			"logout": &graphql.Field{
				Type:    graphql.NewNonNull(newEmptyResponseType("LogoutResponseType")),
				Resolve: s.resolveLogout,
			},
		},
	}), nil
}

func (s *Schema) resolveMe(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}
	if !rc.Authenticated() {
		return nil, nil
	}
	return rc.Viewer, nil
}

func (s *Schema) resolveRegister(p graphql.ResolveParams) (any, error) {
	data := formData(registerForm, argObject(p, "data"))
	cleaned, ferrs := registerForm.Validate(data, false)
	if ferrs != nil {
		return errorPayload(TransformErrors(ferrs, data)), nil
	}

	user, err := s.auth.Register(p.Context, authdomain.RegisterRequest{
		Email:     argString(cleaned, "email"),
		Password:  argString(cleaned, "password"),
		FirstName: argString(cleaned, "first_name"),
		LastName:  argString(cleaned, "last_name"),
	})
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrUserExists):
			ferrs := forms.FieldErrors{}.Add("email", []string{"User with this email already exists."})
			return errorPayload(TransformErrors(ferrs, data)), nil
		case errors.Is(err, authdomain.ErrInvalidCredentials):
			ferrs := forms.FieldErrors{}.Add(forms.NonFieldErrors, []string{"Invalid email or password."})
			return errorPayload(TransformErrors(ferrs, data)), nil
		}
		return nil, err
	}

	return okPayload(user), nil
}

func (s *Schema) resolveLogin(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}

	data := formData(loginForm, argObject(p, "data"))
	cleaned, ferrs := loginForm.Validate(data, false)
	if ferrs != nil {
		return errorPayload(TransformErrors(ferrs, data)), nil
	}

	result, err := s.auth.Login(p.Context, authdomain.LoginRequest{
		Email:    argString(cleaned, "email"),
		Password: argString(cleaned, "password"),
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			ferrs := forms.FieldErrors{}.Add(forms.NonFieldErrors, []string{"Invalid email or password."})
			return errorPayload(TransformErrors(ferrs, data)), nil
		}
		return nil, err
	}

	rc.Viewer = result.User
	rc.SetSessionToken = result.RawToken
	rc.SetSessionExpiry = result.ExpiresAt
	return okPayload(result.User), nil
}

func (s *Schema) resolveLogout(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}
	if !rc.Authenticated() {
		return map[string]any{"ok": false, "errors": nil}, nil
	}

	if err := s.auth.Logout(p.Context, rc.RawToken); err != nil &&
		!errors.Is(err, authdomain.ErrInvalidSession) {
		return nil, err
	}
	rc.Viewer = nil
	rc.ClearSessionToken = true
	return map[string]any{"ok": true, "errors": nil}, nil
}

func (s *Schema) resolveChangePassword(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}

	data := formData(passwordChangeForm, argObject(p, "data"))
	cleaned, ferrs := passwordChangeForm.Validate(data, false)
	if ferrs != nil {
		return errorPayload(TransformErrors(ferrs, data)), nil
	}

	err = s.auth.ChangePassword(p.Context, rc.Viewer.ID, authdomain.ChangePasswordRequest{
		OldPassword: argString(cleaned, "old_password"),
		NewPassword: argString(cleaned, "new_password"),
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			ferrs := forms.FieldErrors{}.Add("old_password", []string{"Invalid old password."})
			return errorPayload(TransformErrors(ferrs, data)), nil
		}
		return nil, err
	}

	return map[string]any{"ok": true, "errors": nil}, nil
}

func (s *Schema) resolveUpdateMe(p graphql.ResolveParams) (any, error) {
	rc, err := requireRequestContext(p)
	if err != nil {
		return nil, err
	}

	data := formData(userMeForm, argObject(p, "data"))
	cleaned, ferrs := userMeForm.Validate(data, true)
	if ferrs != nil {
		return errorPayload(TransformErrors(ferrs, data)), nil
	}

	req := authdomain.UpdateMeRequest{
		FirstName: stringPtrFromClean(cleaned, "first_name"),
		LastName:  stringPtrFromClean(cleaned, "last_name"),
	}
	if raw, ok := cleaned["email_opt_outs"]; ok {
		optOuts := make([]string, 0)
		if items, ok := raw.([]any); ok {
			for _, item := range items {
				if s, ok := item.(string); ok {
					optOuts = append(optOuts, s)
				}
			}
		}
		req.EmailOptOuts = &optOuts
	}

	user, err := s.auth.UpdateMe(p.Context, rc.Viewer.ID, req)
	if err != nil {
		return nil, err
	}
	rc.Viewer = user
	return okPayload(user), nil
}
