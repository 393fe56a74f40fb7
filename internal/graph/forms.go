package graph

import "github.com/inqira/inqira/internal/forms"

// Input descriptors for every mutation. One instance each so the transformer
// cache and validation always see the same descriptor.

var projectForm = &forms.Form{
	Name: "Project",
	Fields: []forms.Field{
		{Name: "title", Kind: forms.KindString, Required: true, MaxLength: 255},
	},
}

var membershipForm = &forms.Form{
	Name: "ProjectMembership",
	Fields: []forms.Field{
		{Name: "id", Kind: forms.KindID},
		{Name: "client_id", Kind: forms.KindString},
		{Name: "member", Kind: forms.KindID, Required: true},
		{Name: "role", Kind: forms.KindEnum},
	},
}

var questionnaireForm = &forms.Form{
	Name: "Questionnaire",
	Fields: []forms.Field{
		{Name: "title", Kind: forms.KindString, Required: true, MaxLength: 255},
	},
}

var registerForm = &forms.Form{
	Name: "Register",
	Fields: []forms.Field{
		{Name: "email", Kind: forms.KindString, Required: true, MaxLength: 254},
		{Name: "password", Kind: forms.KindString, Required: true, MaxLength: 128},
		{Name: "first_name", Kind: forms.KindString, MaxLength: 150},
		{Name: "last_name", Kind: forms.KindString, MaxLength: 150},
	},
}

var loginForm = &forms.Form{
	Name: "Login",
	Fields: []forms.Field{
		{Name: "email", Kind: forms.KindString, Required: true, MaxLength: 254},
		{Name: "password", Kind: forms.KindString, Required: true, MaxLength: 128},
	},
}

var passwordChangeForm = &forms.Form{
	Name: "PasswordChange",
	Fields: []forms.Field{
		{Name: "old_password", Kind: forms.KindString, Required: true, MaxLength: 128},
		{Name: "new_password", Kind: forms.KindString, Required: true, MaxLength: 128},
	},
}

var userMeForm = &forms.Form{
	Name: "UserMe",
	Fields: []forms.Field{
		{Name: "first_name", Kind: forms.KindString, MaxLength: 150},
		{Name: "last_name", Kind: forms.KindString, MaxLength: 150},
		{
			Name: "email_opt_outs",
			Kind: forms.KindMultiChoice,
			Child: &forms.Field{
				Kind:     forms.KindEnum,
				EnumName: "UserEmailOptOuts",
			},
			DefaultFunc: func() any { return []any{} },
		},
	},
}
