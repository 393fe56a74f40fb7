package graph

import (
	"github.com/graphql-go/graphql"
)

// RoleEnum serializes membership roles by name, not storage value.
var RoleEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "ProjectMembershipRoleTypeEnum",
	Values: graphql.EnumValueConfigMap{
		"ADMIN":  &graphql.EnumValueConfig{Value: 0},
		"MEMBER": &graphql.EnumValueConfig{Value: 1},
	},
})

// OptEmailNotificationEnum lists the notification categories a user can opt
// out of.
var OptEmailNotificationEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "OptEmailNotificationTypeEnum",
	Values: graphql.EnumValueConfigMap{
		"NEWS_AND_OFFERS": &graphql.EnumValueConfig{Value: "NEWS_AND_OFFERS"},
	},
})

// NewEnumRegistry assembles the transformer's enum lookup table once at
// process start. Keys follow the <Model><CamelField> naming the descriptors
// derive.
func NewEnumRegistry() map[string]*graphql.Enum {
	return map[string]*graphql.Enum{
		"ProjectMembershipRole": RoleEnum,
		"UserEmailOptOuts":      OptEmailNotificationEnum,
	}
}
