package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	staffRoleTag  = "staffrole"
	staffRoleText = "role must be either 'instructor' or 'admin'"
)

func init() {
	_ = core.Validate.RegisterValidation(staffRoleTag, staffRoleValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, staffRoleTag, staffRoleText)
}

// staffRoleValidation only allows the instructor and admin roles.
func staffRoleValidation(fl validator.FieldLevel) bool {
	role := Role(fl.Field().String())
	for _, r := range StaffRoles {
		if role == r {
			return true
		}
	}
	return false
}
