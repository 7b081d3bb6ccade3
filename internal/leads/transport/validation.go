package transport

import (
	"regexp"

	"lead_portal_backend/internal/leads/domain"
	"lead_portal_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

var phoneFormat = regexp.MustCompile(`^\+?[0-9\s\-()]{10,20}$`)

// RegisterValidations installs the lead-specific tags used by the DTOs.
func RegisterValidations(val *validator.Validator) error {
	rules := map[string]playground.Func{
		"lead_status": validator.OneOfFunc(func(s string) bool {
			return domain.IsKnownStatus(domain.Status(s))
		}),
		"lead_priority": validator.OneOfFunc(domain.IsKnownPriority),
		"lead_role":     validator.OneOfFunc(domain.IsKnownRole),
		"lead_channel":  validator.OneOfFunc(domain.IsKnownChannel),
		"phone_format": func(fl playground.FieldLevel) bool {
			return phoneFormat.MatchString(fl.Field().String())
		},
	}

	for tag, fn := range rules {
		if err := val.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
