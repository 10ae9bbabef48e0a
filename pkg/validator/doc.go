// Package validator provides composable validation rules that accumulate
// per-field errors instead of failing fast, so a caller can report every
// problem with a request at once.
//
//	err := validator.Apply(
//		validator.Required("name", req.Name),
//		validator.ValidEmail("email", req.Email),
//		validator.StrongPassword("password", req.Password, validator.DefaultPasswordStrength()),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//		// verrs.Get("email") -> field-level messages
//	}
package validator
