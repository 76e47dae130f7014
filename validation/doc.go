// Package validation validates kafkaboot settings.
//
// Struct tag validation (go-playground/validator) covers per-field rules;
// the Validator collector covers cross-field rules.
//
//	type Settings struct {
//	    Strategy string `mapstructure:"strategy" validate:"oneof=env dns registry"`
//	}
//	err := validation.Validate(s)
package validation
