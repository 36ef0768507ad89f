// Package validation validates configuration structs through
// go-playground/validator struct tags, reporting fields by their
// mapstructure (config file) names.
package validation
