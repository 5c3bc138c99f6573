// Package validation validates decoded command arguments with
// go-playground/validator struct tags and reports failures as
// errors.AppError values with per-field details.
package validation
