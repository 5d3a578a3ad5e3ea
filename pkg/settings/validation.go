package settings

import "strings"

// Error keys reported by admin form validation.
const (
	ErrKeyMandatory       = "form.legende.mandatory"
	ErrKeyNoInteger       = "form.error.nointeger"
	ErrKeyIntegerBetween  = "error.integer.between"
	ErrKeyIntegerPositive = "error.integer.positive"
	ErrKeyTooLong         = "form.error.toolong"
	ErrKeyInvalidURL      = "error.url.not.valid"
)

// FieldError is a validation failure of one form field.
type FieldError struct {
	Field string   `json:"field"`
	Key   string   `json:"key"`
	Args  []string `json:"args,omitempty"`
}

// FieldErrors collects all failures of a form.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Key
	}
	return "invalid settings: " + strings.Join(parts, ", ")
}

// Has reports whether field failed with key.
func (e FieldErrors) Has(field, key string) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Key == key {
			return true
		}
	}
	return false
}
