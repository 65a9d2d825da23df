package llmconfig

import (
	"errors"

	"aura/internal/services"
)

// ReasonAPIKeyAlreadySet is the rejection reason InitializeFromEnvironment
// reports when a key is already configured.
const ReasonAPIKeyAlreadySet = "api key already set"

// Change reports the outcome of a resolver setter.
type Change struct {
	Applied bool   `json:"applied"`
	Field   string `json:"field"`
	Reason  string `json:"reason,omitempty"`
}

func applied(field string) Change {
	return Change{Applied: true, Field: field}
}

func rejected(field, reason string) Change {
	return Change{Field: field, Reason: reason}
}

// Err converts a rejected change into a validation error. Applied changes
// return nil.
func (c Change) Err() error {
	if c.Applied {
		return nil
	}
	return services.Wrap(services.ErrValidation, "llmconfig", c.Field, c.Reason, errors.New(c.Reason))
}
