package config

import "fmt"

// ConfigurationError describes a setting that prevents startup.
type ConfigurationError struct {
	Field  string
	Reason string
	Value  string
}

func (e ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("configuration error for %s: %s (value: %s)", e.Field, e.Reason, e.Value)
}

func (e ConfigurationError) Code() string {
	return "CONFIGURATION_ERROR"
}

func (e ConfigurationError) Message() string {
	return e.Reason
}

func (e ConfigurationError) Temporary() bool {
	return false
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(field, reason, value string) error {
	return ConfigurationError{
		Field:  field,
		Reason: reason,
		Value:  value,
	}
}

// IsConfigurationError determines if an error is configuration-related
func IsConfigurationError(err error) bool {
	_, ok := err.(ConfigurationError)
	return ok
}
