package schema

import (
	"errors"
	"fmt"
)

// ErrNoMatchingRule is returned when no resolver rule claims a field.
var ErrNoMatchingRule = errors.New("no matching type rule")

// ConfigurationError reports an entity model that cannot be turned into a
// table specification. It is raised at build time and is always fatal.
type ConfigurationError struct {
	Entity string
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error"
	if e.Entity != "" {
		msg += " in entity " + e.Entity
	}
	if e.Field != "" {
		msg += " field " + e.Field
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ExecutionError reports a DDL statement that failed against the database.
type ExecutionError struct {
	Table     string
	Statement string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to execute statement for table %s: %v", e.Table, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
