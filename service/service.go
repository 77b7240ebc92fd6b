package service

import (
	"aerograph/core"
)

// Services is the service container handed to the HTTP layer
type Services struct {
	Logs       *LogService
	Validation *ValidationService
}

// NewServices wires services around the process's single logger and validator
func NewServices(logger *core.ErrorLogger, validator *core.Validator) *Services {
	return &Services{
		Logs:       NewLogService(logger),
		Validation: NewValidationService(validator),
	}
}
