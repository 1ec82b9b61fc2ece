package job

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Descriptor is the work-queue payload describing one job to process.
// All fields are required; JobID must reference an existing job record.
type Descriptor struct {
	JobID          string `json:"jobId" validate:"required"`
	SourceFilePath string `json:"filePath" validate:"required"`
	WorkspaceID    string `json:"workspaceId" validate:"required"`
	UserID         string `json:"userId" validate:"required"`
}

var descriptorValidator = validator.New()

// Validate checks that all required descriptor fields are present.
func (d Descriptor) Validate() error {
	if err := descriptorValidator.Struct(d); err != nil {
		return fmt.Errorf("invalid job descriptor: %w", err)
	}
	return nil
}
