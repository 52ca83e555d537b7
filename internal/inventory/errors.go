package inventory

import "fmt"

const (
	configurationErrorTemplateConstant          = "invalid configuration: %s: %s"
	fileOperationErrorTemplateConstant          = "file operation failed: %s %s"
	fileOperationErrorWithCauseTemplateConstant = "file operation failed: %s %s: %s"
	fileOperationCreateDirectoryConstant        = "create directory"
	fileOperationCreateFileConstant             = "create file"
	fileOperationWriteFileConstant              = "write file"
)

// ConfigurationError reports invalid or missing input detected before any external call.
type ConfigurationError struct {
	FieldName string
	Message   string
}

// Error describes the configuration problem.
func (configurationError ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.FieldName, configurationError.Message)
}

// FileOperationError reports directory creation or file write failures.
type FileOperationError struct {
	Path      string
	Operation string
	Cause     error
}

// Error describes the failed file operation.
func (operationError FileOperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(fileOperationErrorTemplateConstant, operationError.Operation, operationError.Path)
	}
	return fmt.Sprintf(fileOperationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Path, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError FileOperationError) Unwrap() error {
	return operationError.Cause
}
