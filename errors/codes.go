package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Discovery errors (absorbed by task policy)
const (
	// ErrCodeResolutionTimeout indicates a name lookup did not complete in time.
	ErrCodeResolutionTimeout ErrorCode = "RESOLUTION_TIMEOUT"
	// ErrCodeNoAddress indicates a lookup completed without a usable address.
	ErrCodeNoAddress ErrorCode = "NO_ADDRESS"
	// ErrCodeRegistry indicates the service registry call failed or returned non-success.
	ErrCodeRegistry ErrorCode = "REGISTRY_ERROR"
	// ErrCodeHostResolution indicates a single member address lookup failed.
	ErrCodeHostResolution ErrorCode = "HOST_RESOLUTION_FAILED"
)

// Bootstrap errors (terminate the process)
const (
	// ErrCodeTemplateRead indicates the config template could not be read.
	ErrCodeTemplateRead ErrorCode = "TEMPLATE_READ_FAILED"
	// ErrCodeMissingPlaceholder indicates the template references unknown keys.
	ErrCodeMissingPlaceholder ErrorCode = "MISSING_PLACEHOLDER"
	// ErrCodeConfigWrite indicates the rendered config could not be written.
	ErrCodeConfigWrite ErrorCode = "CONFIG_WRITE_FAILED"
	// ErrCodeSpawn indicates the broker process could not be started.
	ErrCodeSpawn ErrorCode = "SPAWN_FAILED"
	// ErrCodeInvalidConfig indicates the bootstrapper settings are invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var fatalCodes = map[ErrorCode]bool{
	ErrCodeResolutionTimeout:  false,
	ErrCodeNoAddress:          false,
	ErrCodeRegistry:           false,
	ErrCodeHostResolution:     false,
	ErrCodeTemplateRead:       true,
	ErrCodeMissingPlaceholder: true,
	ErrCodeConfigWrite:        true,
	ErrCodeSpawn:              true,
	ErrCodeInvalidConfig:      true,
}

// IsFatalCode returns true if the error code must abort the bootstrap.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}
