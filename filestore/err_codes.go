package filestore

// Error codes for filestore operations.
const (
	// CodeFileNotFound is returned when no object exists under the requested key.
	CodeFileNotFound = "FILE_NOT_FOUND"

	// CodeUnsupportedMethod is returned by the request adapter for methods it cannot map.
	CodeUnsupportedMethod = "UNSUPPORTED_METHOD"
)
