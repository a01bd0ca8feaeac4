package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *DocError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *DocError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Fetch errors

// FetchFailed reports a non-retryable fetch failure (4xx, bad scheme, oversize body).
func FetchFailed(url string, cause error) *DocError {
	return Wrap(cause, CategoryNetwork, SeverityWarning, "fetch failed").
		WithContext("url", url)
}

// FetchTransient reports a failure worth retrying (transport error, 5xx).
func FetchTransient(url string, cause error) *DocError {
	return WrapRetryable(cause, CategoryNetwork, SeverityWarning, "transient fetch failure").
		WithContext("url", url)
}

// Document errors

func ParseFailed(url string, cause error) *DocError {
	return Wrap(cause, CategoryParse, SeverityError, "failed to parse HTML").
		WithContext("url", url)
}

func PageFailed(path string, cause error) *DocError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "page processing failed").
		WithContext("path", path)
}

// NotFound reports a requested page or file that does not exist.
func NotFound(path string) *DocError {
	return New(CategoryNotFound, SeverityInfo, "not found").
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *DocError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
