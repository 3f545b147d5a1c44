package core

import "errors"

// Upload pipeline errors.
var (
	ErrNoFileUploaded      = errors.New("no file uploaded")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInsufficientContent = errors.New("file appears to be empty or contains insufficient text for summarization")
)

// Provider errors.
var (
	// ErrProviderUnavailable covers transport failures and non-2xx responses.
	ErrProviderUnavailable = errors.New("summarization provider unavailable")

	// ErrProviderMisconfigured is returned before any request when no credential is set.
	ErrProviderMisconfigured = errors.New("summarization provider not configured")

	// ErrEmptyResult is returned when the provider answered without a usable summary.
	ErrEmptyResult = errors.New("summarization provider returned no summary")

	ErrUnknownProvider = errors.New("unknown summarization provider")
)

// Forum and account errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrMissingFields      = errors.New("missing fields")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrForbidden          = errors.New("forbidden")
	ErrEmptyComment       = errors.New("empty comment")
	ErrSearchUnavailable  = errors.New("semantic search is not configured")
)
