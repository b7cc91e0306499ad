// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Preview acquisition errors.
var (
	// ErrNoVideoID indicates a URL matched a video host pattern but carried
	// no extractable video id. Permanent: the link is never retried and
	// never falls back to a generic fetch.
	ErrNoVideoID = errors.New("video URL without extractable id")

	// ErrVideoNotFound indicates the video metadata API returned zero items
	// for the id. Permanent, no retry.
	ErrVideoNotFound = errors.New("video not found")

	// ErrRedirect indicates the target responded with a redirect, which the
	// fetcher treats as a failed attempt.
	ErrRedirect = errors.New("redirects not followed")
)

// Entity lookup errors.
var (
	// ErrNotFound is a generic not found error.
	ErrNotFound = errors.New("not found")

	// ErrChannelNotFound indicates a channel could not be found.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrUserNotFound indicates a user could not be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrLinkNotFound indicates a link could not be found.
	ErrLinkNotFound = errors.New("link not found")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidID indicates an invalid identifier.
	ErrInvalidID = errors.New("invalid id")
)

// Delivery errors.
var (
	// ErrEmailDelivery indicates the email provider rejected or failed a send.
	ErrEmailDelivery = errors.New("email delivery failed")

	// ErrDigestEnumeration indicates the dispatcher could not list the
	// recipient set at all; fatal for that dispatch run.
	ErrDigestEnumeration = errors.New("digest recipient enumeration failed")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
