// Package gateway is the HTTP boundary to the study-assistant backend.
//
// Every call follows the same path: attach the current bearer credential
// (except Authenticate, which is how the credential is obtained), send, and
// normalize the outcome. Non-2xx responses and transport failures are both
// returned as *apperrors.BackendError so callers never handle raw transport
// errors.
package gateway
