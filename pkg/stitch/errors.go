package stitch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================================
// Service Error Codes
// ============================================================================

// ServiceErrorCode is the error_code string reported by the Stitch backend in
// its error envelope. Codes the client does not recognise map to
// ServiceErrorCodeUnknown rather than failing classification.
type ServiceErrorCode string

const (
	ServiceErrorCodeMissingAuthReq             ServiceErrorCode = "MissingAuthReq"
	ServiceErrorCodeInvalidSession             ServiceErrorCode = "InvalidSession"
	ServiceErrorCodeUserAppDomainMismatch      ServiceErrorCode = "UserAppDomainMismatch"
	ServiceErrorCodeDomainNotAllowed           ServiceErrorCode = "DomainNotAllowed"
	ServiceErrorCodeReadSizeLimitExceeded      ServiceErrorCode = "ReadSizeLimitExceeded"
	ServiceErrorCodeInvalidParameter           ServiceErrorCode = "InvalidParameter"
	ServiceErrorCodeMissingParameter           ServiceErrorCode = "MissingParameter"
	ServiceErrorCodeServiceNotFound            ServiceErrorCode = "ServiceNotFound"
	ServiceErrorCodeFunctionNotFound           ServiceErrorCode = "FunctionNotFound"
	ServiceErrorCodeFunctionExecutionError     ServiceErrorCode = "FunctionExecutionError"
	ServiceErrorCodeNoMatchingRule             ServiceErrorCode = "NoMatchingRule"
	ServiceErrorCodeInternalServerError        ServiceErrorCode = "InternalServerError"
	ServiceErrorCodeAuthProviderNotFound       ServiceErrorCode = "AuthProviderNotFound"
	ServiceErrorCodeValueNotFound              ServiceErrorCode = "ValueNotFound"
	ServiceErrorCodeRestrictedHost             ServiceErrorCode = "RestrictedHost"
	ServiceErrorCodeHTTPError                  ServiceErrorCode = "HTTPError"
	ServiceErrorCodeExecutionTimeLimitExceeded ServiceErrorCode = "ExecutionTimeLimitExceeded"
	ServiceErrorCodeUserNotFound               ServiceErrorCode = "UserNotFound"
	ServiceErrorCodeUserDisabled               ServiceErrorCode = "UserDisabled"
	ServiceErrorCodeUserAlreadyConfirmed       ServiceErrorCode = "UserAlreadyConfirmed"
	ServiceErrorCodeUnknown                    ServiceErrorCode = "Unknown"
)

// knownServiceErrorCodes is the set of codes this client understands; used to
// collapse anything else to ServiceErrorCodeUnknown.
var knownServiceErrorCodes = map[ServiceErrorCode]struct{}{
	ServiceErrorCodeMissingAuthReq:             {},
	ServiceErrorCodeInvalidSession:             {},
	ServiceErrorCodeUserAppDomainMismatch:      {},
	ServiceErrorCodeDomainNotAllowed:           {},
	ServiceErrorCodeReadSizeLimitExceeded:      {},
	ServiceErrorCodeInvalidParameter:           {},
	ServiceErrorCodeMissingParameter:           {},
	ServiceErrorCodeServiceNotFound:            {},
	ServiceErrorCodeFunctionNotFound:           {},
	ServiceErrorCodeFunctionExecutionError:     {},
	ServiceErrorCodeNoMatchingRule:             {},
	ServiceErrorCodeInternalServerError:        {},
	ServiceErrorCodeAuthProviderNotFound:       {},
	ServiceErrorCodeValueNotFound:              {},
	ServiceErrorCodeRestrictedHost:             {},
	ServiceErrorCodeHTTPError:                  {},
	ServiceErrorCodeExecutionTimeLimitExceeded: {},
	ServiceErrorCodeUserNotFound:               {},
	ServiceErrorCodeUserDisabled:               {},
	ServiceErrorCodeUserAlreadyConfirmed:       {},
}

// ============================================================================
// ServiceError - error reported by the Stitch backend
// ============================================================================

// ServiceError represents an error returned by the backend for a completed
// HTTP exchange. Message carries the backend's error text (or the raw body
// when the body did not conform to the error envelope).
type ServiceError struct {
	Message string
	Code    ServiceErrorCode
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("stitch: service error (%s): %s", e.Code, e.Message)
}

// ============================================================================
// RequestError - failure carrying out the exchange itself
// ============================================================================

// RequestErrorKind distinguishes where a request failed before a backend
// response could be interpreted.
type RequestErrorKind string

const (
	RequestErrorTransport RequestErrorKind = "TransportError"
	RequestErrorEncoding  RequestErrorKind = "EncodingError"
	RequestErrorDecoding  RequestErrorKind = "DecodingError"
	RequestErrorUnknown   RequestErrorKind = "UnknownError"
)

// RequestError represents a failure to carry out an HTTP exchange: the
// transport round trip itself, or encoding/decoding of the request/response
// bodies.
type RequestError struct {
	Kind RequestErrorKind
	Err  error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("stitch: request error (%s)", e.Kind)
	}
	return fmt.Sprintf("stitch: request error (%s): %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is reports kind equality so callers can match against the predefined
// request error values with errors.Is.
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	return ok && t.Kind == e.Kind
}

func transportError(err error) *RequestError {
	return &RequestError{Kind: RequestErrorTransport, Err: err}
}

func encodingError(err error) *RequestError {
	return &RequestError{Kind: RequestErrorEncoding, Err: err}
}

func decodingError(err error) *RequestError {
	return &RequestError{Kind: RequestErrorDecoding, Err: err}
}

// ============================================================================
// ClientError - local precondition or state violations
// ============================================================================

// ClientErrorCode identifies a local failure never caused by the network.
type ClientErrorCode string

const (
	ClientErrorLoggedOutDuringRequest        ClientErrorCode = "LoggedOutDuringRequest"
	ClientErrorMustAuthenticateFirst         ClientErrorCode = "MustAuthenticateFirst"
	ClientErrorUserNoLongerValid             ClientErrorCode = "UserNoLongerValid"
	ClientErrorCouldNotLoadPersistedAuthInfo ClientErrorCode = "CouldNotLoadPersistedAuthInfo"
	ClientErrorCouldNotPersistAuthInfo       ClientErrorCode = "CouldNotPersistAuthInfo"
)

// ClientError represents a local precondition or state violation detected by
// the client before or after a network exchange.
type ClientError struct {
	Code ClientErrorCode
	Err  error
}

func (e *ClientError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("stitch: client error (%s)", e.Code)
	}
	return fmt.Sprintf("stitch: client error (%s): %v", e.Code, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// Is reports code equality so distinct instances match the predefined values
// with errors.Is.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Code == e.Code
}

// Predefined client errors. Compare with errors.Is.
var (
	ErrLoggedOutDuringRequest        = &ClientError{Code: ClientErrorLoggedOutDuringRequest}
	ErrMustAuthenticateFirst         = &ClientError{Code: ClientErrorMustAuthenticateFirst}
	ErrUserNoLongerValid             = &ClientError{Code: ClientErrorUserNoLongerValid}
	ErrCouldNotLoadPersistedAuthInfo = &ClientError{Code: ClientErrorCouldNotLoadPersistedAuthInfo}
	ErrCouldNotPersistAuthInfo       = &ClientError{Code: ClientErrorCouldNotPersistAuthInfo}
)

func clientError(code ClientErrorCode, cause error) *ClientError {
	return &ClientError{Code: code, Err: cause}
}

// ============================================================================
// Response Classification
// ============================================================================

// errorEnvelope is the backend's service-error shape.
type errorEnvelope struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

// classifyResponse maps a completed HTTP exchange to either success (nil) or
// a ServiceError. It is deterministic and side-effect-free:
//
//   - 2xx with an empty or well-formed JSON body is success.
//   - 2xx with a non-JSON body (e.g. an intermediary's "404 page not found"
//     text leaking through with a 200) is a ServiceError with code Unknown
//     and the full body text as the message.
//   - Non-2xx with a body matching the error envelope is a ServiceError with
//     the envelope's message; an unrecognised or absent error_code maps to
//     Unknown.
//   - Any other non-2xx body is a ServiceError with the full body text and
//     code Unknown.
func classifyResponse(status int, body []byte) error {
	if status >= 200 && status < 300 {
		if len(body) == 0 || json.Valid(body) {
			return nil
		}
		return &ServiceError{
			Message: strings.TrimSpace(string(body)),
			Code:    ServiceErrorCodeUnknown,
		}
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		code := ServiceErrorCode(envelope.ErrorCode)
		if _, known := knownServiceErrorCodes[code]; !known {
			code = ServiceErrorCodeUnknown
		}
		return &ServiceError{Message: envelope.Error, Code: code}
	}

	return &ServiceError{
		Message: strings.TrimSpace(string(body)),
		Code:    ServiceErrorCodeUnknown,
	}
}
