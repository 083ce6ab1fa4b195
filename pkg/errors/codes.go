package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
)

// Aliases
const (
	CodeUnknown      = ErrorCode("")
	CodeOK           = ErrorCode("OK")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests

	CodeMoleculeInvalidSMILES = ErrCodeMoleculeInvalidSMILES
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES     ErrorCode = "MOL_001"
	ErrCodeMoleculeParsingFailed     ErrorCode = "MOL_006"
	ErrCodeDescriptorFailed          ErrorCode = "MOL_013"
	ErrCodeMoleculeIndexOutOfRange   ErrorCode = "MOL_016"
	ErrCodeMoleculeTableMissing      ErrorCode = "MOL_017"
)

// Upload Error Codes
const (
	ErrCodeUploadMissingFile  ErrorCode = "UPL_001"
	ErrCodeUploadExtension    ErrorCode = "UPL_002"
	ErrCodeUploadTooLarge     ErrorCode = "UPL_003"
	ErrCodeUploadEmpty        ErrorCode = "UPL_004"
	ErrCodeUploadCSRF         ErrorCode = "UPL_005"
	ErrCodeUploadUnreadable   ErrorCode = "UPL_006"
)

// Session Error Codes
const (
	ErrCodeSessionNotFound  ErrorCode = "SES_001"
	ErrCodeSessionStore     ErrorCode = "SES_002"
	ErrCodeSessionCorrupted ErrorCode = "SES_003"
)

// Rendering Error Codes
const (
	ErrCodeRenderFailed ErrorCode = "RND_001"
	ErrCodePlotFailed   ErrorCode = "RND_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,

	ErrCodeMoleculeInvalidSMILES:   http.StatusBadRequest,
	ErrCodeMoleculeParsingFailed:   http.StatusBadRequest,
	ErrCodeDescriptorFailed:        http.StatusInternalServerError,
	ErrCodeMoleculeIndexOutOfRange: http.StatusBadRequest,
	ErrCodeMoleculeTableMissing:    http.StatusNotFound,

	ErrCodeUploadMissingFile: http.StatusBadRequest,
	ErrCodeUploadExtension:   http.StatusBadRequest,
	ErrCodeUploadTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeUploadEmpty:       http.StatusBadRequest,
	ErrCodeUploadCSRF:        http.StatusBadRequest,
	ErrCodeUploadUnreadable:  http.StatusBadRequest,

	ErrCodeSessionNotFound:  http.StatusNotFound,
	ErrCodeSessionStore:     http.StatusServiceUnavailable,
	ErrCodeSessionCorrupted: http.StatusInternalServerError,

	ErrCodeRenderFailed: http.StatusInternalServerError,
	ErrCodePlotFailed:   http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeCacheError:         "cache error",

	ErrCodeMoleculeInvalidSMILES:   "invalid SMILES string",
	ErrCodeMoleculeParsingFailed:   "molecule parsing failed",
	ErrCodeDescriptorFailed:        "descriptor calculation failed",
	ErrCodeMoleculeIndexOutOfRange: "molecule index out of range",
	ErrCodeMoleculeTableMissing:    "no molecule table in session",

	ErrCodeUploadMissingFile: "This field is required.",
	ErrCodeUploadExtension:   "File does not have an approved extension: txt",
	ErrCodeUploadTooLarge:    "Request Entity Too Large",
	ErrCodeUploadEmpty:       "File is empty.",
	ErrCodeUploadCSRF:        "The CSRF token is invalid.",
	ErrCodeUploadUnreadable:  "uploaded file could not be read",

	ErrCodeSessionNotFound:  "session not found",
	ErrCodeSessionStore:     "session store unavailable",
	ErrCodeSessionCorrupted: "session data corrupted",

	ErrCodeRenderFailed: "molecule rendering failed",
	ErrCodePlotFailed:   "plot rendering failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
