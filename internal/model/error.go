package model

// Standard error codes for store and service failures.
const (
	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeSerialization   = "SERIALIZATION_ERROR"
	ErrCodeIO              = "IO_ERROR"
	ErrCodeInvalidInput    = "INVALID_INPUT"
)

// DomainError is an error carrying one of the codes above.
// Two DomainErrors match under errors.Is when their codes are equal.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error with an underlying cause.
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "product not found")
	ErrSerialization   = NewDomainError(ErrCodeSerialization, "data file could not be parsed")
	ErrIO              = NewDomainError(ErrCodeIO, "data file could not be accessed")
	ErrInvalidInput    = NewDomainError(ErrCodeInvalidInput, "invalid product input")
)
