package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobarber/gobarber-client/internal/validation"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
)

// ErrNoSession is returned by operations that need an authenticated user
var ErrNoSession = errors.New("no active session")

// Kind classifies a credential operation failure
type Kind int

const (
	// KindValidation means the input violated the local schema; Fields says where
	KindValidation Kind = iota + 1
	// KindAuthentication means the server rejected well-formed input
	KindAuthentication
	// KindTransport means the server could not be reached or failed
	KindTransport
	// KindStorage means the result could not be persisted locally
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindTransport:
		return "transport"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// CredentialError is the failure of sign-in, sign-up or a profile update
type CredentialError struct {
	Kind   Kind
	Fields []validation.FieldError
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Message)
		}
		return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
	}
	if e.Err == nil {
		return e.Kind.String() + " failed"
	}
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the user. Remote rejections never reveal
// which credential was wrong.
func (e *CredentialError) UserMessage() string {
	switch e.Kind {
	case KindValidation:
		if len(e.Fields) > 0 {
			return e.Fields[0].Message
		}
		return "Please check the highlighted fields."
	case KindAuthentication:
		return "Authentication failed. Please check your credentials."
	case KindTransport:
		return "Could not reach the server. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// FieldMessage returns the validation message for a field, if any
func (e *CredentialError) FieldMessage(field string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message, true
		}
	}
	return "", false
}

// NewValidationError wraps local schema violations
func NewValidationError(fields []validation.FieldError) *CredentialError {
	return &CredentialError{Kind: KindValidation, Fields: fields, Err: apperrors.ErrInvalidInput}
}

// FromRemote classifies a gateway failure. Failures that never produced a
// verdict on the credentials (no response, server errors) are transport
// failures; everything else is a rejection.
func FromRemote(err error) *CredentialError {
	if apperrors.Is(err, apperrors.ErrTransport) || apperrors.Is(err, apperrors.ErrInternal) {
		return &CredentialError{Kind: KindTransport, Err: err}
	}
	return &CredentialError{Kind: KindAuthentication, Err: err}
}

// AsCredentialError unwraps err into a *CredentialError
func AsCredentialError(err error) (*CredentialError, bool) {
	var ce *CredentialError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
