// Package validator checks the shape of incoming authorization queries.
// Every error wraps errors.ErrInvalidInput.
package validator

import (
	"fmt"
	"strings"

	apperrors "authz-service/pkg/errors"
)

const (
	maxSubjectIDLen   = 255
	maxTokenLen       = 128
	DefaultMaxItems   = 256
	asciiControlStart = 32
	asciiDelete       = 127

	errSubjectIDEmptyFmt    = "%w: subject id cannot be empty"
	errSubjectIDMaxLenFmt   = "%w: subject id must not exceed %d characters"
	errSubjectIDControlFmt  = "%w: subject id cannot contain control characters"
	errTokenEmptyFmt        = "%w: %s cannot be empty"
	errTokenMaxLenFmt       = "%w: %s must not exceed %d characters"
	errTokenWhitespaceFmt   = "%w: %s cannot contain whitespace or control characters"
	errTooManyItemsFmt      = "%w: %s may contain at most %d entries, got %d"
	errNegativeItemLimitFmt = "%w: item limit must be positive"
)

func SubjectID(id string) error {
	if id == "" {
		return fmt.Errorf(errSubjectIDEmptyFmt, apperrors.ErrInvalidInput)
	}

	if len(id) > maxSubjectIDLen {
		return fmt.Errorf(errSubjectIDMaxLenFmt, apperrors.ErrInvalidInput, maxSubjectIDLen)
	}

	if hasControlChars(id) {
		return fmt.Errorf(errSubjectIDControlFmt, apperrors.ErrInvalidInput)
	}

	return nil
}

// Token checks a single permission or role name before catalog lookup, so
// that oversized or binary input never reaches an error message verbatim.
func Token(field, value string) error {
	if value == "" {
		return fmt.Errorf(errTokenEmptyFmt, apperrors.ErrInvalidInput, field)
	}

	if len(value) > maxTokenLen {
		return fmt.Errorf(errTokenMaxLenFmt, apperrors.ErrInvalidInput, field, maxTokenLen)
	}

	if hasControlChars(value) || strings.ContainsAny(value, " \t") {
		return fmt.Errorf(errTokenWhitespaceFmt, apperrors.ErrInvalidInput, field)
	}

	return nil
}

// Tokens applies the size limit and then Token to each entry. An empty list
// is valid.
func Tokens(field string, values []string, maxItems int) error {
	if maxItems <= 0 {
		return fmt.Errorf(errNegativeItemLimitFmt, apperrors.ErrInvalidInput)
	}

	if len(values) > maxItems {
		return fmt.Errorf(errTooManyItemsFmt, apperrors.ErrInvalidInput, field, maxItems, len(values))
	}

	for _, v := range values {
		if err := Token(field, v); err != nil {
			return err
		}
	}

	return nil
}

func hasControlChars(s string) bool {
	for _, char := range s {
		if char < asciiControlStart || char == asciiDelete {
			return true
		}
	}
	return false
}
