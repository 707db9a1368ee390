package service

import (
	"errors"
	"strings"

	"go-offer-match/internal/review"
	"go-offer-match/pkg/validator"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrOfferNotFound   = errors.New("offer not found")
	ErrMatchNotFound   = errors.New("match not found")
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("SKU already exists")

	// Review conflicts come from the state machine unchanged so callers can
	// match them with errors.Is either way.
	ErrInvalidTransition = review.ErrInvalidTransition
	ErrAlreadyMatched    = review.ErrAlreadyMatched
)

// ValidationError lists the fields that failed validation. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Fields []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validate(v interface{}) error {
	if errs := validator.ValidateStruct(v); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
