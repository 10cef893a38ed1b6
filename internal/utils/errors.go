package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason is the stable machine-readable code carried by an AppError.
type Reason string

const (
	ReasonValidation          Reason = "ValidationError"
	ReasonNotFound            Reason = "NotFound"
	ReasonUnauthorized        Reason = "Unauthorized"
	ReasonForbidden           Reason = "Forbidden"
	ReasonIllegalTransition   Reason = "IllegalTransition"
	ReasonInvalidCoupon       Reason = "InvalidCoupon"
	ReasonCouponMinimumNotMet Reason = "CouponMinimumNotMet"
	ReasonCouponExpired       Reason = "CouponExpired"
	ReasonCouponLimitReached  Reason = "CouponLimitReached"
	ReasonAlreadySubmitted    Reason = "AlreadySubmitted"
	ReasonNotDelivered        Reason = "NotDelivered"
	ReasonInvalidRating       Reason = "InvalidRating"
	ReasonConflict            Reason = "Conflict"
	ReasonPersistence         Reason = "PersistenceError"
)

var reasonStatus = map[Reason]int{
	ReasonValidation:          http.StatusBadRequest,
	ReasonNotFound:            http.StatusNotFound,
	ReasonUnauthorized:        http.StatusUnauthorized,
	ReasonForbidden:           http.StatusForbidden,
	ReasonIllegalTransition:   http.StatusConflict,
	ReasonInvalidCoupon:       http.StatusBadRequest,
	ReasonCouponMinimumNotMet: http.StatusBadRequest,
	ReasonCouponExpired:       http.StatusBadRequest,
	ReasonCouponLimitReached:  http.StatusBadRequest,
	ReasonAlreadySubmitted:    http.StatusConflict,
	ReasonNotDelivered:        http.StatusConflict,
	ReasonInvalidRating:       http.StatusBadRequest,
	ReasonConflict:            http.StatusConflict,
	ReasonPersistence:         http.StatusInternalServerError,
}

// AppError is a domain error with a reason code and a user-facing message.
type AppError struct {
	Reason  Reason
	Message string
	Err     error
}

// Sentinels for errors.Is checks. Matching is by reason only.
var (
	ErrValidation          = &AppError{Reason: ReasonValidation, Message: "validation failed"}
	ErrNotFound            = &AppError{Reason: ReasonNotFound, Message: "not found"}
	ErrUnauthorized        = &AppError{Reason: ReasonUnauthorized, Message: "unauthorized"}
	ErrForbidden           = &AppError{Reason: ReasonForbidden, Message: "forbidden"}
	ErrIllegalTransition   = &AppError{Reason: ReasonIllegalTransition, Message: "illegal status transition"}
	ErrInvalidCoupon       = &AppError{Reason: ReasonInvalidCoupon, Message: "invalid coupon"}
	ErrCouponMinimumNotMet = &AppError{Reason: ReasonCouponMinimumNotMet, Message: "order value below coupon minimum"}
	ErrCouponExpired       = &AppError{Reason: ReasonCouponExpired, Message: "coupon has expired"}
	ErrCouponLimitReached  = &AppError{Reason: ReasonCouponLimitReached, Message: "coupon usage limit reached"}
	ErrAlreadySubmitted    = &AppError{Reason: ReasonAlreadySubmitted, Message: "feedback already submitted"}
	ErrNotDelivered        = &AppError{Reason: ReasonNotDelivered, Message: "order is not delivered"}
	ErrInvalidRating       = &AppError{Reason: ReasonInvalidRating, Message: "rating must be between 1 and 5"}
	ErrConflict            = &AppError{Reason: ReasonConflict, Message: "resource was modified concurrently"}
	ErrPersistence         = &AppError{Reason: ReasonPersistence, Message: "storage failure"}
)

// NewError builds an AppError with a custom message.
func NewError(reason Reason, format string, args ...any) *AppError {
	return &AppError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause to a reason.
func Wrap(reason Reason, err error, message string) *AppError {
	return &AppError{Reason: reason, Message: message, Err: err}
}

// Persistence wraps a storage failure unless it already carries a reason.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Wrap(ReasonPersistence, err, "storage failure")
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError with the same reason.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Reason == e.Reason
}

// Status returns the HTTP status for the error's reason.
func (e *AppError) Status() int {
	if status, ok := reasonStatus[e.Reason]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ReasonOf extracts the reason from err, or PersistenceError for foreign errors.
func ReasonOf(err error) Reason {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ReasonPersistence
}
