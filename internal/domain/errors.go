package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError covers duplicate-resource situations, most importantly a
// booking that already carries a completed payment.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// StateTransitionError signals an operation not permitted from the entity's
// current status (e.g. confirming an already failed payment).
type StateTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e StateTransitionError) Error() string {
	return fmt.Sprintf("%s: transition %s -> %s not allowed", e.Entity, e.From, e.To)
}

type InsufficientPointsError struct {
	Have int64
	Need int64
}

func (e InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: have %d, need %d", e.Have, e.Need)
}

type RewardExpiredError struct {
	RewardID int64
}

func (e RewardExpiredError) Error() string {
	return fmt.Sprintf("reward %d is expired", e.RewardID)
}

type RedemptionLimitError struct {
	RewardID int64
}

func (e RedemptionLimitError) Error() string {
	return fmt.Sprintf("reward %d redemption limit reached", e.RewardID)
}

// ProviderUnavailableError marks retryable upstream failures: the distance
// lookup or a payment provider did not answer in time.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e ProviderUnavailableError) Error() string {
	if e.Provider == "" {
		return "provider unavailable"
	}
	return fmt.Sprintf("%s unavailable", e.Provider)
}

func (e ProviderUnavailableError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsStateTransition(err error) bool {
	var target StateTransitionError
	return errors.As(err, &target)
}

func IsInsufficientPoints(err error) bool {
	var target InsufficientPointsError
	return errors.As(err, &target)
}

func IsRewardExpired(err error) bool {
	var target RewardExpiredError
	return errors.As(err, &target)
}

func IsRedemptionLimit(err error) bool {
	var target RedemptionLimitError
	return errors.As(err, &target)
}

func IsProviderUnavailable(err error) bool {
	var target ProviderUnavailableError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
