package fundraise

import "errors"

// ValidationMessage is the single message shown for any invalid form.
const ValidationMessage = "Please fill all fund details and upload an image"

var (
	ErrValidation         = errors.New("invalid fundraising form")
	ErrUploadFailed       = errors.New("image upload failed")
	ErrPersistFailed      = errors.New("failed to save fund request")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrNotEligible        = errors.New("fundraising is not available for this session")
	ErrFormLocked         = errors.New("form is locked while submitting")
	ErrNotFound           = errors.New("fund request not found")
)

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return ValidationMessage
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
