package tfhe

import (
	"errors"
	"fmt"
)

var (
	// ErrLWEDimensionMismatch is returned when an LWE entity does not have the expected dimension.
	ErrLWEDimensionMismatch = errors.New("lwe dimension mismatch")
	// ErrGLWERankMismatch is returned when a GLWE entity does not have the expected rank.
	ErrGLWERankMismatch = errors.New("glwe rank mismatch")
	// ErrPolyDegreeMismatch is returned when a polynomial does not have the expected degree.
	ErrPolyDegreeMismatch = errors.New("polynomial degree mismatch")
	// ErrGadgetMismatch is returned when gadget entities disagree on their decomposition parameters.
	ErrGadgetMismatch = errors.New("gadget parameters mismatch")
	// ErrLUTSizeMismatch is returned when a lookup table does not have the expected size.
	ErrLUTSizeMismatch = errors.New("lookup table size mismatch")
	// ErrBatchSizeMismatch is returned when batched inputs and outputs have different lengths.
	ErrBatchSizeMismatch = errors.New("batch size mismatch")
	// ErrInvalidParameters is returned when parameters fail validation.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrInvalidGadget is returned when gadget parameters fail validation.
	ErrInvalidGadget = errors.New("invalid gadget parameters")
	// ErrUnsupportedVersion is returned when decoding an entity with an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported serialization version")
	// ErrMalformedPayload is returned when decoding a truncated or inconsistent entity.
	ErrMalformedPayload = errors.New("malformed payload")
)

// MismatchError reports a size or shape mismatch between an argument and what an operation expects.
// It unwraps to one of the sentinel errors of this package.
type MismatchError struct {
	Err  error
	Want int
	Got  int
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v: want %v, got %v", e.Err, e.Want, e.Got)
}

// Unwrap returns the underlying sentinel error.
func (e *MismatchError) Unwrap() error {
	return e.Err
}

// checkDimension returns a *MismatchError wrapping err if want != got.
func checkDimension(err error, want, got int) error {
	if want != got {
		return &MismatchError{Err: err, Want: want, Got: got}
	}
	return nil
}
