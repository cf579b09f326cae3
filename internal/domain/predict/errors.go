package predict

import "errors"

// Sentinel kinds for prediction errors.
var (
	// ErrNotFitted marks a Predict call on a model that was never trained.
	ErrNotFitted = errors.New("model has not been fitted")

	// ErrEmptyTraining marks a Fit call with no training sets.
	ErrEmptyTraining = errors.New("empty training data")
)
