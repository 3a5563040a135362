package testutil

import "errors"

// ErrSimulated is returned by fake persisters and pools to exercise failure paths.
var ErrSimulated = errors.New("simulated storage failure")
