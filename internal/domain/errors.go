package domain

import "errors"

// Call-time failures callers may want to branch on with errors.Is. Construction
// failures are plain fmt.Errorf values carrying the offending configuration.
var (
	// ErrJacobianUnavailable is returned when an analytic position Jacobian is
	// requested from a method that structurally cannot provide one. It is a hard
	// failure, never a silent zero contribution.
	ErrJacobianUnavailable = errors.New("analytic jacobian unavailable for this method")

	// ErrUnsupportedParameter is returned when a derivative is requested with
	// respect to a parameter the model does not own. Ownership is pointer
	// identity, not name or value equality.
	ErrUnsupportedParameter = errors.New("parameter is not owned by this model")

	// ErrSingularGeometry is returned when the evaluation point is singular for
	// the selected method (the origin for every method, the polar axis for the
	// spherical-coordinate recursion).
	ErrSingularGeometry = errors.New("evaluation point is singular for this method")
)
