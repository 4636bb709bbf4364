package model

import "errors"

var (
	// ErrNoParticipatingCliques indicates a problem where no clique is
	// referenced by a constraint, leaving nothing to model.
	ErrNoParticipatingCliques = errors.New("model: no participating cliques")

	// ErrVelocitiesNotSet indicates an evaluation on a context whose
	// velocities were never set.
	ErrVelocitiesNotSet = errors.New("model: velocities not set")

	// ErrVelocitiesSize indicates a velocity vector of the wrong length.
	ErrVelocitiesSize = errors.New("model: velocity vector has the wrong size")

	// ErrForeignContext indicates a context created by a different model.
	ErrForeignContext = errors.New("model: context belongs to another model")
)
