package data

import "errors"

// ErrNilDB is returned by constructors in tooling paths that require a database.
var ErrNilDB = errors.New("database handle is required")
