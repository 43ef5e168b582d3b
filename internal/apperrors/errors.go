package apperrors

import "errors"

// ErrNotFound indicates that a referenced resource (document, account, rate,
// stock lot) could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrState indicates an illegal document transition or an unsatisfied
// transition precondition.
var ErrState = errors.New("state error")

// ErrConsistency indicates that a business-rule invariant would be violated
// (insufficient stock, over-allocation, unbalanced entry, missing account
// mapping). The enclosing transaction is rolled back in full.
var ErrConsistency = errors.New("consistency error")

// ErrConflict indicates a lock or serialization failure reported by the
// database. It is transient; the caller decides whether to retry the whole
// operation. The engine never retries internally.
var ErrConflict = errors.New("concurrency conflict")
