package omr

import "errors"

// ErrSingularMatrix is returned by the matrix solver when no pivot can be
// found for some column, i.e. the linear system is not solvable.
var ErrSingularMatrix = errors.New("omr: matrix is not invertible")

// ErrRetrievalFailed is returned by Retriever.DecodeDigest when the
// recovered indices' combination matrix turns out singular, i.e. the
// payloads cannot be solved for even though indices were recovered; the
// returned error wraps the solver's ErrSingularMatrix as well. An
// empty recovered index set is not itself a failure; DecodeDigest returns
// it with a nil error.
var ErrRetrievalFailed = errors.New("omr: retrieval failed")
