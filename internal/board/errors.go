package board

import "errors"

// Sentinel errors returned by the rules engine.
// Use these with errors.Is() to check for specific failure conditions.
var (
	// ErrMalformedFEN indicates a FEN string that cannot be parsed.
	ErrMalformedFEN = errors.New("malformed FEN")

	// ErrMalformedPosition indicates a position that violates a board
	// invariant, such as a missing or duplicate king.
	ErrMalformedPosition = errors.New("malformed position")

	// ErrIllegalMove indicates a move that is not in the legal move set.
	ErrIllegalMove = errors.New("illegal move")

	// ErrAmbiguousPromotion indicates a promotion move without a promotion
	// piece under the RequirePromotion policy.
	ErrAmbiguousPromotion = errors.New("ambiguous promotion")

	// ErrAmbiguousOrIllegalSAN indicates a SAN token that matches zero or
	// more than one legal move.
	ErrAmbiguousOrIllegalSAN = errors.New("ambiguous or illegal SAN")
)
