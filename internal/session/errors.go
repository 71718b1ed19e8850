package session

import "errors"

var (
	// ErrCredentialUnavailable means no fresh credential could be produced.
	// The underlying cause is joined, so errors.Is works for both.
	ErrCredentialUnavailable = errors.New("session credential unavailable")

	// ErrMintTimeout means the minter did not finish within MintTimeout.
	ErrMintTimeout = errors.New("credential mint timed out")

	// ErrNoCookies means the mint completed but produced an empty cookie set.
	ErrNoCookies = errors.New("mint produced no cookies")
)
