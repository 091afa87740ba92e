package types

import "errors"

var (
	// ErrTruncatedQuote is returned when a length field of a quote exceeds the available bytes.
	ErrTruncatedQuote = errors.New("quote data is truncated")

	// ErrUnsupportedCertFormat is returned when a quote's certification data
	// does not carry a PEM certificate chain, including quotes that were
	// already rewritten to DER.
	ErrUnsupportedCertFormat = errors.New("unsupported certification data format")
)
