// Package convert implements the five fixture converters behind the
// preprocess CLI: quote cert chain rewriting, PEM to byte literal conversion,
// raw byte embedding, and the two collateral document mappers.
//
// Every converter is a pure bytes-in, bytes-out function. Reading the input
// and writing the output stay at the CLI boundary, so a failing conversion can
// never leave a partially written output file behind.
package convert

import (
	"bytes"
	"fmt"

	"github.com/dcap-cairo/preprocess/convert/cairo"
	"github.com/dcap-cairo/preprocess/convert/crypto"
	"github.com/dcap-cairo/preprocess/convert/types"
)

// Quote rewrites the PEM certificate chain embedded in a binary SGX/TDX quote
// into length-prefixed DER and returns the re-serialized quote. All bytes
// outside the chain payload and its type tag are preserved.
func Quote(rawQuote []byte) ([]byte, error) {
	quote, err := types.ParseQuote(rawQuote)
	if err != nil {
		return nil, err
	}

	// Parsing is lossless; if remarshaling the untouched quote does not
	// reproduce the input we must not rewrite it.
	remarshaled, err := quote.Marshal()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(rawQuote, remarshaled) {
		return nil, fmt.Errorf("quote serialization roundtrip failed")
	}

	if err := quote.RewritePEMCertChain(); err != nil {
		return nil, err
	}

	return quote.Marshal()
}

// PEM decodes all PEM certificate blocks in the input and returns a Cairo byte
// array literal of the concatenated DER payloads, in document order.
// Multiple blocks deliberately collapse into a single literal; the downstream
// tests slice chains by certificate length themselves.
func PEM(pemText []byte) ([]byte, error) {
	certs, err := crypto.DecodeCertificateChain(pemText)
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no PEM blocks found in input")
	}

	// Validate that the payloads really are certificates before baking them
	// into test fixtures.
	if _, err := crypto.ParsePEMCertificateChain(pemText); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := cairo.WriteBytes(&buf, bytes.Join(certs, nil)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IncludeBytes returns a Cairo byte array literal of the input bytes.
// Empty input yields a zero length array literal.
func IncludeBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := cairo.WriteBytes(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
