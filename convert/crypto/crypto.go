// Package crypto implements PEM and certificate helpers used to preprocess quotes and collateral.
package crypto

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// CertificatePEMLabel is the PEM type expected for every block of a certificate chain.
const CertificatePEMLabel = "CERTIFICATE"

// ErrMalformedPEM is returned when PEM data contains a block that cannot be decoded,
// e.g. a BEGIN marker without a matching END marker or an invalid base64 payload.
var ErrMalformedPEM = errors.New("malformed PEM data")

var pemBeginMarker = []byte("-----BEGIN")

// DecodePEMBlocks decodes all PEM blocks from data and returns their payloads in document order.
// Data without any PEM markers yields an empty result, not an error; callers
// decide whether that is acceptable.
func DecodePEMBlocks(data []byte) ([][]byte, error) {
	blocks, err := decodeBlocks(data)
	if err != nil {
		return nil, err
	}

	payloads := make([][]byte, len(blocks))
	for i, block := range blocks {
		payloads[i] = block.Bytes
	}
	return payloads, nil
}

// DecodeCertificateChain decodes a PEM certificate chain and returns the DER
// encoding of each certificate in chain order.
// Unlike DecodePEMBlocks, every block must carry the CERTIFICATE label.
func DecodeCertificateChain(data []byte) ([][]byte, error) {
	blocks, err := decodeBlocks(data)
	if err != nil {
		return nil, err
	}

	certs := make([][]byte, len(blocks))
	for i, block := range blocks {
		if block.Type != CertificatePEMLabel {
			return nil, fmt.Errorf("%w: unexpected PEM label %q", ErrMalformedPEM, block.Type)
		}
		certs[i] = block.Bytes
	}
	return certs, nil
}

// ParsePEMCertificateChain parses a certificate chain from a PEM-encoded byte slice.
func ParsePEMCertificateChain(certChainPEM []byte) ([]*x509.Certificate, error) {
	derChain, err := DecodeCertificateChain(certChainPEM)
	if err != nil {
		return nil, err
	}

	var signingChain []*x509.Certificate
	for _, der := range derChain {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate from PEM: %w", err)
		}

		signingChain = append(signingChain, cert)
	}
	return signingChain, nil
}

// decodeBlocks runs pem.Decode over data until no block is left.
// pem.Decode silently skips text it cannot decode, so a leftover BEGIN marker
// in the remainder means a block was broken rather than absent.
func decodeBlocks(data []byte) ([]*pem.Block, error) {
	var blocks []*pem.Block
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		blocks = append(blocks, block)
	}

	if bytes.Contains(rest, pemBeginMarker) {
		return nil, fmt.Errorf("%w: undecodable PEM block left in input", ErrMalformedPEM)
	}
	return blocks, nil
}
