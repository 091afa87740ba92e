package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dcap-cairo/preprocess/convert/crypto"
)

// RewritePEMCertChain replaces the PEM certificate chain embedded in the
// quote's certification data with the concatenation of
// (4-byte little-endian length prefix, DER bytes) per certificate, in chain
// order, and tags the region as PCK_ID_PCK_CERT_CHAIN_DER. Every byte outside
// the chain payload and its type tag is left untouched.
//
// Rewriting an already rewritten quote fails with ErrUnsupportedCertFormat:
// the tag no longer matches PCK_ID_PCK_CERT_CHAIN.
func (q *Quote) RewritePEMCertChain() error {
	qeReport, ok := q.Signature.CertificationData.Data.(QEReportCertificationData)
	if !ok {
		return fmt.Errorf("%w: quote certification data does not hold a QE report", ErrUnsupportedCertFormat)
	}

	if certType := qeReport.CertificationData.Type; certType != PCK_ID_PCK_CERT_CHAIN {
		return fmt.Errorf("%w: QE report certification data type is %d, expected PCK_ID_PCK_CERT_CHAIN (5)", ErrUnsupportedCertFormat, certType)
	}
	chainPEM, ok := qeReport.CertificationData.Data.([]byte)
	if !ok {
		return fmt.Errorf("%w: QE report certification data has no raw payload", ErrUnsupportedCertFormat)
	}

	// Real quotes NUL terminate the chain like a C string.
	chain, err := crypto.DecodeCertificateChain(bytes.TrimRight(chainPEM, "\x00"))
	if err != nil {
		return fmt.Errorf("decoding PEM certificate chain from quote: %w", err)
	}
	if len(chain) == 0 {
		return fmt.Errorf("%w: certification data contains no PEM certificates", ErrUnsupportedCertFormat)
	}

	var rewritten bytes.Buffer
	for _, der := range chain {
		lengthPrefix := make([]byte, 4)
		binary.LittleEndian.PutUint32(lengthPrefix, uint32(len(der)))
		rewritten.Write(lengthPrefix)
		rewritten.Write(der)
	}

	qeReport.CertificationData = CertificationData{
		Type: PCK_ID_PCK_CERT_CHAIN_DER,
		Data: rewritten.Bytes(),
	}
	q.Signature.CertificationData.Data = qeReport

	return nil
}
