// Package blobs provides synthetic attestation fixtures for tests.
//
// Real quotes and collateral are large and carry Intel signatures we cannot
// reproduce; the preprocessor only transcodes structure, so synthetic data
// with the correct binary layout is sufficient.
package blobs

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/binary"
	"encoding/pem"
	"math/big"
	"sync"
	"time"
)

// intelQEVendorID is the vendor ID found in the header of Intel QE generated quotes.
var intelQEVendorID = [16]byte{0x93, 0x9a, 0x72, 0x33, 0xf7, 0x9c, 0x4c, 0xa9, 0x94, 0x0a, 0x0d, 0xb3, 0x95, 0x7f, 0x06, 0x07}

var (
	chainOnce    sync.Once
	certChainPEM []byte
	certChainDER [][]byte
)

// CertChainPEM returns a PEM encoded chain of three certificates,
// shaped like the PCK chain embedded in a quote (PCK cert, intermediate CA, root CA).
func CertChainPEM() []byte {
	chainOnce.Do(generateChain)
	return append([]byte{}, certChainPEM...)
}

// CertChainDER returns the DER encoding of each certificate of CertChainPEM, in chain order.
func CertChainDER() [][]byte {
	chainOnce.Do(generateChain)
	ders := make([][]byte, len(certChainDER))
	for i, der := range certChainDER {
		ders[i] = append([]byte{}, der...)
	}
	return ders
}

func generateChain() {
	var pemBuf bytes.Buffer
	for i, commonName := range []string{"Intel SGX PCK Certificate", "Intel SGX PCK Platform CA", "Intel SGX Root CA"} {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			panic(err)
		}

		template := &x509.Certificate{
			SerialNumber: big.NewInt(int64(i + 1)),
			Subject:      pkix.Name{CommonName: commonName},
			NotBefore:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			NotAfter:     time.Date(2049, 12, 31, 23, 59, 59, 0, time.UTC),
		}
		der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
		if err != nil {
			panic(err)
		}

		certChainDER = append(certChainDER, der)
		if err := pem.Encode(&pemBuf, &pem.Block{Type: "CERTIFICATE", Bytes: der}); err != nil {
			panic(err)
		}
	}
	certChainPEM = pemBuf.Bytes()
}

// TDXQuote returns a synthetic TDX v4 quote whose certification data holds
// the PEM certificate chain of CertChainPEM, NUL terminated like quotes
// produced by Intel's quoting enclave.
func TDXQuote() []byte {
	return buildQuote(0x81, 584, 5, append(CertChainPEM(), 0x00))
}

// SGXQuote returns a synthetic SGX ECDSA v4 quote with the same certification data as TDXQuote.
func SGXQuote() []byte {
	return buildQuote(0x0, 384, 5, append(CertChainPEM(), 0x00))
}

// QuoteWithCertDataType returns a synthetic TDX quote whose inner certification
// data carries the given type tag and payload.
func QuoteWithCertDataType(certType uint16, payload []byte) []byte {
	return buildQuote(0x81, 584, certType, payload)
}

// buildQuote assembles a quote byte by byte, independent of the parser's own
// marshaling code, so parse and marshal tests don't check the code against itself.
func buildQuote(teeType uint32, bodyLen int, certType uint16, certPayload []byte) []byte {
	var buf bytes.Buffer

	// header (48 bytes)
	header := make([]byte, 48)
	binary.LittleEndian.PutUint16(header[0:2], 4)       // version
	binary.LittleEndian.PutUint16(header[2:4], 2)       // attestation key type: ECDSA256
	binary.LittleEndian.PutUint32(header[4:8], teeType) // 0x0 = SGX, 0x81 = TDX
	copy(header[12:28], intelQEVendorID[:])
	buf.Write(header)

	// report body, opaque to the preprocessor
	body := make([]byte, bodyLen)
	for i := range body {
		body[i] = byte(i)
	}
	buf.Write(body)

	// inner certification data holding the cert chain
	innerCertData := make([]byte, 6+len(certPayload))
	binary.LittleEndian.PutUint16(innerCertData[0:2], certType)
	binary.LittleEndian.PutUint32(innerCertData[2:6], uint32(len(certPayload)))
	copy(innerCertData[6:], certPayload)

	// QE report certification data: enclave report + signature + auth data + inner certification data
	qeReport := make([]byte, 384)
	for i := range qeReport {
		qeReport[i] = byte(0x80 + i)
	}
	qeSignature := make([]byte, 64)
	for i := range qeSignature {
		qeSignature[i] = 0xb1
	}
	authData := make([]byte, 32)
	for i := range authData {
		authData[i] = byte(i)
	}

	var qeReportCertData bytes.Buffer
	qeReportCertData.Write(qeReport)
	qeReportCertData.Write(qeSignature)
	authLen := make([]byte, 2)
	binary.LittleEndian.PutUint16(authLen, uint16(len(authData)))
	qeReportCertData.Write(authLen)
	qeReportCertData.Write(authData)
	qeReportCertData.Write(innerCertData)

	// signature blob: quote signature + attestation key + outer certification data (type 6)
	var sigBlob bytes.Buffer
	quoteSignature := make([]byte, 64)
	for i := range quoteSignature {
		quoteSignature[i] = 0xa5
	}
	attestationKey := make([]byte, 64)
	for i := range attestationKey {
		attestationKey[i] = 0x5a
	}
	sigBlob.Write(quoteSignature)
	sigBlob.Write(attestationKey)
	outerHeader := make([]byte, 6)
	binary.LittleEndian.PutUint16(outerHeader[0:2], 6) // PCK_ID_QE_REPORT_CERTIFICATION_DATA
	binary.LittleEndian.PutUint32(outerHeader[2:6], uint32(qeReportCertData.Len()))
	sigBlob.Write(outerHeader)
	sigBlob.Write(qeReportCertData.Bytes())

	sigLen := make([]byte, 4)
	binary.LittleEndian.PutUint32(sigLen, uint32(sigBlob.Len()))
	buf.Write(sigLen)
	buf.Write(sigBlob.Bytes())

	return buf.Bytes()
}
