package types

import (
	"encoding/binary"
	"fmt"
)

/*
   SGX/TDX (SGX Quote 4) quote parser.
   Based on:
   https://github.com/intel/SGXDataCenterAttestationPrimitives/blob/c057b236790834cf7e547ebf90da91c53c7ed7f9/QuoteGeneration/quote_wrapper/common/inc/sgx_quote_4.h#L113
   https://github.com/intel/SGXDataCenterAttestationPrimitives/blob/c057b236790834cf7e547ebf90da91c53c7ed7f9/QuoteVerification/QVL/Src/AttestationLibrary/src/QuoteVerification/QuoteStructures.h

   Unlike a verifier, the preprocessor never interprets the report body or the
   QE report; both stay opaque byte regions so that rewriting the embedded
   certificate chain leaves every other byte of the quote untouched.
*/

const (
	// TEETypeSGX is the type number referenced in the Quote header for SGX quotes.
	TEETypeSGX = 0x0

	// TEETypeTDX is the type number referenced in the Quote header for TDX quotes.
	TEETypeTDX = 0x81

	// PCK_ID_PCK_CERT_CHAIN is the CertificationData type holding the PCK cert chain (encoded in PEM, \0 byte terminated).
	PCK_ID_PCK_CERT_CHAIN = 5

	// PCK_ID_QE_REPORT_CERTIFICATION_DATA is the CertificationData type holding QEReportCertificationData data.
	PCK_ID_QE_REPORT_CERTIFICATION_DATA = 6

	// PCK_ID_PCK_CERT_CHAIN_DER is the CertificationData type holding a rewritten,
	// length-prefixed DER cert chain. Not an Intel-defined type: Intel assigns
	// tags 1-7, so the rewriter marks its output with 8 and a second rewrite of
	// the same quote fails instead of corrupting the chain.
	PCK_ID_PCK_CERT_CHAIN_DER = 8

	headerSize        = 48
	enclaveReportSize = 384
	td10ReportSize    = 584

	// maxQuoteSize guards against absurd length fields; quotes are well below 1 MiB.
	maxQuoteSize = 1048576
)

// QuoteHeader is the header of an SGX/TDX quote compatible with v4 of the TrustedPlatform API.
// Raw keeps the exact header bytes so marshaling is byte-preserving.
type QuoteHeader struct {
	Version            uint16
	AttestationKeyType uint16
	TEEType            uint32 // 0x0 = SGX, 0x81 = TDX
	Raw                [48]byte
}

// Quote is an SGX/TDX quote compatible with v4 of the TrustedPlatform API.
// Body is the raw TDREPORT (TDX, 584 bytes) or enclave report (SGX, 384 bytes).
// Rest keeps any trailing bytes after the signature so they survive a round trip.
type Quote struct {
	Header    QuoteHeader
	Body      []byte
	Signature QuoteSignatureData
	Rest      []byte
}

// QuoteSignatureData is the signature section (ECDSA256QuoteV4AuthData) of a v4 quote.
type QuoteSignatureData struct {
	Signature         [64]byte
	PublicKey         [64]byte
	CertificationData CertificationData // QEReportCertificationData
}

// CertificationData is a generic Data wrapper from Intel's quote layout.
// Data is QEReportCertificationData for type 6 and []byte for types 5 and 8.
type CertificationData struct {
	Type uint16
	Data any
}

// QEReportCertificationData holds the Quoting Enclave (QE) report, embedded as
// CertificationData in the quote signature. EnclaveReport is opaque here.
type QEReportCertificationData struct {
	EnclaveReport     [384]byte
	Signature         [64]byte // ECDSA256 signature
	QEAuthData        []byte
	CertificationData CertificationData // PEM or DER encoded PCK cert chain
}

// ParseQuote parses an Intel SGX/TDX v4 quote. The expected input is the complete quote.
func ParseQuote(rawQuote []byte) (Quote, error) {
	quoteLength := len(rawQuote)
	if quoteLength <= headerSize+enclaveReportSize+4 {
		return Quote{}, fmt.Errorf("%w: quote structure is too short to be parsed (received: %d bytes)", ErrTruncatedQuote, quoteLength)
	} else if quoteLength > maxQuoteSize {
		return Quote{}, fmt.Errorf("quote is too large (over 1 MiB, received: %d bytes)", quoteLength)
	}

	quoteHeader := QuoteHeader{
		Version:            binary.LittleEndian.Uint16(rawQuote[0:2]),
		AttestationKeyType: binary.LittleEndian.Uint16(rawQuote[2:4]),
		TEEType:            binary.LittleEndian.Uint32(rawQuote[4:8]),
		Raw:                [48]byte(rawQuote[0:48]),
	}

	var bodySize int
	switch quoteHeader.TEEType {
	case TEETypeSGX:
		bodySize = enclaveReportSize
	case TEETypeTDX:
		bodySize = td10ReportSize
	default:
		return Quote{}, fmt.Errorf("unknown TEE type in quote header: %#x", quoteHeader.TEEType)
	}

	endBody := headerSize + bodySize
	if quoteLength <= endBody+4 {
		return Quote{}, fmt.Errorf("%w: quote is too short for a %#x TEE report body (received: %d bytes)", ErrTruncatedQuote, quoteHeader.TEEType, quoteLength)
	}
	body := append([]byte{}, rawQuote[headerSize:endBody]...)

	signatureLength := binary.LittleEndian.Uint32(rawQuote[endBody : endBody+4])
	// Upgrade to uint64 since we could overflow if signatureLength is close to the top of uint32.
	endSignature := uint64(endBody) + 4 + uint64(signatureLength)
	if endSignature > uint64(quoteLength) {
		return Quote{}, fmt.Errorf("%w: quote SignatureLength is either incorrect or data is truncated (requires at least: %d bytes, left: %d bytes)", ErrTruncatedQuote, signatureLength, quoteLength-endBody-4)
	}

	signature, err := parseSignature(rawQuote[endBody+4 : endSignature])
	if err != nil {
		return Quote{}, fmt.Errorf("failed parsing quote signature: %w", err)
	}

	return Quote{
		Header:    quoteHeader,
		Body:      body,
		Signature: signature,
		Rest:      append([]byte{}, rawQuote[endSignature:]...),
	}, nil
}

// parseSignature parses the signature section (ECDSA256QuoteV4AuthData) of a quote.
func parseSignature(signature []byte) (QuoteSignatureData, error) {
	signatureLength := len(signature)
	if signatureLength < 134 {
		return QuoteSignatureData{}, fmt.Errorf("%w: signature is too short to be parsed (received: %d bytes)", ErrTruncatedQuote, signatureLength)
	}

	quoteSignature := QuoteSignatureData{
		Signature: [64]byte(signature[0:64]),   // ECDSA256 signature
		PublicKey: [64]byte(signature[64:128]), // ECDSA256 public key
	}

	certType := binary.LittleEndian.Uint16(signature[128:130])
	if certType != PCK_ID_QE_REPORT_CERTIFICATION_DATA {
		return QuoteSignatureData{}, fmt.Errorf("%w: signature.CertificationData.Type is unexpected (expected PCK_ID_QE_REPORT_CERTIFICATION_DATA (6), got %d)", ErrUnsupportedCertFormat, certType)
	}
	parsedDataSize := binary.LittleEndian.Uint32(signature[130:134])

	// The certification data must fill the signature section exactly,
	// otherwise remarshaling could silently drop or invent bytes.
	if uint64(parsedDataSize) != uint64(signatureLength-134) {
		return QuoteSignatureData{}, fmt.Errorf("%w: signature.CertificationData.ParsedDataSize is either incorrect or data is truncated (requires exactly: %d bytes, left: %d bytes)", ErrTruncatedQuote, parsedDataSize, signatureLength-134)
	}

	qeReportCertData, err := parseQEReportCertificationData(signature[134:])
	if err != nil {
		return QuoteSignatureData{}, err
	}

	quoteSignature.CertificationData = CertificationData{
		Type: certType,
		Data: qeReportCertData,
	}

	return quoteSignature, nil
}

// parseQEReportCertificationData parses a Quoting Enclave (QE) report embedded as CertificationData in the quote signature.
func parseQEReportCertificationData(qeReportCertData []byte) (QEReportCertificationData, error) {
	qeReportCertDataLength := len(qeReportCertData)
	if qeReportCertDataLength < 450 {
		return QEReportCertificationData{}, fmt.Errorf("%w: QEReportCertificationData is too short to be parsed (received: %d bytes)", ErrTruncatedQuote, qeReportCertDataLength)
	}

	qeReport := QEReportCertificationData{
		EnclaveReport: [384]byte(qeReportCertData[0:384]),
		Signature:     [64]byte(qeReportCertData[384:448]),
	}

	authDataSize := binary.LittleEndian.Uint16(qeReportCertData[448:450])
	// Upgrade to uint32 since we could overflow if authDataSize is close to the top of uint16.
	endQEAuthData := 450 + uint32(authDataSize)
	if endQEAuthData > uint32(qeReportCertDataLength) {
		return QEReportCertificationData{}, fmt.Errorf("%w: QEAuthData.ParsedDataSize is either incorrect or data is truncated (requires at least: %d bytes, left: %d bytes)", ErrTruncatedQuote, authDataSize, qeReportCertDataLength-450)
	}
	qeReport.QEAuthData = append([]byte{}, qeReportCertData[450:endQEAuthData]...)

	qeReportInnerCertData, err := parseInnerCertificationData(qeReportCertData[endQEAuthData:])
	if err != nil {
		return QEReportCertificationData{}, err
	}
	qeReport.CertificationData = qeReportInnerCertData

	return qeReport, nil
}

// parseInnerCertificationData parses the CertificationData of a Quoting Enclave (QE) report,
// which carries the PCK cert chain (PEM as quoted, DER after rewriting).
func parseInnerCertificationData(certData []byte) (CertificationData, error) {
	certDataLength := len(certData)
	if certDataLength <= 6 {
		return CertificationData{}, fmt.Errorf("%w: QEReportCertificationData.CertificationData is too short to be parsed (received: %d bytes)", ErrTruncatedQuote, certDataLength)
	}

	innerCertData := CertificationData{
		Type: binary.LittleEndian.Uint16(certData[0:2]),
	}
	parsedDataSize := binary.LittleEndian.Uint32(certData[2:6])

	if uint64(parsedDataSize) != uint64(certDataLength-6) {
		return CertificationData{}, fmt.Errorf("%w: QEReportCertificationData.CertificationData.ParsedDataSize is either incorrect or data is truncated (requires exactly: %d bytes, left: %d bytes)", ErrTruncatedQuote, parsedDataSize, certDataLength-6)
	}

	innerCertData.Data = append([]byte{}, certData[6:]...)

	return innerCertData, nil
}
