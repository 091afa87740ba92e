package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Marshal serializes the quote back to its binary representation.
// Length fields are recomputed from the actual payload sizes, so a quote whose
// certification data was rewritten marshals with consistent sizes.
func (q *Quote) Marshal() ([]byte, error) {
	signature, err := q.Signature.marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(q.Header.Raw[:])
	buf.Write(q.Body)

	sigLen := make([]byte, 4)
	binary.LittleEndian.PutUint32(sigLen, uint32(len(signature)))
	buf.Write(sigLen)
	buf.Write(signature)
	buf.Write(q.Rest)

	return buf.Bytes(), nil
}

func (s *QuoteSignatureData) marshal() ([]byte, error) {
	certData, err := s.CertificationData.marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(s.Signature[:])
	buf.Write(s.PublicKey[:])
	buf.Write(certData)

	return buf.Bytes(), nil
}

func (c *CertificationData) marshal() ([]byte, error) {
	var payload []byte
	switch data := c.Data.(type) {
	case []byte:
		payload = data
	case QEReportCertificationData:
		var err error
		if payload, err = data.marshal(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cannot marshal CertificationData payload of type %T", c.Data)
	}

	header := make([]byte, 6)
	binary.LittleEndian.PutUint16(header[0:2], c.Type)
	binary.LittleEndian.PutUint32(header[2:6], uint32(len(payload)))

	return append(header, payload...), nil
}

func (q *QEReportCertificationData) marshal() ([]byte, error) {
	certData, err := q.CertificationData.marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(q.EnclaveReport[:])
	buf.Write(q.Signature[:])

	authLen := make([]byte, 2)
	binary.LittleEndian.PutUint16(authLen, uint16(len(q.QEAuthData)))
	buf.Write(authLen)
	buf.Write(q.QEAuthData)
	buf.Write(certData)

	return buf.Bytes(), nil
}
