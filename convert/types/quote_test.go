package types

import (
	"encoding/binary"
	"encoding/pem"
	"testing"

	fuzzheaders "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcap-cairo/preprocess/blobs"
)

func TestParseQuote(t *testing.T) {
	testCases := map[string]struct {
		rawQuote []byte
		teeType  uint32
		bodySize int
	}{
		"TDX quote": {
			rawQuote: blobs.TDXQuote(),
			teeType:  TEETypeTDX,
			bodySize: 584,
		},
		"SGX quote": {
			rawQuote: blobs.SGXQuote(),
			teeType:  TEETypeSGX,
			bodySize: 384,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			quote, err := ParseQuote(tc.rawQuote)
			require.NoError(err)

			assert.EqualValues(4, quote.Header.Version)
			assert.EqualValues(2, quote.Header.AttestationKeyType)
			assert.Equal(tc.teeType, quote.Header.TEEType)
			assert.Len(quote.Body, tc.bodySize)
			assert.Empty(quote.Rest)

			qeReport, ok := quote.Signature.CertificationData.Data.(QEReportCertificationData)
			require.True(ok)
			assert.Len(qeReport.QEAuthData, 32)

			// The inner certification data must hold the PEM chain, NUL terminated.
			assert.EqualValues(PCK_ID_PCK_CERT_CHAIN, qeReport.CertificationData.Type)
			pemChain, ok := qeReport.CertificationData.Data.([]byte)
			require.True(ok)

			rest := pemChain
			var block *pem.Block
			for i := 0; i < 3; i++ {
				block, rest = pem.Decode(rest)
				require.NotNil(block)
			}
			assert.Equal([]byte{0x0}, rest)
		})
	}
}

func TestParseQuoteErrors(t *testing.T) {
	quote := blobs.TDXQuote()

	badTEEType := append([]byte{}, quote...)
	binary.LittleEndian.PutUint32(badTEEType[4:8], 0x42)

	badOuterType := append([]byte{}, quote...)
	// outer certification data type sits right after signature and public key
	outerTypeOffset := 48 + 584 + 4 + 64 + 64
	binary.LittleEndian.PutUint16(badOuterType[outerTypeOffset:outerTypeOffset+2], 1)

	testCases := map[string]struct {
		rawQuote []byte
		wantErr  error
	}{
		"empty input": {
			rawQuote: nil,
			wantErr:  ErrTruncatedQuote,
		},
		"header only": {
			rawQuote: quote[:48],
			wantErr:  ErrTruncatedQuote,
		},
		"truncated signature": {
			rawQuote: quote[:len(quote)-20],
			wantErr:  ErrTruncatedQuote,
		},
		"truncated body": {
			rawQuote: quote[:48+100],
			wantErr:  ErrTruncatedQuote,
		},
		"unexpected outer certification data type": {
			rawQuote: badOuterType,
			wantErr:  ErrUnsupportedCertFormat,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := ParseQuote(tc.rawQuote)
			assert.ErrorIs(err, tc.wantErr)
		})
	}

	t.Run("unknown TEE type", func(t *testing.T) {
		_, err := ParseQuote(badTEEType)
		assert.Error(t, err)
	})
}

func TestMarshalQuoteRoundTrip(t *testing.T) {
	testCases := map[string][]byte{
		"TDX quote": blobs.TDXQuote(),
		"SGX quote": blobs.SGXQuote(),
	}

	for name, rawQuote := range testCases {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			quote, err := ParseQuote(rawQuote)
			require.NoError(err)

			remarshaled, err := quote.Marshal()
			require.NoError(err)
			assert.Equal(rawQuote, remarshaled)
		})
	}
}

func TestRewritePEMCertChain(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	quote, err := ParseQuote(blobs.TDXQuote())
	require.NoError(err)

	require.NoError(quote.RewritePEMCertChain())

	qeReport := quote.Signature.CertificationData.Data.(QEReportCertificationData)
	assert.EqualValues(PCK_ID_PCK_CERT_CHAIN_DER, qeReport.CertificationData.Type)

	// The rewritten payload must be the DER certificates in chain order,
	// each with a 4 byte little endian length prefix.
	payload := qeReport.CertificationData.Data.([]byte)
	for i, der := range blobs.CertChainDER() {
		require.GreaterOrEqual(len(payload), 4, "certificate %d: missing length prefix", i)
		length := binary.LittleEndian.Uint32(payload[:4])
		require.EqualValues(len(der), length, "certificate %d: wrong length prefix", i)
		assert.Equal(der, payload[4:4+length], "certificate %d: wrong DER bytes", i)
		payload = payload[4+length:]
	}
	assert.Empty(payload)

	// A second rewrite must fail: the type tag no longer matches.
	assert.ErrorIs(quote.RewritePEMCertChain(), ErrUnsupportedCertFormat)
}

func TestRewritePEMCertChainPreservesOtherBytes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	rawQuote := blobs.TDXQuote()
	quote, err := ParseQuote(rawQuote)
	require.NoError(err)
	require.NoError(quote.RewritePEMCertChain())

	rewritten, err := quote.Marshal()
	require.NoError(err)

	// Everything up to the inner certification data is at a fixed offset in
	// both quotes and must be byte identical, except for the recomputed
	// length fields of the signature section and the certification data.
	sigStart := 48 + 584 + 4
	qeReportStart := sigStart + 64 + 64 + 6
	authDataEnd := qeReportStart + 384 + 64 + 2 + 32
	assert.Equal(rawQuote[:48+584], rewritten[:48+584])
	assert.Equal(rawQuote[sigStart:sigStart+128], rewritten[sigStart:sigStart+128])
	assert.Equal(rawQuote[qeReportStart:authDataEnd], rewritten[qeReportStart:authDataEnd])
}

func TestRewritePEMCertChainErrors(t *testing.T) {
	testCases := map[string]struct {
		rawQuote []byte
		wantErr  error
	}{
		"inner certification data is not a PEM chain": {
			rawQuote: blobs.QuoteWithCertDataType(1, []byte("not a PEM chain")),
			wantErr:  ErrUnsupportedCertFormat,
		},
		"already rewritten tag": {
			rawQuote: blobs.QuoteWithCertDataType(PCK_ID_PCK_CERT_CHAIN_DER, []byte{0x1, 0x0, 0x0, 0x0, 0xff}),
			wantErr:  ErrUnsupportedCertFormat,
		},
		"broken PEM chain": {
			rawQuote: blobs.QuoteWithCertDataType(PCK_ID_PCK_CERT_CHAIN, []byte("-----BEGIN CERTIFICATE-----\nnot base64!!\n")),
			wantErr:  nil, // any error is fine, but it must not be ignored
		},
		"empty PEM chain": {
			rawQuote: blobs.QuoteWithCertDataType(PCK_ID_PCK_CERT_CHAIN, []byte{0x00}),
			wantErr:  ErrUnsupportedCertFormat,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			quote, err := ParseQuote(tc.rawQuote)
			require.NoError(err)

			err = quote.RewritePEMCertChain()
			require.Error(err)
			if tc.wantErr != nil {
				assert.ErrorIs(err, tc.wantErr)
			}
		})
	}
}

func FuzzParseQuote(f *testing.F) {
	f.Add(blobs.TDXQuote())
	f.Add(blobs.SGXQuote())
	f.Fuzz(func(t *testing.T, a []byte) {
		assert := assert.New(t)
		assert.NotPanics(func() { _, _ = ParseQuote(a) })
	})
}

func FuzzParseSignature(f *testing.F) {
	f.Fuzz(func(t *testing.T, a []byte) {
		assert := assert.New(t)
		assert.NotPanics(func() { _, _ = parseSignature(a) })
	})
}

func FuzzParseQEReportCertificationData(f *testing.F) {
	f.Fuzz(func(t *testing.T, a []byte) {
		assert := assert.New(t)
		assert.NotPanics(func() { _, _ = parseQEReportCertificationData(a) })
	})
}

func FuzzParseInnerCertificationData(f *testing.F) {
	f.Fuzz(func(t *testing.T, a []byte) {
		assert := assert.New(t)
		assert.NotPanics(func() { _, _ = parseInnerCertificationData(a) })
	})
}

func FuzzMarshalQuote(f *testing.F) {
	f.Fuzz(func(t *testing.T, data []byte) {
		assert := assert.New(t)

		quote := &Quote{}
		fuzzConsumer := fuzzheaders.NewConsumer(data)
		if err := fuzzConsumer.GenerateStruct(quote); err != nil {
			return
		}
		assert.NotPanics(func() { _, _ = quote.Marshal() })
	})
}
