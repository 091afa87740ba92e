package types

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcap-cairo/preprocess/blobs"
	"github.com/dcap-cairo/preprocess/convert/status"
)

func TestUnmarshalQEIdentity(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var doc QEIdentity
	require.NoError(json.Unmarshal(blobs.QEIdentityJSON, &doc))

	identity := doc.EnclaveIdentity
	assert.Equal("TD_QE", identity.ID)
	assert.EqualValues(2, identity.Version)
	assert.Equal("2025-02-13T03:39:00Z", identity.IssueDate)
	assert.Equal("2025-03-15T03:39:00Z", identity.NextUpdate)
	assert.EqualValues(17, identity.TCBEvaluationDataNumber)
	assert.Equal([]byte{0x00, 0x00, 0x00, 0x00}, identity.MiscSelect.Bytes)
	assert.Equal([]byte{0xff, 0xff, 0xff, 0xff}, identity.MiscSelectMask.Bytes)
	assert.Equal("FFFFFFFF", identity.MiscSelectMask.Raw)
	assert.Len(identity.Attributes.Bytes, 16)
	assert.Len(identity.AttributesMask.Bytes, 16)
	assert.Len(identity.MRSIGNER.Bytes, 32)
	assert.EqualValues(2, identity.ISVProdID)
	assert.Len(doc.Signature.Bytes, 64)

	require.Len(identity.TCBLevels, 2)
	assert.EqualValues(4, identity.TCBLevels[0].ISVSVN)
	assert.Equal(status.UpToDate, identity.TCBLevels[0].TCBStatus)
	assert.Nil(identity.TCBLevels[0].AdvisoryIDs)
	assert.Equal(status.OutOfDate, identity.TCBLevels[1].TCBStatus)
	assert.Equal([]string{"INTEL-SA-00837"}, identity.TCBLevels[1].AdvisoryIDs)
}

func TestUnmarshalQEIdentityErrors(t *testing.T) {
	testCases := map[string]struct {
		mutate        func([]byte) []byte
		wantSchemaErr string
		wantHexErr    string
		wantStatus    string
	}{
		"missing mrsigner": {
			mutate:        removeJSONField("mrsigner"),
			wantSchemaErr: "mrsigner",
		},
		"missing signature": {
			mutate:        removeJSONField("signature"),
			wantSchemaErr: "signature",
		},
		"missing isvprodid": {
			mutate:        removeJSONField("isvprodid"),
			wantSchemaErr: "isvprodid",
		},
		"string where number expected": {
			mutate:        replaceJSON(`"isvprodid": 2`, `"isvprodid": "2"`),
			wantSchemaErr: "enclaveIdentity.isvprodid",
		},
		"invalid issueDate": {
			mutate:        replaceJSON(`"issueDate": "2025-02-13T03:39:00Z"`, `"issueDate": "yesterday"`),
			wantSchemaErr: "issueDate",
		},
		"mrsigner too short": {
			mutate:     replaceJSON(`"mrsigner": "DC9E2A7C6F948F17474E34A7FC43ED030F7C1563F1BABDDF6340C82E0E54A8C5"`, `"mrsigner": "DC9E2A7C"`),
			wantHexErr: "mrsigner",
		},
		"miscselect odd length": {
			mutate:     replaceJSON(`"miscselect": "00000000"`, `"miscselect": "000"`),
			wantHexErr: "miscselect",
		},
		"miscselect not hex": {
			mutate:     replaceJSON(`"miscselect": "00000000"`, `"miscselect": "zzzzzzzz"`),
			wantHexErr: "miscselect",
		},
		"unknown tcbStatus": {
			mutate:     replaceJSON(`"tcbStatus": "UpToDate"`, `"tcbStatus": "Unknown"`),
			wantStatus: "Unknown",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var doc QEIdentity
			err := json.Unmarshal(tc.mutate(blobs.QEIdentityJSON), &doc)
			assert.Error(err)

			switch {
			case tc.wantSchemaErr != "":
				var schemaErr *SchemaMismatchError
				assert.ErrorAs(err, &schemaErr)
				assert.Equal(tc.wantSchemaErr, schemaErr.Field)
			case tc.wantHexErr != "":
				var hexErr *InvalidHexFieldError
				assert.ErrorAs(err, &hexErr)
				assert.Equal(tc.wantHexErr, hexErr.Field)
			case tc.wantStatus != "":
				var statusErr *status.UnknownTCBStatusError
				assert.ErrorAs(err, &statusErr)
				assert.Equal(tc.wantStatus, statusErr.Value)
			}
		})
	}
}

func TestUnmarshalTCBInfo(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var doc TCBInfo
	require.NoError(json.Unmarshal(blobs.TCBInfoJSON, &doc))

	body := doc.TCBInfo
	assert.Equal("TDX", body.ID)
	assert.EqualValues(3, body.Version)
	assert.Equal([]byte{0x00, 0x80, 0x6f, 0x05, 0x00, 0x00}, body.FMSPC.Bytes)
	assert.Equal([]byte{0x00, 0x00}, body.PCEID.Bytes)
	assert.Equal(0, body.TCBType)
	assert.EqualValues(17, body.TCBEvaluationDataNumber)
	assert.Len(doc.Signature.Bytes, 64)

	require.NotNil(body.TDXModule)
	assert.Len(body.TDXModule.MRSigner.Bytes, 48)
	assert.Len(body.TDXModule.Attributes.Bytes, 8)
	assert.Equal("FFFFFFFFFFFFFFFF", body.TDXModule.AttributesMask.Raw)

	require.Len(body.TDXModuleIdentities, 1)
	assert.Equal("TDX_01", body.TDXModuleIdentities[0].ID)
	require.Len(body.TDXModuleIdentities[0].TCBLevels, 1)
	assert.EqualValues(4, body.TDXModuleIdentities[0].TCBLevels[0].ISVSVN)

	require.Len(body.TCBLevels, 2)
	level := body.TCBLevels[0]
	require.Len(level.SGXTCBComponents, 16)
	require.Len(level.TDXTCBComponents, 16)
	assert.EqualValues(13, level.PCESVN)
	assert.EqualValues(2, level.SGXTCBComponents[0].SVN)
	assert.Equal("BIOS", level.SGXTCBComponents[0].Category)
	assert.Equal("Early Microcode Update", level.SGXTCBComponents[0].Type)
	assert.Equal(status.UpToDate, level.TCBStatus)
	assert.Equal(status.OutOfDate, body.TCBLevels[1].TCBStatus)
	assert.Equal([]string{"INTEL-SA-00837", "INTEL-SA-00960"}, body.TCBLevels[1].AdvisoryIDs)
}

func TestUnmarshalTCBInfoErrors(t *testing.T) {
	testCases := map[string]struct {
		mutate        func([]byte) []byte
		wantSchemaErr string
		wantHexErr    string
		wantStatus    string
	}{
		"missing tcbInfo": {
			mutate:        replaceJSON(`"tcbInfo": {`, `"tcbInfoBody": {`),
			wantSchemaErr: "tcbInfo",
		},
		"missing fmspc": {
			mutate:        removeJSONField("fmspc"),
			wantSchemaErr: "fmspc",
		},
		"fmspc wrong width": {
			mutate:     replaceJSON(`"fmspc": "00806f050000"`, `"fmspc": "00806f"`),
			wantHexErr: "fmspc",
		},
		"pceId not hex": {
			mutate:     replaceJSON(`"pceId": "0000"`, `"pceId": "xxxx"`),
			wantHexErr: "pceId",
		},
		"tdxModule mrsigner wrong width": {
			mutate: replaceJSON(
				`"mrsigner": "000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000",
      "attributes"`,
				`"mrsigner": "0000",
      "attributes"`),
			wantHexErr: "tdxModule.mrsigner",
		},
		"missing pcesvn": {
			mutate:        removeJSONField("pcesvn"),
			wantSchemaErr: "tcb.pcesvn",
		},
		"unknown tcbStatus": {
			mutate:     replaceJSON(`"tcbStatus": "OutOfDate"`, `"tcbStatus": "Withdrawn"`),
			wantStatus: "Withdrawn",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var doc TCBInfo
			err := json.Unmarshal(tc.mutate(blobs.TCBInfoJSON), &doc)
			assert.Error(err)

			switch {
			case tc.wantSchemaErr != "":
				var schemaErr *SchemaMismatchError
				assert.ErrorAs(err, &schemaErr)
				assert.Equal(tc.wantSchemaErr, schemaErr.Field)
			case tc.wantHexErr != "":
				var hexErr *InvalidHexFieldError
				assert.ErrorAs(err, &hexErr)
				assert.Equal(tc.wantHexErr, hexErr.Field)
			case tc.wantStatus != "":
				var statusErr *status.UnknownTCBStatusError
				assert.ErrorAs(err, &statusErr)
				assert.Equal(tc.wantStatus, statusErr.Value)
			}
		})
	}
}

func FuzzUnmarshalQEIdentity(f *testing.F) {
	f.Add(blobs.QEIdentityJSON)
	f.Fuzz(func(t *testing.T, a []byte) {
		assert := assert.New(t)
		assert.NotPanics(func() {
			var doc QEIdentity
			_ = json.Unmarshal(a, &doc)
		})
	})
}

func FuzzUnmarshalTCBInfo(f *testing.F) {
	f.Add(blobs.TCBInfoJSON)
	f.Fuzz(func(t *testing.T, a []byte) {
		assert := assert.New(t)
		assert.NotPanics(func() {
			var doc TCBInfo
			_ = json.Unmarshal(a, &doc)
		})
	})
}

// removeJSONField drops every line declaring the given field from a fixture document.
func removeJSONField(field string) func([]byte) []byte {
	return func(doc []byte) []byte {
		lines := bytes.Split(doc, []byte("\n"))
		kept := make([][]byte, 0, len(lines))
		for _, line := range lines {
			if bytes.Contains(line, []byte(`"`+field+`":`)) {
				continue
			}
			kept = append(kept, line)
		}
		return fixDanglingCommas(bytes.Join(kept, []byte("\n")))
	}
}

func replaceJSON(old, new string) func([]byte) []byte {
	return func(doc []byte) []byte {
		return bytes.ReplaceAll(doc, []byte(old), []byte(new))
	}
}

// fixDanglingCommas repairs a trailing comma left by removing the last field
// of an object, keeping the mutated fixture valid JSON.
func fixDanglingCommas(doc []byte) []byte {
	doc = bytes.ReplaceAll(doc, []byte(",\n}"), []byte("\n}"))
	return bytes.ReplaceAll(doc, []byte(",\n  }"), []byte("\n  }"))
}
