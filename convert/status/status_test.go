package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := map[string]struct {
		value      string
		wantStatus TCBStatus
		wantErr    bool
	}{
		"up to date": {
			value:      "UpToDate",
			wantStatus: UpToDate,
		},
		"revoked": {
			value:      "Revoked",
			wantStatus: Revoked,
		},
		"configuration and software hardening needed": {
			value:      "ConfigurationAndSWHardeningNeeded",
			wantStatus: ConfigurationAndSWHardeningNeeded,
		},
		"unknown status": {
			value:   "Unknown",
			wantErr: true,
		},
		"wrong case": {
			value:   "uptodate",
			wantErr: true,
		},
		"empty string": {
			value:   "",
			wantErr: true,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			tcbStatus, err := Parse(tc.value)
			if tc.wantErr {
				var unknownErr *UnknownTCBStatusError
				assert.ErrorAs(err, &unknownErr)
				assert.Equal(tc.value, unknownErr.Value)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.wantStatus, tcbStatus)
		})
	}
}
