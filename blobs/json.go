package blobs

// QEIdentityJSON is a QE Identity collateral document as served by Intel's PCS.
// Values are synthetic but keep the real schema, field widths, and mixed hex casing.
var QEIdentityJSON = []byte(`{
  "enclaveIdentity": {
    "id": "TD_QE",
    "version": 2,
    "issueDate": "2025-02-13T03:39:00Z",
    "nextUpdate": "2025-03-15T03:39:00Z",
    "tcbEvaluationDataNumber": 17,
    "miscselect": "00000000",
    "miscselectMask": "FFFFFFFF",
    "attributes": "11000000000000000000000000000000",
    "attributesMask": "FBFF0000000000000000000000000000",
    "mrsigner": "DC9E2A7C6F948F17474E34A7FC43ED030F7C1563F1BABDDF6340C82E0E54A8C5",
    "isvprodid": 2,
    "tcbLevels": [
      {
        "tcb": {
          "isvsvn": 4
        },
        "tcbDate": "2025-02-12T00:00:00Z",
        "tcbStatus": "UpToDate"
      },
      {
        "tcb": {
          "isvsvn": 2
        },
        "tcbDate": "2023-08-09T00:00:00Z",
        "tcbStatus": "OutOfDate",
        "advisoryIDs": ["INTEL-SA-00837"]
      }
    ]
  },
  "signature": "5d78851e6f3b8b0a7ac9041149ae6a6babde35a29ad07f9fa1d84c0e4b64c29b72e5a3d5c64dedda92f474c7a0e6b6e03e7cf9ab52a7f6b12dde91bb372f0da3"
}`)

// TCBInfoJSON is a TDX TCB Info collateral document as served by Intel's PCS.
// Values are synthetic but keep the real schema and field widths.
var TCBInfoJSON = []byte(`{
  "tcbInfo": {
    "id": "TDX",
    "version": 3,
    "issueDate": "2025-02-13T03:39:00Z",
    "nextUpdate": "2025-03-15T03:39:00Z",
    "fmspc": "00806f050000",
    "pceId": "0000",
    "tcbType": 0,
    "tcbEvaluationDataNumber": 17,
    "tdxModule": {
      "mrsigner": "000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000",
      "attributes": "0000000000000000",
      "attributesMask": "FFFFFFFFFFFFFFFF"
    },
    "tdxModuleIdentities": [
      {
        "id": "TDX_01",
        "mrsigner": "000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000",
        "attributes": "0000000000000000",
        "attributesMask": "FFFFFFFFFFFFFFFF",
        "tcbLevels": [
          {
            "tcb": {
              "isvsvn": 4
            },
            "tcbDate": "2025-02-12T00:00:00Z",
            "tcbStatus": "UpToDate"
          }
        ]
      }
    ],
    "tcbLevels": [
      {
        "tcb": {
          "sgxtcbcomponents": [
            {"svn": 2, "category": "BIOS", "type": "Early Microcode Update"},
            {"svn": 2, "category": "OS/VMM", "type": "SGX Late Microcode Update"},
            {"svn": 2, "category": "OS/VMM", "type": "TXT SINIT"},
            {"svn": 2, "category": "BIOS"},
            {"svn": 3},
            {"svn": 1},
            {"svn": 0},
            {"svn": 2, "category": "OS/VMM", "type": "SEAMLDR ACM"},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0}
          ],
          "pcesvn": 13,
          "tdxtcbcomponents": [
            {"svn": 5, "category": "OS/VMM", "type": "TDX Module"},
            {"svn": 0, "category": "OS/VMM", "type": "TDX Module"},
            {"svn": 2, "category": "OS/VMM", "type": "TDX Late Microcode Update"},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0}
          ]
        },
        "tcbDate": "2025-02-12T00:00:00Z",
        "tcbStatus": "UpToDate"
      },
      {
        "tcb": {
          "sgxtcbcomponents": [
            {"svn": 2},
            {"svn": 2},
            {"svn": 2},
            {"svn": 2},
            {"svn": 3},
            {"svn": 1},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0}
          ],
          "pcesvn": 5,
          "tdxtcbcomponents": [
            {"svn": 5},
            {"svn": 0},
            {"svn": 2},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0},
            {"svn": 0}
          ]
        },
        "tcbDate": "2023-08-09T00:00:00Z",
        "tcbStatus": "OutOfDate",
        "advisoryIDs": ["INTEL-SA-00837", "INTEL-SA-00960"]
      }
    ]
  },
  "signature": "a49e86c9615b7895da1e539c8741b329e2a4744bb9d2b6174fcaaf52a49f66a8b3d05b07b7a04cbe13a7eaa4b7958a3a95f8e552b330a19c42bd4ad626b2b45c"
}`)
