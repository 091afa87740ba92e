package types

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dcap-cairo/preprocess/convert/status"
)

// This file models the two collateral documents served by Intel's PCS:
// QE Identity and TCB Info. Parsing keeps both the decoded bytes and the raw
// document strings, because the emitted Cairo literals preserve hex letter
// case and timestamps exactly as they appear in the source document.

// SchemaMismatchError is returned when a required field of a collateral
// document is absent or has the wrong JSON kind.
type SchemaMismatchError struct {
	Field string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("field %q is missing or has the wrong JSON type", e.Field)
}

// InvalidHexFieldError is returned when a hex string field cannot be decoded
// or does not decode to its schema-defined width.
type InvalidHexFieldError struct {
	Field string
	Err   error
}

func (e *InvalidHexFieldError) Error() string {
	return fmt.Sprintf("decoding hex field %q: %v", e.Field, e.Err)
}

func (e *InvalidHexFieldError) Unwrap() error { return e.Err }

// HexField is a hex string field decoded to raw bytes.
// Raw keeps the source string so emitters can preserve its letter case.
type HexField struct {
	Raw   string
	Bytes []byte
}

// QEIdentity is a QE Identity collateral document: the signed enclave
// identity body plus its signature.
type QEIdentity struct {
	EnclaveIdentity EnclaveIdentity
	Signature       HexField
}

// EnclaveIdentity is the enclaveIdentity body of a QE Identity document.
type EnclaveIdentity struct {
	ID                      string
	Version                 uint32
	IssueDate               string // RFC3339, validated but passed through verbatim
	NextUpdate              string // RFC3339, validated but passed through verbatim
	TCBEvaluationDataNumber uint32
	MiscSelect              HexField // 4 bytes
	MiscSelectMask          HexField // 4 bytes
	Attributes              HexField // 16 bytes
	AttributesMask          HexField // 16 bytes
	MRSIGNER                HexField // 32 bytes
	ISVProdID               uint16
	TCBLevels               []QETCBLevel
}

// QETCBLevel is one entry of a QE Identity's tcbLevels array.
type QETCBLevel struct {
	ISVSVN      uint16
	TCBDate     string
	TCBStatus   status.TCBStatus
	AdvisoryIDs []string
}

// UnmarshalJSON parses and validates a JSON QE Identity document.
func (q *QEIdentity) UnmarshalJSON(data []byte) error {
	var doc qeIdentityJSON
	if err := unmarshalDocument(data, &doc, "QE Identity"); err != nil {
		return err
	}

	if doc.EnclaveIdentity == nil {
		return &SchemaMismatchError{Field: "enclaveIdentity"}
	}
	enclaveIdentity, err := doc.EnclaveIdentity.parse()
	if err != nil {
		return err
	}
	q.EnclaveIdentity = enclaveIdentity

	q.Signature, err = decodeHexField("signature", doc.Signature, -1)
	if err != nil {
		return err
	}

	return nil
}

type qeIdentityJSON struct {
	EnclaveIdentity *enclaveIdentityJSON `json:"enclaveIdentity"`
	Signature       *string              `json:"signature"`
}

type enclaveIdentityJSON struct {
	ID                      *string          `json:"id"`
	Version                 *uint32          `json:"version"`
	IssueDate               *string          `json:"issueDate"`
	NextUpdate              *string          `json:"nextUpdate"`
	TCBEvaluationDataNumber *uint32          `json:"tcbEvaluationDataNumber"`
	MiscSelect              *string          `json:"miscselect"`
	MiscSelectMask          *string          `json:"miscselectMask"`
	Attributes              *string          `json:"attributes"`
	AttributesMask          *string          `json:"attributesMask"`
	MRSIGNER                *string          `json:"mrsigner"`
	ISVProdID               *uint16          `json:"isvprodid"`
	TCBLevels               []qeTCBLevelJSON `json:"tcbLevels"`
}

func (e *enclaveIdentityJSON) parse() (EnclaveIdentity, error) {
	var identity EnclaveIdentity
	var err error

	if identity.ID, err = requireString("id", e.ID); err != nil {
		return EnclaveIdentity{}, err
	}
	if identity.Version, err = requireUint32("version", e.Version); err != nil {
		return EnclaveIdentity{}, err
	}
	if identity.IssueDate, err = parseTimestamp("issueDate", e.IssueDate); err != nil {
		return EnclaveIdentity{}, err
	}
	if identity.NextUpdate, err = parseTimestamp("nextUpdate", e.NextUpdate); err != nil {
		return EnclaveIdentity{}, err
	}
	if identity.TCBEvaluationDataNumber, err = requireUint32("tcbEvaluationDataNumber", e.TCBEvaluationDataNumber); err != nil {
		return EnclaveIdentity{}, err
	}

	if identity.MiscSelect, err = decodeHexField("miscselect", e.MiscSelect, 4); err != nil {
		return EnclaveIdentity{}, err
	}
	if identity.MiscSelectMask, err = decodeHexField("miscselectMask", e.MiscSelectMask, 4); err != nil {
		return EnclaveIdentity{}, err
	}
	if identity.Attributes, err = decodeHexField("attributes", e.Attributes, 16); err != nil {
		return EnclaveIdentity{}, err
	}
	if identity.AttributesMask, err = decodeHexField("attributesMask", e.AttributesMask, 16); err != nil {
		return EnclaveIdentity{}, err
	}
	if identity.MRSIGNER, err = decodeHexField("mrsigner", e.MRSIGNER, 32); err != nil {
		return EnclaveIdentity{}, err
	}

	if e.ISVProdID == nil {
		return EnclaveIdentity{}, &SchemaMismatchError{Field: "isvprodid"}
	}
	identity.ISVProdID = *e.ISVProdID

	if e.TCBLevels == nil {
		return EnclaveIdentity{}, &SchemaMismatchError{Field: "tcbLevels"}
	}
	for _, level := range e.TCBLevels {
		parsedLevel, err := level.parse()
		if err != nil {
			return EnclaveIdentity{}, err
		}
		identity.TCBLevels = append(identity.TCBLevels, parsedLevel)
	}

	return identity, nil
}

type qeTCBLevelJSON struct {
	TCB *struct {
		ISVSVN *uint16 `json:"isvsvn"`
	} `json:"tcb"`
	TCBDate     *string  `json:"tcbDate"`
	TCBStatus   *string  `json:"tcbStatus"`
	AdvisoryIDs []string `json:"advisoryIDs"`
}

func (l *qeTCBLevelJSON) parse() (QETCBLevel, error) {
	var level QETCBLevel
	var err error

	if l.TCB == nil || l.TCB.ISVSVN == nil {
		return QETCBLevel{}, &SchemaMismatchError{Field: "tcb.isvsvn"}
	}
	level.ISVSVN = *l.TCB.ISVSVN

	if level.TCBDate, err = parseTimestamp("tcbDate", l.TCBDate); err != nil {
		return QETCBLevel{}, err
	}
	if level.TCBStatus, err = parseStatus(l.TCBStatus); err != nil {
		return QETCBLevel{}, err
	}
	level.AdvisoryIDs = l.AdvisoryIDs

	return level, nil
}

// TCBInfo is a TCB Info collateral document: the signed tcbInfo body plus its signature.
type TCBInfo struct {
	TCBInfo   TCBInfoBody
	Signature HexField
}

// TCBInfoBody is the tcbInfo body of a TCB Info document.
type TCBInfoBody struct {
	ID                      string
	Version                 uint32
	IssueDate               string   // RFC3339, validated but passed through verbatim
	NextUpdate              string   // RFC3339, validated but passed through verbatim
	FMSPC                   HexField // 6 bytes
	PCEID                   HexField // 2 bytes
	TCBType                 int
	TCBEvaluationDataNumber uint32
	TDXModule               *TDXModule
	TDXModuleIdentities     []TDXModuleIdentity
	TCBLevels               []TCBLevel
}

// TDXModule contains expected MRSIGNER and attribute information for the TDX module.
type TDXModule struct {
	MRSigner       HexField // 48 bytes
	Attributes     HexField // 8 bytes
	AttributesMask HexField // 8 bytes
}

// TDXModuleIdentity describes one TDX module identity with its own TCB levels.
type TDXModuleIdentity struct {
	ID             string
	MRSigner       HexField // 48 bytes
	Attributes     HexField // 8 bytes
	AttributesMask HexField // 8 bytes
	TCBLevels      []TDXModuleTCBLevel
}

// TDXModuleTCBLevel is one entry of a TDX module identity's tcbLevels array.
type TDXModuleTCBLevel struct {
	ISVSVN      uint8
	TCBDate     string
	TCBStatus   status.TCBStatus
	AdvisoryIDs []string
}

// TCBLevel is one entry of a TCB Info's tcbLevels array.
type TCBLevel struct {
	SGXTCBComponents []TCBComponent
	PCESVN           uint16
	TDXTCBComponents []TCBComponent
	TCBDate          string
	TCBStatus        status.TCBStatus
	AdvisoryIDs      []string
}

// TCBComponent describes SVN information of a single TCB component.
type TCBComponent struct {
	SVN      uint8
	Category string
	Type     string
}

// UnmarshalJSON parses and validates a JSON TCB Info document.
func (t *TCBInfo) UnmarshalJSON(data []byte) error {
	var doc tcbInfoJSON
	if err := unmarshalDocument(data, &doc, "TCB Info"); err != nil {
		return err
	}

	if doc.TCBInfo == nil {
		return &SchemaMismatchError{Field: "tcbInfo"}
	}
	body, err := doc.TCBInfo.parse()
	if err != nil {
		return err
	}
	t.TCBInfo = body

	t.Signature, err = decodeHexField("signature", doc.Signature, -1)
	if err != nil {
		return err
	}

	return nil
}

type tcbInfoJSON struct {
	TCBInfo   *tcbInfoBodyJSON `json:"tcbInfo"`
	Signature *string          `json:"signature"`
}

type tcbInfoBodyJSON struct {
	ID                      *string                 `json:"id"`
	Version                 *uint32                 `json:"version"`
	IssueDate               *string                 `json:"issueDate"`
	NextUpdate              *string                 `json:"nextUpdate"`
	FMSPC                   *string                 `json:"fmspc"`
	PCEID                   *string                 `json:"pceId"`
	TCBType                 *int                    `json:"tcbType"`
	TCBEvaluationDataNumber *uint32                 `json:"tcbEvaluationDataNumber"`
	TDXModule               *tdxModuleJSON          `json:"tdxModule"`
	TDXModuleIdentities     []tdxModuleIdentityJSON `json:"tdxModuleIdentities"`
	TCBLevels               []tcbLevelJSON          `json:"tcbLevels"`
}

func (b *tcbInfoBodyJSON) parse() (TCBInfoBody, error) {
	var body TCBInfoBody
	var err error

	if body.ID, err = requireString("id", b.ID); err != nil {
		return TCBInfoBody{}, err
	}
	if body.Version, err = requireUint32("version", b.Version); err != nil {
		return TCBInfoBody{}, err
	}
	if body.IssueDate, err = parseTimestamp("issueDate", b.IssueDate); err != nil {
		return TCBInfoBody{}, err
	}
	if body.NextUpdate, err = parseTimestamp("nextUpdate", b.NextUpdate); err != nil {
		return TCBInfoBody{}, err
	}
	if body.FMSPC, err = decodeHexField("fmspc", b.FMSPC, 6); err != nil {
		return TCBInfoBody{}, err
	}
	if body.PCEID, err = decodeHexField("pceId", b.PCEID, 2); err != nil {
		return TCBInfoBody{}, err
	}

	if b.TCBType == nil {
		return TCBInfoBody{}, &SchemaMismatchError{Field: "tcbType"}
	}
	body.TCBType = *b.TCBType

	if body.TCBEvaluationDataNumber, err = requireUint32("tcbEvaluationDataNumber", b.TCBEvaluationDataNumber); err != nil {
		return TCBInfoBody{}, err
	}

	if b.TDXModule != nil {
		tdxModule, err := b.TDXModule.parse()
		if err != nil {
			return TCBInfoBody{}, err
		}
		body.TDXModule = &tdxModule
	}

	for _, identity := range b.TDXModuleIdentities {
		parsedIdentity, err := identity.parse()
		if err != nil {
			return TCBInfoBody{}, err
		}
		body.TDXModuleIdentities = append(body.TDXModuleIdentities, parsedIdentity)
	}

	if b.TCBLevels == nil {
		return TCBInfoBody{}, &SchemaMismatchError{Field: "tcbLevels"}
	}
	for _, level := range b.TCBLevels {
		parsedLevel, err := level.parse()
		if err != nil {
			return TCBInfoBody{}, err
		}
		body.TCBLevels = append(body.TCBLevels, parsedLevel)
	}

	return body, nil
}

type tdxModuleJSON struct {
	MRSigner       *string `json:"mrsigner"`
	Attributes     *string `json:"attributes"`
	AttributesMask *string `json:"attributesMask"`
}

func (m *tdxModuleJSON) parse() (TDXModule, error) {
	var tdxModule TDXModule
	var err error

	if tdxModule.MRSigner, err = decodeHexField("tdxModule.mrsigner", m.MRSigner, 48); err != nil {
		return TDXModule{}, err
	}
	if tdxModule.Attributes, err = decodeHexField("tdxModule.attributes", m.Attributes, 8); err != nil {
		return TDXModule{}, err
	}
	if tdxModule.AttributesMask, err = decodeHexField("tdxModule.attributesMask", m.AttributesMask, 8); err != nil {
		return TDXModule{}, err
	}

	return tdxModule, nil
}

type tdxModuleIdentityJSON struct {
	ID             *string `json:"id"`
	MRSigner       *string `json:"mrsigner"`
	Attributes     *string `json:"attributes"`
	AttributesMask *string `json:"attributesMask"`
	TCBLevels      []struct {
		TCB *struct {
			ISVSVN *uint8 `json:"isvsvn"`
		} `json:"tcb"`
		TCBDate     *string  `json:"tcbDate"`
		TCBStatus   *string  `json:"tcbStatus"`
		AdvisoryIDs []string `json:"advisoryIDs"`
	} `json:"tcbLevels"`
}

func (i *tdxModuleIdentityJSON) parse() (TDXModuleIdentity, error) {
	var identity TDXModuleIdentity
	var err error

	if identity.ID, err = requireString("tdxModuleIdentities.id", i.ID); err != nil {
		return TDXModuleIdentity{}, err
	}
	if identity.MRSigner, err = decodeHexField("tdxModuleIdentities.mrsigner", i.MRSigner, 48); err != nil {
		return TDXModuleIdentity{}, err
	}
	if identity.Attributes, err = decodeHexField("tdxModuleIdentities.attributes", i.Attributes, 8); err != nil {
		return TDXModuleIdentity{}, err
	}
	if identity.AttributesMask, err = decodeHexField("tdxModuleIdentities.attributesMask", i.AttributesMask, 8); err != nil {
		return TDXModuleIdentity{}, err
	}

	for _, level := range i.TCBLevels {
		var parsedLevel TDXModuleTCBLevel
		if level.TCB == nil || level.TCB.ISVSVN == nil {
			return TDXModuleIdentity{}, &SchemaMismatchError{Field: "tdxModuleIdentities.tcb.isvsvn"}
		}
		parsedLevel.ISVSVN = *level.TCB.ISVSVN
		if parsedLevel.TCBDate, err = parseTimestamp("tcbDate", level.TCBDate); err != nil {
			return TDXModuleIdentity{}, err
		}
		if parsedLevel.TCBStatus, err = parseStatus(level.TCBStatus); err != nil {
			return TDXModuleIdentity{}, err
		}
		parsedLevel.AdvisoryIDs = level.AdvisoryIDs
		identity.TCBLevels = append(identity.TCBLevels, parsedLevel)
	}

	return identity, nil
}

type tcbLevelJSON struct {
	TCB *struct {
		SGXTCBComponents []tcbComponentJSON `json:"sgxtcbcomponents"`
		PCESVN           *uint16            `json:"pcesvn"`
		TDXTCBComponents []tcbComponentJSON `json:"tdxtcbcomponents"`
	} `json:"tcb"`
	TCBDate     *string  `json:"tcbDate"`
	TCBStatus   *string  `json:"tcbStatus"`
	AdvisoryIDs []string `json:"advisoryIDs"`
}

type tcbComponentJSON struct {
	SVN      *uint8 `json:"svn"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

func (l *tcbLevelJSON) parse() (TCBLevel, error) {
	var level TCBLevel
	var err error

	if l.TCB == nil {
		return TCBLevel{}, &SchemaMismatchError{Field: "tcb"}
	}
	if l.TCB.SGXTCBComponents == nil {
		return TCBLevel{}, &SchemaMismatchError{Field: "tcb.sgxtcbcomponents"}
	}
	if level.SGXTCBComponents, err = parseComponents("tcb.sgxtcbcomponents", l.TCB.SGXTCBComponents); err != nil {
		return TCBLevel{}, err
	}
	if l.TCB.PCESVN == nil {
		return TCBLevel{}, &SchemaMismatchError{Field: "tcb.pcesvn"}
	}
	level.PCESVN = *l.TCB.PCESVN
	if l.TCB.TDXTCBComponents == nil {
		return TCBLevel{}, &SchemaMismatchError{Field: "tcb.tdxtcbcomponents"}
	}
	if level.TDXTCBComponents, err = parseComponents("tcb.tdxtcbcomponents", l.TCB.TDXTCBComponents); err != nil {
		return TCBLevel{}, err
	}

	if level.TCBDate, err = parseTimestamp("tcbDate", l.TCBDate); err != nil {
		return TCBLevel{}, err
	}
	if level.TCBStatus, err = parseStatus(l.TCBStatus); err != nil {
		return TCBLevel{}, err
	}
	level.AdvisoryIDs = l.AdvisoryIDs

	return level, nil
}

func parseComponents(field string, components []tcbComponentJSON) ([]TCBComponent, error) {
	parsed := make([]TCBComponent, len(components))
	for i, component := range components {
		if component.SVN == nil {
			return nil, &SchemaMismatchError{Field: field + ".svn"}
		}
		parsed[i] = TCBComponent{
			SVN:      *component.SVN,
			Category: component.Category,
			Type:     component.Type,
		}
	}
	return parsed, nil
}

// unmarshalDocument unmarshals into the shadow struct and turns JSON kind
// errors into SchemaMismatchError naming the offending field.
func unmarshalDocument(data []byte, v any, docName string) error {
	if err := json.Unmarshal(data, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &SchemaMismatchError{Field: typeErr.Field}
		}
		return fmt.Errorf("unmarshaling %s JSON: %w", docName, err)
	}
	return nil
}

// decodeHexField decodes a hex string field into a HexField.
// This function errors if the decoded string is not the expected length,
// to save the caller from having to check the width separately.
// An expectedLen < 0 allows any width.
func decodeHexField(field string, in *string, expectedLen int) (HexField, error) {
	if in == nil {
		return HexField{}, &SchemaMismatchError{Field: field}
	}

	out, err := hex.DecodeString(*in)
	if err != nil {
		return HexField{}, &InvalidHexFieldError{Field: field, Err: err}
	}
	if expectedLen >= 0 && len(out) != expectedLen {
		return HexField{}, &InvalidHexFieldError{Field: field, Err: fmt.Errorf("expected %d bytes, but got %d", expectedLen, len(out))}
	}

	return HexField{Raw: *in, Bytes: out}, nil
}

func requireString(field string, in *string) (string, error) {
	if in == nil {
		return "", &SchemaMismatchError{Field: field}
	}
	return *in, nil
}

func requireUint32(field string, in *uint32) (uint32, error) {
	if in == nil {
		return 0, &SchemaMismatchError{Field: field}
	}
	return *in, nil
}

// parseTimestamp validates an RFC3339 timestamp field and returns it verbatim.
// Timestamps are never recomputed; the emitted literal carries the document's
// original encoding.
func parseTimestamp(field string, in *string) (string, error) {
	if in == nil {
		return "", &SchemaMismatchError{Field: field}
	}
	if _, err := time.Parse(time.RFC3339, *in); err != nil {
		return "", &SchemaMismatchError{Field: field}
	}
	return *in, nil
}

func parseStatus(in *string) (status.TCBStatus, error) {
	if in == nil {
		return "", &SchemaMismatchError{Field: "tcbStatus"}
	}
	return status.Parse(*in)
}
