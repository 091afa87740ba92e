package convert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dcap-cairo/preprocess/convert/cairo"
	"github.com/dcap-cairo/preprocess/convert/types"
)

// QEIdentity converts a JSON QE Identity document into a Cairo data() function
// returning the equivalent EnclaveIdentityV2 struct literal.
//
// Timestamps are emitted verbatim as string literals and TCB statuses as
// TcbStatus enum variants. Hex fields whose source string uses uppercase
// digits keep uppercase byte literals.
func QEIdentity(jsonDoc []byte) ([]byte, error) {
	var doc types.QEIdentity
	if err := json.Unmarshal(jsonDoc, &doc); err != nil {
		return nil, err
	}
	return renderQEIdentity(doc), nil
}

func renderQEIdentity(doc types.QEIdentity) []byte {
	identity := doc.EnclaveIdentity

	var sb strings.Builder
	sb.WriteString("use crate::types::TcbStatus;\n")
	sb.WriteString("use crate::types::enclave_identity::{\n")
	sb.WriteString("    EnclaveIdentityV2, EnclaveIdentityV2Inner, EnclaveIdentityV2TcbLevel,\n")
	sb.WriteString("    EnclaveIdentityV2TcbLevelItem,\n")
	sb.WriteString("};\n\n")

	sb.WriteString("pub fn data() -> EnclaveIdentityV2 {\n")
	sb.WriteString("    EnclaveIdentityV2 {\n")
	sb.WriteString("        enclave_identity: EnclaveIdentityV2Inner {\n")
	fmt.Fprintf(&sb, "            id: %q,\n", identity.ID)
	fmt.Fprintf(&sb, "            version: %d,\n", identity.Version)
	fmt.Fprintf(&sb, "            issue_date: %q,\n", identity.IssueDate)
	fmt.Fprintf(&sb, "            next_update: %q,\n", identity.NextUpdate)
	fmt.Fprintf(&sb, "            tcb_evaluation_data_number: %d,\n", identity.TCBEvaluationDataNumber)

	fmt.Fprintf(&sb, "            miscselect: array![%s].span(),\n", cairo.FormatInline(identity.MiscSelect.Bytes, true))
	fmt.Fprintf(&sb, "            miscselect_mask: array![%s].span(),\n", inlineLiterals(identity.MiscSelectMask))
	fmt.Fprintf(&sb, "            attributes: array![%s].span(),\n", cairo.FormatMultiline(identity.Attributes.Bytes, 16, indent4, false))
	fmt.Fprintf(&sb, "            attributes_mask: array![%s].span(),\n", multilineLiterals(identity.AttributesMask, indent4))
	fmt.Fprintf(&sb, "            mrsigner: array![%s].span(),\n", multilineLiterals(identity.MRSIGNER, indent4))
	fmt.Fprintf(&sb, "            isvprodid: %d,\n", identity.ISVProdID)

	sb.WriteString("            tcb_levels: array![\n")
	for _, level := range identity.TCBLevels {
		sb.WriteString("                EnclaveIdentityV2TcbLevelItem {\n")
		fmt.Fprintf(&sb, "                    tcb: EnclaveIdentityV2TcbLevel { isvsvn: %d },\n", level.ISVSVN)
		fmt.Fprintf(&sb, "                    tcb_date: %q,\n", level.TCBDate)
		fmt.Fprintf(&sb, "                    tcb_status: TcbStatus::%s,\n", level.TCBStatus)
		fmt.Fprintf(&sb, "                    advisory_ids: %s,\n", advisoryIDsLiteral(level.AdvisoryIDs))
		sb.WriteString("                },\n")
	}
	sb.WriteString("            ].span(),\n")

	sb.WriteString("        },\n")
	fmt.Fprintf(&sb, "        signature: array![%s].span(),\n", multilineLiterals(doc.Signature, indent3))
	sb.WriteString("    }\n")
	sb.WriteString("}\n")

	return []byte(sb.String())
}

const (
	indent3 = "            "
	indent4 = "                "
)

// inlineLiterals formats a hex field on one line, preserving the source string's case.
func inlineLiterals(field types.HexField) string {
	return cairo.FormatInline(field.Bytes, cairo.IsUppercaseHex(field.Raw))
}

// multilineLiterals formats a hex field at 16 bytes per line, preserving the
// source string's case.
func multilineLiterals(field types.HexField, indent string) string {
	return cairo.FormatMultiline(field.Bytes, 16, indent, cairo.IsUppercaseHex(field.Raw))
}

// advisoryIDsLiteral renders an advisory ID list as an Option of a string span.
// A document without the field yields Option::None rather than an empty array.
func advisoryIDsLiteral(ids []string) string {
	if ids == nil {
		return "Option::None"
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	return fmt.Sprintf("Option::Some(array![%s].span())", strings.Join(quoted, ", "))
}
