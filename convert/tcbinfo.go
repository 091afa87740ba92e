package convert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dcap-cairo/preprocess/convert/cairo"
	"github.com/dcap-cairo/preprocess/convert/types"
)

// TCBInfo converts a JSON TCB Info document into a Cairo data() function
// returning the equivalent TcbInfoV3 struct literal.
//
// Timestamps are emitted verbatim as string literals and TCB statuses as
// TcbStatus enum variants. The attributesMask fields keep the letter case of
// their source strings; all other hex fields emit lowercase literals.
func TCBInfo(jsonDoc []byte) ([]byte, error) {
	var doc types.TCBInfo
	if err := json.Unmarshal(jsonDoc, &doc); err != nil {
		return nil, err
	}
	return renderTCBInfo(doc), nil
}

func renderTCBInfo(doc types.TCBInfo) []byte {
	body := doc.TCBInfo

	var sb strings.Builder
	sb.WriteString("use crate::types::TcbStatus;\n")
	sb.WriteString("use crate::types::tcbinfo::{\n")
	sb.WriteString("    TcbComponent, TcbInfoV3, TcbInfoV3Inner, TcbInfoV3TcbLevel, TcbInfoV3TcbLevelItem, TdxModule,\n")
	sb.WriteString("    TdxModuleIdentities, TdxModuleIdentitiesTcbLevel, TdxModuleIdentitiesTcbLevelItem,\n")
	sb.WriteString("};\n\n")

	sb.WriteString("pub fn data() -> TcbInfoV3 {\n")
	sb.WriteString("    TcbInfoV3 {\n")
	sb.WriteString("        tcb_info: TcbInfoV3Inner {\n")
	fmt.Fprintf(&sb, "            id: %q,\n", body.ID)
	fmt.Fprintf(&sb, "            version: %d,\n", body.Version)
	fmt.Fprintf(&sb, "            issue_date: %q,\n", body.IssueDate)
	fmt.Fprintf(&sb, "            next_update: %q,\n", body.NextUpdate)
	fmt.Fprintf(&sb, "            fmspc: [%s].span(),\n", cairo.FormatInline(body.FMSPC.Bytes, false))
	fmt.Fprintf(&sb, "            pce_id: [%s].span(),\n", cairo.FormatInline(body.PCEID.Bytes, false))
	fmt.Fprintf(&sb, "            tcb_type: %d,\n", body.TCBType)
	fmt.Fprintf(&sb, "            tcb_evaluation_data_number: %d,\n", body.TCBEvaluationDataNumber)

	writeTDXModule(&sb, body.TDXModule)
	writeTDXModuleIdentities(&sb, body.TDXModuleIdentities)

	sb.WriteString("            tcb_levels: array![\n")
	for _, level := range body.TCBLevels {
		writeTCBLevel(&sb, level)
	}
	sb.WriteString("            ],\n")

	sb.WriteString("        },\n")
	fmt.Fprintf(&sb, "        signature: array![%s].span(),\n", cairo.FormatMultiline(doc.Signature.Bytes, 16, indent3, false))
	sb.WriteString("    }\n")
	sb.WriteString("}\n")

	return []byte(sb.String())
}

func writeTDXModule(sb *strings.Builder, tdxModule *types.TDXModule) {
	if tdxModule == nil {
		sb.WriteString("            tdx_module: Option::None,\n")
		return
	}

	sb.WriteString("            tdx_module: Option::Some(\n")
	sb.WriteString("                TdxModule {\n")
	fmt.Fprintf(sb, "                    mrsigner: array![%s]\n", cairo.FormatMultiline(tdxModule.MRSigner.Bytes, 12, indent6, false))
	sb.WriteString("                        .span(),\n")
	fmt.Fprintf(sb, "                    attributes: array![%s].span(),\n", cairo.FormatInline(tdxModule.Attributes.Bytes, false))
	fmt.Fprintf(sb, "                    attributes_mask: array![%s].span(),\n", inlineLiterals(tdxModule.AttributesMask))
	sb.WriteString("                },\n")
	sb.WriteString("            ),\n")
}

func writeTDXModuleIdentities(sb *strings.Builder, identities []types.TDXModuleIdentity) {
	if identities == nil {
		sb.WriteString("            tdx_module_identities: Option::None,\n")
		return
	}

	sb.WriteString("            tdx_module_identities: Option::Some(\n")
	sb.WriteString("                array![\n")
	for _, identity := range identities {
		sb.WriteString("                    TdxModuleIdentities {\n")
		fmt.Fprintf(sb, "                        id: %q,\n", identity.ID)
		fmt.Fprintf(sb, "                        mrsigner: array![%s]\n", cairo.FormatMultiline(identity.MRSigner.Bytes, 12, indent7, false))
		sb.WriteString("                            .span(),\n")
		fmt.Fprintf(sb, "                        attributes: array![%s].span(),\n", cairo.FormatInline(identity.Attributes.Bytes, false))
		fmt.Fprintf(sb, "                        attributes_mask: array![%s]\n", inlineLiterals(identity.AttributesMask))
		sb.WriteString("                            .span(),\n")

		sb.WriteString("                        tcb_levels: array![\n")
		for _, level := range identity.TCBLevels {
			sb.WriteString("                            TdxModuleIdentitiesTcbLevelItem {\n")
			fmt.Fprintf(sb, "                                tcb: TdxModuleIdentitiesTcbLevel { isvsvn: %d },\n", level.ISVSVN)
			fmt.Fprintf(sb, "                                tcb_date: %q,\n", level.TCBDate)
			fmt.Fprintf(sb, "                                tcb_status: TcbStatus::%s,\n", level.TCBStatus)
			fmt.Fprintf(sb, "                                advisory_ids: %s,\n", advisoryIDsLiteral(level.AdvisoryIDs))
			sb.WriteString("                            },\n")
		}
		sb.WriteString("                        ],\n")

		sb.WriteString("                    },\n")
	}
	sb.WriteString("                ],\n")
	sb.WriteString("            ),\n")
}

func writeTCBLevel(sb *strings.Builder, level types.TCBLevel) {
	sb.WriteString("                TcbInfoV3TcbLevelItem {\n")
	sb.WriteString("                    tcb: TcbInfoV3TcbLevel {\n")

	sb.WriteString("                        sgxtcbcomponents: array![\n")
	for _, component := range level.SGXTCBComponents {
		writeTCBComponent(sb, component, indent7)
	}
	sb.WriteString("                        ],\n")

	fmt.Fprintf(sb, "                        pcesvn: %d,\n", level.PCESVN)

	sb.WriteString("                        tdxtcbcomponents: Option::Some(\n")
	sb.WriteString("                            array![\n")
	for _, component := range level.TDXTCBComponents {
		writeTCBComponent(sb, component, indent8)
	}
	sb.WriteString("                            ],\n")
	sb.WriteString("                        ),\n")

	sb.WriteString("                    },\n")
	fmt.Fprintf(sb, "                    tcb_date: %q,\n", level.TCBDate)
	fmt.Fprintf(sb, "                    tcb_status: TcbStatus::%s,\n", level.TCBStatus)
	fmt.Fprintf(sb, "                    advisory_ids: %s,\n", advisoryIDsLiteral(level.AdvisoryIDs))
	sb.WriteString("                },\n")
}

func writeTCBComponent(sb *strings.Builder, component types.TCBComponent, indent string) {
	sb.WriteString(indent + "TcbComponent {\n")
	fmt.Fprintf(sb, indent+"    svn: %d,\n", component.SVN)
	fmt.Fprintf(sb, indent+"    category: %s,\n", optionalString(component.Category))
	fmt.Fprintf(sb, indent+"    type_: %s,\n", optionalString(component.Type))
	sb.WriteString(indent + "},\n")
}

// optionalString renders a string that may be absent from the document as a
// Cairo Option literal. The JSON mapping never produces an empty string for a
// present field, so emptiness doubles as absence.
func optionalString(s string) string {
	if s == "" {
		return "Option::None"
	}
	return fmt.Sprintf("Option::Some(%q)", s)
}

const (
	indent6 = "                        "
	indent7 = "                            "
	indent8 = "                                "
)
