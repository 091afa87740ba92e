// Package cairo renders byte sequences as Cairo source code literals.
//
// The emitted text is consumed as-is by the downstream Cairo verifier's test
// suite, so only byte values and their order are load-bearing; line wrapping
// and indentation are cosmetic.
package cairo

import (
	"fmt"
	"io"
	"strings"
)

// bytesPerLine is the number of byte literals emitted per line by WriteBytes.
const bytesPerLine = 20

// WriteBytes writes data as a fixed-size Cairo byte array constant:
//
//	pub const DATA: [u8; 2] = [
//	    0x41, 0x42,
//	];
//
// The declared length always equals len(data). Empty input yields a
// zero-length array instead of an error.
func WriteBytes(w io.Writer, data []byte) error {
	if _, err := fmt.Fprintf(w, "pub const DATA: [u8; %d] = [\n", len(data)); err != nil {
		return err
	}

	for start := 0; start < len(data); start += bytesPerLine {
		end := start + bytesPerLine
		if end > len(data) {
			end = len(data)
		}

		if _, err := fmt.Fprintf(w, "    %s,\n", FormatInline(data[start:end], false)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "];")
	return err
}

// FormatInline formats bytes as comma separated two-digit hex literals on a single line.
func FormatInline(data []byte, uppercase bool) string {
	literals := make([]string, len(data))
	for i, b := range data {
		literals[i] = formatByte(b, uppercase)
	}
	return strings.Join(literals, ", ")
}

// FormatMultiline formats bytes as comma separated two-digit hex literals,
// wrapped to perLine literals per line and indented for embedding inside an
// array![...] expression. The closing line is dedented by one level so the
// caller can append the closing bracket directly.
func FormatMultiline(data []byte, perLine int, indent string, uppercase bool) string {
	var sb strings.Builder
	for start := 0; start < len(data); start += perLine {
		end := start + perLine
		if end > len(data) {
			end = len(data)
		}

		if start > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
		sb.WriteString(indent)
		sb.WriteString(FormatInline(data[start:end], uppercase))
	}
	sb.WriteString(",\n")
	sb.WriteString(dedent(indent))
	return sb.String()
}

// IsUppercaseHex reports whether a hex string uses uppercase digits.
// Emitters use this to preserve the case of the source document's hex fields.
func IsUppercaseHex(hexStr string) bool {
	return strings.ContainsAny(hexStr, "ABCDEF")
}

func formatByte(b byte, uppercase bool) string {
	if uppercase {
		return fmt.Sprintf("0x%02X", b)
	}
	return fmt.Sprintf("0x%02x", b)
}

func dedent(indent string) string {
	if len(indent) < 4 {
		return ""
	}
	return indent[:len(indent)-4]
}
