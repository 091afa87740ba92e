package cairo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBytes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var sb strings.Builder
	require.NoError(WriteBytes(&sb, []byte{0x41, 0x42}))

	assert.Equal("pub const DATA: [u8; 2] = [\n    0x41, 0x42,\n];\n", sb.String())
}

func TestWriteBytesEmpty(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var sb strings.Builder
	require.NoError(WriteBytes(&sb, nil))

	assert.Equal("pub const DATA: [u8; 0] = [\n];\n", sb.String())
}

func TestWriteBytesWrapsLines(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	data := make([]byte, 45)
	for i := range data {
		data[i] = byte(i)
	}

	var sb strings.Builder
	require.NoError(WriteBytes(&sb, data))
	out := sb.String()

	assert.Contains(out, "pub const DATA: [u8; 45] = [")
	// 20 literals per line: 45 bytes span three value lines.
	assert.Equal(5, strings.Count(out, "\n"))
	assert.Equal(45, strings.Count(out, "0x"))
	assert.Contains(out, "0x2c,\n];")
}

func TestFormatInline(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0x0a, 0xff, 0x00", FormatInline([]byte{0x0a, 0xff, 0x00}, false))
	assert.Equal("0x0A, 0xFF, 0x00", FormatInline([]byte{0x0a, 0xff, 0x00}, true))
	assert.Equal("", FormatInline(nil, false))
}

func TestFormatMultiline(t *testing.T) {
	assert := assert.New(t)

	data := []byte{0x01, 0x02, 0x03, 0x04}
	out := FormatMultiline(data, 2, "        ", false)

	assert.Equal("\n        0x01, 0x02,\n        0x03, 0x04,\n    ", out)
}

func TestIsUppercaseHex(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsUppercaseHex("8C4F5775D796503E96137F77C68A829A0056AC8DED70140B081B094490C57BFF"))
	assert.False(IsUppercaseHex("0000000000000000"))
	assert.False(IsUppercaseHex("abcdef"))
}
