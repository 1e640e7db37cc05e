package constants_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgl-library/tglgen/internal/codegen/constants"
	"github.com/tgl-library/tglgen/internal/codegen/errs"
)

func TestParseLine(t *testing.T) {
	type testCase struct {
		name     string
		line     string
		decl     string
		hex      string
		expectOk bool
	}

	testCases := []testCase{
		{name: "plain", line: "account.getTTL#8fc711d", decl: "account.getTTL", hex: "8fc711d", expectOk: true},
		{name: "trailing tokens", line: "boolFalse#bc799737 = Bool;", decl: "boolFalse", hex: "bc799737", expectOk: true},
		{name: "surrounding space", line: "  user#2e13f4c3 id:int = User;\n", decl: "user", hex: "2e13f4c3", expectOk: true},
		{name: "second hash", line: "message#c09be45f flags:# out:flags.1?true", decl: "message", hex: "c09be45f", expectOk: true},
		{name: "upper hex kept", line: "foo#ABCDEF01", decl: "foo", hex: "ABCDEF01", expectOk: true},
		{name: "no hash", line: "---functions---", expectOk: false},
		{name: "hash no token", line: "broken#   ", expectOk: false},
		{name: "hash then hash", line: "broken## x", expectOk: false},
		{name: "empty", line: "", expectOk: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decl, hex, ok := constants.ParseLine(tc.line)
			assert.Equal(t, tc.expectOk, ok)
			if !tc.expectOk {
				return
			}
			assert.Equal(t, tc.decl, decl)
			assert.Equal(t, tc.hex, hex)
		})
	}
}

func TestExtractAndHeader(t *testing.T) {
	input := strings.Join([]string{
		"account.getTTL#8fc711d",
		"---types---",
		"broken#",
		"messages.sendMessage#fa88427a peer:InputPeer = Updates;",
		"msg#1",
	}, "\n")

	consts, err := constants.Extract(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, consts, 3)
	assert.Equal(t, 1, consts[0].Line)
	assert.Equal(t, 4, consts[1].Line)

	var buf bytes.Buffer
	require.NoError(t, constants.WriteHeader(&buf, "", consts))
	assert.Equal(t, "#ifndef __TGL_CONSTANTS_H__\n"+
		"#define __TGL_CONSTANTS_H__\n"+
		"#define CODE_account_get_ttl 0x8fc711d\n"+
		"#define CODE_messages_send_message 0xfa88427a\n"+
		"#define CODE_msg 0x1\n"+
		"#endif\n", buf.String())
}

func TestHeaderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, constants.WriteHeader(&buf, "MY_GUARD", nil))
	assert.Equal(t, "#ifndef MY_GUARD\n#define MY_GUARD\n#endif\n", buf.String())
}

func TestDuplicatesKeptInOrder(t *testing.T) {
	consts, err := constants.ExtractBytes([]byte("fooID#1\nfoo.id#2\nbar#3\nfooID#4\n"))
	require.NoError(t, err)
	require.Len(t, consts, 4)
	assert.Equal(t, "foo_id", consts[0].Symbol)
	assert.Equal(t, "foo_id", consts[1].Symbol)

	dups := constants.Duplicates(consts)
	require.Len(t, dups, 2)
	assert.Equal(t, "foo.id", dups[0].Decl)
	assert.Equal(t, 4, dups[1].Line)

	err = constants.CheckDuplicates(consts)
	var dupErr *errs.DuplicateSymbolError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "foo_id", dupErr.Symbol)
	assert.Equal(t, "fooID", dupErr.First)
	assert.Equal(t, "foo.id", dupErr.Duplicate)
	assert.Equal(t, 2, dupErr.Line)
}

func TestCheckDuplicatesClean(t *testing.T) {
	consts, err := constants.ExtractBytes([]byte("a#1\nb#2\n"))
	require.NoError(t, err)
	assert.NoError(t, constants.CheckDuplicates(consts))
	assert.Empty(t, constants.Duplicates(consts))
}
