package constants_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tgl-library/tglgen/internal/codegen/constants"
)

func TestSymbolName(t *testing.T) {
	type testCase struct {
		decl     string
		expected string
	}

	testCases := []testCase{
		{decl: "messages.sendMessage", expected: "messages_send_message"},
		{decl: "account.getTTL", expected: "account_get_ttl"},
		{decl: "fooID", expected: "foo_id"},
		{decl: "msg", expected: "msg"},
		{decl: "", expected: ""},
		{decl: "inputPeerUser", expected: "input_peer_user"},
		{decl: "Vector", expected: "_vector"},
		{decl: "help.getCDNConfig", expected: "help_get_cdnconfig"},
		{decl: "decryptedMessageLayer", expected: "decrypted_message_layer"},
		{decl: "storage.fileMp4", expected: "storage_file_mp4"},
		{decl: "a.B", expected: "a_.b"},
		{decl: "a..b", expected: "a_..b"},
		{decl: "x_y", expected: "x_y"},
	}

	for _, tc := range testCases {
		t.Run(tc.decl, func(t *testing.T) {
			assert.Equal(t, tc.expected, constants.SymbolName(tc.decl))
		})
	}
}

func TestSymbolNameIdempotent(t *testing.T) {
	for _, decl := range []string{"messages.sendMessage", "account.getTTL", "fooID", "msg", "upload.getCdnFileHashes"} {
		once := constants.SymbolName(decl)
		assert.Equal(t, once, constants.SymbolName(once), decl)
		assert.Equal(t, once, constants.SymbolName(decl), "deterministic")
	}
}
