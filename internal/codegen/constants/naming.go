// Package constants derives the CODE_* opcode defines from a preprocessed
// schema.
package constants

import "strings"

// SymbolName converts a schema declaration name into a constant identifier.
// Every maximal run of uppercase ASCII letters and periods becomes an
// underscore followed by the lower-cased run, except a run that is a single
// period, which becomes just an underscore.
//
//	messages.sendMessage -> messages_send_message
//	account.getTTL       -> account_get_ttl
func SymbolName(decl string) string {
	var b strings.Builder
	b.Grow(len(decl) + 4)
	for i := 0; i < len(decl); {
		if !isRunByte(decl[i]) {
			b.WriteByte(decl[i])
			i++
			continue
		}
		j := i + 1
		for j < len(decl) && isRunByte(decl[j]) {
			j++
		}
		run := decl[i:j]
		b.WriteByte('_')
		if run != "." {
			b.WriteString(strings.ToLower(run))
		}
		i = j
	}
	return b.String()
}

func isRunByte(c byte) bool {
	return c == '.' || (c >= 'A' && c <= 'Z')
}
