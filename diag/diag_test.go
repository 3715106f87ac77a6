package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_HasErrors(t *testing.T) {
	assert.False(t, HasErrors(nil))
	assert.False(t, HasErrors([]Diagnostic{{Severity: SeverityWarning}, {Severity: SeverityInfo}}))
	assert.True(t, HasErrors([]Diagnostic{{Severity: SeverityWarning}, {Severity: SeverityError}}))
}

func Test_Kind_String(t *testing.T) {
	cases := map[Kind]string{
		KindGrammarValidation: "GrammarValidation",
		KindLexer:             "Lexer",
		KindParser:            "Parser",
		KindLinker:            "Linker",
		KindCancelled:         "Cancelled",
		KindInternal:          "Internal",
		Kind(99):              "Unknown",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}
