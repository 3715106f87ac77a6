package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ictara/langbench/diag"
)

func Test_Grammar_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		build     func() *Grammar
		expectErr bool
	}{
		{
			name:      "empty grammar",
			build:     func() *Grammar { return New("empty") },
			expectErr: true,
		},
		{
			name: "no terminals",
			build: func() *Grammar {
				g := New("g")
				g.AddRule(Rule{Name: "S", Entry: true, Body: TermRef{Name: "A"}})
				return g
			},
			expectErr: true,
		},
		{
			name: "no entry rule",
			build: func() *Grammar {
				g := New("g")
				g.AddTerminal(Terminal{Name: "A", Pattern: "a"})
				g.AddRule(Rule{Name: "S", Body: TermRef{Name: "A"}})
				return g
			},
			expectErr: true,
		},
		{
			name: "undeclared rule reference",
			build: func() *Grammar {
				g := New("g")
				g.AddTerminal(Terminal{Name: "A", Pattern: "a"})
				g.AddRule(Rule{Name: "S", Entry: true, Body: RuleRef{Name: "Missing"}})
				return g
			},
			expectErr: true,
		},
		{
			name: "undeclared terminal reference",
			build: func() *Grammar {
				g := New("g")
				g.AddTerminal(Terminal{Name: "A", Pattern: "a"})
				g.AddRule(Rule{Name: "S", Entry: true, Body: TermRef{Name: "Missing"}})
				return g
			},
			expectErr: true,
		},
		{
			name: "valid single-rule grammar",
			build: func() *Grammar {
				g := New("g")
				g.AddTerminal(Terminal{Name: "A", Pattern: "a"})
				g.AddRule(Rule{Name: "S", Entry: true, Body: TermRef{Name: "A"}})
				return g
			},
			expectErr: false,
		},
		{
			name: "cross-reference to undeclared target",
			build: func() *Grammar {
				g := New("g")
				g.AddTerminal(Terminal{Name: "IDENT", Pattern: "[a-z]+"})
				g.AddRule(Rule{Name: "S", Entry: true, Body: CrossRef{FieldName: "target", Target: "Missing"}})
				return g
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			diags := tc.build().Validate()
			if tc.expectErr {
				assert.True(t, diag.HasErrors(diags), "expected at least one error diagnostic")
			} else {
				assert.False(t, diag.HasErrors(diags), "expected no error diagnostics, got %+v", diags)
			}
		})
	}
}

func Test_Grammar_Validate_DuplicatePrecedenceLevel(t *testing.T) {
	g := New("g")
	g.AddTerminal(Terminal{Name: "A", Pattern: "a"})
	g.AddRule(Rule{Name: "S", Entry: true, Body: TermRef{Name: "A"}})
	g.Precedence = &PrecedenceBlock{Levels: []PrecedenceLevel{
		{Name: "low"},
		{Name: "low"},
	}}

	diags := g.Validate()
	assert.True(t, diag.HasErrors(diags))
}

func Test_Grammar_Validate_DuplicateSpecializeKeywordWarns(t *testing.T) {
	g := New("g")
	g.AddTerminal(Terminal{Name: "IDENT", Pattern: "[a-z]+"})
	g.AddRule(Rule{Name: "S", Entry: true, Body: TermRef{Name: "IDENT"}})
	g.Specialize = []SpecializeBlock{
		{BaseTerminal: "IDENT", Mapping: map[string]string{"if": "IF"}},
		{BaseTerminal: "IDENT", Mapping: map[string]string{"if": "IF"}},
	}

	diags := g.Validate()
	assert.False(t, diag.HasErrors(diags))
	var sawWarning bool
	for _, d := range diags {
		if d.Severity == diag.SeverityWarning {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning)
}
