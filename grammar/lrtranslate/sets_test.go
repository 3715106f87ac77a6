package lrtranslate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// classic E -> E '+' T | T ; T -> 'a'
func sumRules() map[string][]Production {
	return map[string][]Production{
		"E": {
			{Symbol{Name: "E"}, Symbol{Name: "+", Terminal: true}, Symbol{Name: "T"}},
			{Symbol{Name: "T"}},
		},
		"T": {
			{Symbol{Name: "a", Terminal: true}},
		},
	}
}

func Test_ComputeFirst(t *testing.T) {
	first := ComputeFirst(sumRules())

	assert.Equal(t, []string{"a"}, first.Of("T"))
	assert.Equal(t, []string{"a"}, first.Of("E"))
	assert.False(t, first.Nullable("E"))
	assert.False(t, first.Nullable("T"))
}

func Test_FirstSets_FirstOfSequence(t *testing.T) {
	first := ComputeFirst(sumRules())

	seq := first.FirstOfSequence(Production{Symbol{Name: "T"}})
	assert.True(t, seq["a"])

	empty := first.FirstOfSequence(nil)
	assert.True(t, empty[""])
}

func Test_ComputeFollow(t *testing.T) {
	rules := sumRules()
	first := ComputeFirst(rules)
	follow := ComputeFollow(rules, first, "E")

	assert.True(t, follow.Of("E")[EndOfInput])
	assert.True(t, follow.Of("E")["+"])
	assert.True(t, follow.Of("T")[EndOfInput])
	assert.True(t, follow.Of("T")["+"])
}

// nullable grammar: S -> A B ; A -> 'x' | (empty) ; B -> 'y'
func nullableRules() map[string][]Production {
	return map[string][]Production{
		"S": {
			{Symbol{Name: "A"}, Symbol{Name: "B"}},
		},
		"A": {
			{Symbol{Name: "x", Terminal: true}},
			{},
		},
		"B": {
			{Symbol{Name: "y", Terminal: true}},
		},
	}
}

func Test_ComputeFirst_NullableProduction(t *testing.T) {
	first := ComputeFirst(nullableRules())

	assert.True(t, first.Nullable("A"))
	assert.False(t, first.Nullable("S"))
	assert.Contains(t, first.Of("S"), "x")
	assert.Contains(t, first.Of("S"), "y")
}
