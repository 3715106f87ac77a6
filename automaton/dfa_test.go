package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DFA_AddStateAndTransition(t *testing.T) {
	d := New[string]()
	d.AddState("0", "start", false)
	d.AddState("1", "end", true)
	d.AddTransition("0", "a", "1")

	to, ok := d.Transition("0", "a")
	assert.True(t, ok)
	assert.Equal(t, "1", to)

	assert.Equal(t, "end", d.Value("1"))
	assert.True(t, d.IsAccepting("1"))
	assert.False(t, d.IsAccepting("0"))
}

func Test_DFA_TransitionMissingReturnsFalse(t *testing.T) {
	d := New[int]()
	d.AddState("0", 0, false)
	_, ok := d.Transition("0", "missing")
	assert.False(t, ok)
}

func Test_DFA_AddTransitionPanicsOnUnknownState(t *testing.T) {
	d := New[int]()
	d.AddState("0", 0, false)
	assert.Panics(t, func() { d.AddTransition("0", "a", "nonexistent") })
	assert.Panics(t, func() { d.AddTransition("nonexistent", "a", "0") })
}

func Test_DFA_StatesPreservesInsertionOrder(t *testing.T) {
	d := New[int]()
	d.AddState("z", 0, false)
	d.AddState("a", 0, false)
	d.AddState("m", 0, false)
	assert.Equal(t, []string{"z", "a", "m"}, d.States())
}

func Test_DFA_ReAddingStateOverwritesValue(t *testing.T) {
	d := New[int]()
	d.AddState("0", 1, false)
	d.AddState("0", 2, true)
	assert.Equal(t, 2, d.Value("0"))
	assert.True(t, d.IsAccepting("0"))
	assert.Equal(t, []string{"0"}, d.States())
}

func Test_DFA_Has(t *testing.T) {
	d := New[int]()
	d.AddState("0", 0, false)
	assert.True(t, d.Has("0"))
	assert.False(t, d.Has("1"))
}
