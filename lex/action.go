package lex

// ActionType is what a matched pattern causes the lexer to do: emit a
// token, change state (for local/external token groups scoped to a rule),
// both, or neither (discard: the lexeme is consumed and no token is
// emitted). Hidden terminals are not discarded this way: grammar.NewLexer
// emits them as tokens, and the top-down and LR runtimes attach them as
// trivia by consulting TokenClass.Hidden().
type ActionType int

const (
	ActionNone ActionType = iota
	ActionScan
	ActionState
	ActionScanAndState
)

// Action is the behavior bound to one lexer pattern. Grounded directly on
// internal/ictiobus/lex/action.go.
type Action struct {
	Type    ActionType
	ClassID string
	State   string
}

// SwapState changes the lexer's active pattern state without emitting a
// token, used to enter a local-token region.
func SwapState(toState string) Action {
	return Action{Type: ActionState, State: toState}
}

// LexAs emits a token of the given class ID.
func LexAs(classID string) Action {
	return Action{Type: ActionScan, ClassID: classID}
}

// LexAndSwapState emits a token of the given class ID and then changes
// state, used when a local-token region both opens with and is identified
// by its own leading token.
func LexAndSwapState(classID string, newState string) Action {
	return Action{Type: ActionScanAndState, ClassID: classID, State: newState}
}
