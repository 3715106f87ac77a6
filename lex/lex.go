package lex

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

type patAct struct {
	src string
	act Action
}

// Lexer builds TokenStreams from source text for one grammar's declared
// token classes. Grounded on internal/ictiobus/lex/lex.go's lexerTemplate:
// a Lexer is a template that AddClass/AddPattern configure once, and Lex
// instantiates a fresh scanning cursor over a given input each call.
//
// Unlike the teacher, which scans an io.Reader through a byte-buffering
// regexReader (built for a streaming game-console input), Lex here operates
// directly on an in-memory string: the workbench's document model always
// holds the full source text for a document (needed for CST fullText and
// incremental reparse), so there is no streaming case to support.
type Lexer struct {
	patterns   map[string][]patAct
	classes    map[string]map[string]TokenClass
	startState string
}

// NewLexer returns an empty Lexer template.
func NewLexer() *Lexer {
	return &Lexer{
		patterns: map[string][]patAct{},
		classes:  map[string]map[string]TokenClass{},
	}
}

// SetStartingState sets the lexer state active at the beginning of Lex.
func (lx *Lexer) SetStartingState(s string) { lx.startState = s }

// StartingState returns the lexer's configured starting state.
func (lx *Lexer) StartingState() string { return lx.startState }

// RegisterClass adds cl as a lexable class within forState (use "" for the
// common/default state).
func (lx *Lexer) RegisterClass(cl TokenClass, forState string) {
	classes, ok := lx.classes[forState]
	if !ok {
		classes = map[string]TokenClass{}
	}
	classes[cl.ID()] = cl
	lx.classes[forState] = classes
}

// AddPattern compiles pat as a regex active within forState and binds
// action to it.
func (lx *Lexer) AddPattern(pat string, action Action, forState string) error {
	if _, err := regexp.Compile(pat); err != nil {
		return fmt.Errorf("cannot compile regex %q: %w", pat, err)
	}
	if action.Type == ActionScan || action.Type == ActionScanAndState {
		classes := lx.classes[forState]
		if _, ok := classes[action.ClassID]; !ok {
			return fmt.Errorf("%q is not a registered token class for state %q; call RegisterClass first", action.ClassID, forState)
		}
	}
	lx.patterns[forState] = append(lx.patterns[forState], patAct{src: pat, act: action})
	return nil
}

// Lex returns a TokenStream over input. Grounded on lazyLex.Next's
// super-regex-per-state construction in internal/ictiobus/lex/lazy.go.
func (lx *Lexer) Lex(input string) (TokenStream, error) {
	ts := &tokenStream{
		src:      input,
		state:    lx.startState,
		classes:  map[string]map[string]TokenClass{},
		actions:  map[string][]Action{},
		patterns: map[string]*regexp.Regexp{},
		line:     1,
		col:      1,
		lookahead: make([]Token, 0, 4),
	}

	for state, pats := range lx.patterns {
		var sb strings.Builder
		sb.WriteString("^(?:")
		actions := make([]Action, len(pats))
		for i, p := range pats {
			sb.WriteString("(" + p.src + ")")
			if i+1 < len(pats) {
				sb.WriteRune('|')
			}
			actions[i] = p.act
		}
		sb.WriteRune(')')

		compiled, err := regexp.Compile(sb.String())
		if err != nil {
			return nil, fmt.Errorf("composing token regex for state %q: %w", state, err)
		}
		compiled.Longest()
		ts.patterns[state] = compiled
		ts.actions[state] = actions
	}
	for state, classes := range lx.classes {
		copied := make(map[string]TokenClass, len(classes))
		for k, v := range classes {
			copied[k] = v
		}
		ts.classes[state] = copied
	}

	return ts, nil
}

// tokenStream is the active scan over one input string.
type tokenStream struct {
	src  string
	pos  int
	line int
	col  int

	state string
	done  bool

	classes  map[string]map[string]TokenClass
	actions  map[string][]Action
	patterns map[string]*regexp.Regexp

	lookahead []Token
}

func (ts *tokenStream) HasNext() bool {
	return !ts.Peek().Class().Equal(TokenEndOfText)
}

func (ts *tokenStream) Next() Token {
	if len(ts.lookahead) > 0 {
		t := ts.lookahead[0]
		ts.lookahead = ts.lookahead[1:]
		return t
	}
	return ts.scanOne()
}

func (ts *tokenStream) Peek() Token {
	return ts.PeekN(0)
}

func (ts *tokenStream) PeekN(n int) Token {
	for len(ts.lookahead) <= n {
		ts.lookahead = append(ts.lookahead, ts.scanOne())
	}
	return ts.lookahead[n]
}

// scanOne advances the cursor by exactly one token, applying gnu-lex style
// disambiguation (longest match, then earliest-defined pattern) exactly as
// internal/ictiobus/lex/lazy.go's selectMatch does.
func (ts *tokenStream) scanOne() Token {
	if ts.done {
		return ts.makeToken(TokenEndOfText, "")
	}
	if ts.pos >= len(ts.src) {
		ts.done = true
		return ts.makeToken(TokenEndOfText, "")
	}

	pat, ok := ts.patterns[ts.state]
	if !ok {
		ts.done = true
		return ts.makeErrorToken(fmt.Sprintf("no patterns registered for lexer state %q", ts.state))
	}

	remaining := ts.src[ts.pos:]
	matches := pat.FindStringSubmatch(remaining)
	if matches == nil {
		ts.done = true
		return ts.makeErrorToken("unrecognized input")
	}

	groupIdx, lexeme := selectMatch(matches)
	action := ts.actions[ts.state][groupIdx]

	tok := ts.advance(lexeme, action)
	if action.Type == ActionNone || action.Type == ActionState {
		return ts.scanOne()
	}
	return tok
}

func (ts *tokenStream) advance(lexeme string, action Action) Token {
	startLine, startCol, startOffset := ts.line, ts.col, ts.pos

	for _, r := range lexeme {
		if r == '\n' {
			ts.line++
			ts.col = 1
		} else {
			ts.col++
		}
	}
	ts.pos += len(lexeme)

	switch action.Type {
	case ActionNone:
		return nil
	case ActionState:
		ts.state = action.State
		return nil
	case ActionScan:
		class := ts.classFor(action.ClassID)
		return token{class: class, lexeme: lexeme, offset: startOffset, line: startLine, linePos: startCol}
	case ActionScanAndState:
		class := ts.classFor(action.ClassID)
		tok := token{class: class, lexeme: lexeme, offset: startOffset, line: startLine, linePos: startCol}
		ts.state = action.State
		return tok
	}
	return nil
}

func (ts *tokenStream) classFor(id string) TokenClass {
	if cl, ok := ts.classes[ts.state][id]; ok {
		return cl
	}
	return MakeDefaultClass(id)
}

func (ts *tokenStream) makeToken(class TokenClass, lexeme string) Token {
	return token{class: class, lexeme: lexeme, offset: ts.pos, line: ts.line, linePos: ts.col}
}

func (ts *tokenStream) makeErrorToken(msg string) Token {
	return token{class: TokenError, lexeme: msg, offset: ts.pos, line: ts.line, linePos: ts.col}
}

// selectMatch picks which capturing group of a super-pattern matched, using
// gnu-lex disambiguation: prefer the longest lexeme, then the
// earliest-defined pattern among equal-length matches. Grounded on
// internal/ictiobus/lex/lazy.go's selectMatch.
func selectMatch(groups []string) (idx int, lexeme string) {
	best := -1
	bestLen := -1
	for i := 1; i < len(groups); i++ {
		if groups[i] == "" {
			continue
		}
		l := utf8.RuneCountInString(groups[i])
		// strict > only: the first (lowest-index, i.e. earliest-defined)
		// group to reach the maximum length wins ties.
		if l > bestLen {
			best = i - 1
			bestLen = l
		}
	}
	if best == -1 {
		return 0, ""
	}
	return best, groups[best+1]
}
