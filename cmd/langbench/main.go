/*
Langbench compiles a grammar source file and parses a document against it
into a linked AST, printing the resulting diagnostics (and, with
--dump-cst, the concrete syntax tree).

It is a thin exerciser for the parser-core library packages, not an editor
client: an interactive mode additionally lets a user probe the cursor-driven
editor services (hover, references, symbols, folding) against whatever was
last parsed.

Usage:

	langbench [flags] [FILE]

The flags are:

	-g, --grammar FILE
		Grammar source file to compile (required).

	-b, --backend topdown|lr
		Which parser backend to run. Defaults to topdown.

	-l, --max-lookahead N
		Lookahead horizon stored on the topdown backend. Defaults to 3.
		The backend chooses among alternatives on the next token only.

	-a, --artifact FILE
		Load a precompiled LR generator artifact instead of translating
		the grammar and compiling its table (the grammar is still needed
		for its terminal patterns, to build the lexer).

	--emit-artifact FILE
		When the lr backend is selected, write the generator artifact
		bundle to FILE after compiling and exit.

	-i, --interactive
		Start an interactive session after parsing FILE (or stdin) once,
		for probing editor services against the parsed document.

	--dump-cst
		Print the concrete syntax tree and exit.

If FILE is omitted, the document is read from stdin.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"

	"github.com/ictara/langbench/artifact"
	"github.com/ictara/langbench/ast"
	"github.com/ictara/langbench/config"
	"github.com/ictara/langbench/diag"
	"github.com/ictara/langbench/grammar"
	"github.com/ictara/langbench/grammar/lrtranslate"
	"github.com/ictara/langbench/index"
	"github.com/ictara/langbench/parse"
	"github.com/ictara/langbench/registry"
	"github.com/ictara/langbench/services"
	"github.com/ictara/langbench/syntax"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue compiling the grammar or loading an artifact.
	ExitInitError

	// ExitParseError indicates the document itself failed to parse clean
	// (error-severity diagnostics were produced).
	ExitParseError
)

var (
	returnCode     = ExitSuccess
	grammarFile    = pflag.StringP("grammar", "g", "", "Grammar source file to compile")
	backendFlag    = pflag.StringP("backend", "b", "", "Parser backend: topdown or lr")
	maxLookahead   = pflag.IntP("max-lookahead", "l", 0, "Topdown backend lookahead horizon")
	artifactIn     = pflag.StringP("artifact", "a", "", "Load a precompiled LR artifact instead of compiling the grammar")
	artifactOut    = pflag.String("emit-artifact", "", "With the lr backend selected, write the artifact bundle to this path and exit")
	projectFile    = pflag.StringP("project", "p", "", "Project manifest (toml) to load instead of --grammar/--backend/--max-lookahead")
	interactive    = pflag.BoolP("interactive", "i", false, "Start an interactive session after the first parse")
	dumpCST        = pflag.Bool("dump-cst", false, "Print the concrete syntax tree and exit")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	sess, err := newSession()
	if err != nil {
		pterm.Error.Println(err.Error())
		returnCode = ExitInitError
		return
	}

	var srcPath string
	if pflag.NArg() > 0 {
		srcPath = pflag.Arg(0)
	}
	src, err := readSource(srcPath)
	if err != nil {
		pterm.Error.Println(err.Error())
		returnCode = ExitInitError
		return
	}

	uri := "file://" + srcPath
	if srcPath == "" {
		uri = "untitled:stdin"
	}

	doc, diags := sess.parseAndLink(uri, src)
	printDiagnostics(diags)

	if diag.HasErrors(diags) {
		returnCode = ExitParseError
	}

	if *dumpCST {
		if doc.root != nil {
			fmt.Println(syntax.Dump(doc.root.Top))
		}
		return
	}

	if *interactive {
		if doc.ast == nil {
			pterm.Warning.Println("document failed to parse; interactive commands need a built AST")
			return
		}
		runREPL(sess, doc)
	}
}

// session holds everything compiled from the grammar once, shared across
// every document parsed (one per REPL command, in interactive mode).
type session struct {
	g         *grammar.Grammar
	classes   grammar.BuiltClasses
	backend   config.Backend
	lookahead int
	topdown   parse.TopDownParser
	lrAdapter parse.LRAdapter
	ix        *index.Index
	linker    *ast.Linker
	docs      map[string]*parsedDoc
	reg       *registry.Registry
}

type parsedDoc struct {
	uri  string
	src  string
	root *syntax.Root
	ast  *ast.Document
}

func newSession() (*session, error) {
	sess := &session{
		ix:   index.New(),
		docs: map[string]*parsedDoc{},
		reg:  registry.New(),
	}

	grammarPath := *grammarFile
	switch {
	case *projectFile != "":
		proj, err := config.Load(*projectFile)
		if err != nil {
			return nil, err
		}
		grammarPath = proj.EntryGrammar
		sess.backend = proj.Backend
		sess.lookahead = proj.MaxLookahead
	case *grammarFile != "":
		sess.backend = config.Backend(*backendFlag)
		sess.lookahead = *maxLookahead
	default:
		return nil, fmt.Errorf("langbench: one of --project or --grammar is required")
	}

	g, err := loadGrammar(grammarPath)
	if err != nil {
		return nil, err
	}
	sess.g = g

	if sess.backend == "" {
		sess.backend = config.BackendTopDown
	}
	if sess.lookahead == 0 {
		sess.lookahead = 3
	}

	sess.classes = grammar.BuildTokenClasses(sess.g)
	sess.topdown = parse.TopDownParser{Lookahead: sess.lookahead}

	switch {
	case *artifactIn != "":
		// A loaded artifact skips grammar translation and table
		// construction, but the lexer is still built from the grammar's
		// own terminal patterns: the bundle carries the compiled table,
		// not the source regexes.
		data, err := os.ReadFile(*artifactIn)
		if err != nil {
			return nil, fmt.Errorf("langbench: reading artifact %s: %w", *artifactIn, err)
		}
		bundle, err := artifact.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("langbench: decoding artifact %s: %w", *artifactIn, err)
		}
		sess.lrAdapter = bundle.Adapter(hiddenSet(sess.classes))
		sess.backend = config.BackendLR
	case sess.backend == config.BackendLR:
		out, diags := lrtranslate.Translate(sess.g)
		if diag.HasErrors(diags) {
			printDiagnostics(diags)
			return nil, fmt.Errorf("langbench: grammar failed validation for the lr backend")
		}
		table, tdiags := parse.CompileLALR1(out)
		if diag.HasErrors(tdiags) {
			printDiagnostics(tdiags)
			return nil, fmt.Errorf("langbench: lalr(1) table construction reported conflicts")
		}
		sess.lrAdapter = parse.LRAdapter{Table: table, Out: out, Hidden: hiddenSet(sess.classes)}

		if *artifactOut != "" {
			data, err := artifact.Encode(artifact.Bundle{Table: *table, FieldMap: out.FieldMap, Keywords: out.Keywords})
			if err != nil {
				return nil, fmt.Errorf("langbench: encoding artifact: %w", err)
			}
			if err := os.WriteFile(*artifactOut, data, 0o644); err != nil {
				return nil, fmt.Errorf("langbench: writing artifact %s: %w", *artifactOut, err)
			}
			os.Exit(ExitSuccess)
		}
	}

	sess.linker = ast.NewLinker(sess.ix, sess.documentProvider)
	registerServices(sess.reg, sess)

	return sess, nil
}

func loadGrammar(path string) (*grammar.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("langbench: reading grammar %s: %w", path, err)
	}
	g, err := grammar.ParseSource(path, string(data))
	if err != nil {
		return nil, fmt.Errorf("langbench: parsing grammar %s: %w", path, err)
	}
	if diags := g.Validate(); diag.HasErrors(diags) {
		printDiagnostics(diags)
		return nil, fmt.Errorf("langbench: grammar %s failed validation", path)
	}
	return g, nil
}

func hiddenSet(classes grammar.BuiltClasses) map[string]bool {
	out := map[string]bool{}
	for id, cl := range classes.Classes {
		if cl.Hidden() {
			out[id] = true
		}
	}
	return out
}

func readSource(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("langbench: reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("langbench: reading %s: %w", path, err)
	}
	return string(data), nil
}

// documentProvider is an ast.Linker's view of every document the session
// has parsed so far, keyed by URI.
func (s *session) documentProvider(uri string) *ast.Document {
	if d, ok := s.docs[uri]; ok {
		return d.ast
	}
	return nil
}

// parseAndLink compiles src through whichever backend the session was
// built for, builds its AST, indexes it, and resolves cross-references
// against every document indexed so far.
func (s *session) parseAndLink(uri, src string) (*parsedDoc, []diag.Diagnostic) {
	var root *syntax.Root
	var diags []diag.Diagnostic

	lx, err := grammar.NewLexer(s.g, s.classes)
	if err != nil {
		diags = append(diags, diag.Diagnostic{Message: err.Error(), Severity: diag.SeverityError, Source: diag.SourceLexer})
		return &parsedDoc{uri: uri, src: src}, diags
	}
	stream, err := lx.Lex(src)
	if err != nil {
		diags = append(diags, diag.Diagnostic{Message: err.Error(), Severity: diag.SeverityError, Source: diag.SourceLexer})
		return &parsedDoc{uri: uri, src: src}, diags
	}

	if s.backend == config.BackendLR {
		root, diags = s.lrAdapter.Parse(stream)
	} else {
		root, diags = s.topdown.Parse(s.g, s.classes, stream)
	}

	pd := &parsedDoc{uri: uri, src: src, root: root}
	s.docs[uri] = pd

	if root == nil {
		return pd, diags
	}

	astDoc, adiags := ast.Build(uri, root, s.g)
	pd.ast = astDoc
	diags = append(diags, adiags...)

	s.linker.IndexDocument(astDoc)
	for _, other := range s.docs {
		if other.ast == nil {
			continue
		}
		diags = append(diags, s.linker.Resolve(other.ast)...)
	}

	return pd, diags
}

func printDiagnostics(diags []diag.Diagnostic) {
	if len(diags) == 0 {
		pterm.Success.Println("no diagnostics")
		return
	}
	rows := pterm.TableData{{"severity", "source", "offset", "line", "col", "message"}}
	for _, d := range diags {
		rows = append(rows, []string{
			string(d.Severity),
			string(d.Source),
			strconv.Itoa(d.Offset),
			strconv.Itoa(d.Line),
			strconv.Itoa(d.Column),
			d.Message,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "%s [%s]: %s\n", d.Severity, d.Source, d.Message)
		}
	}
}

// registerServices registers the NameProvider, IndexManager and Linker
// services in the registry, each factory closing over sess so a caller only ever needs the
// (languageID, serviceName) pair to reach it — the lazy-resolve contract
// the registry package documents.
func registerServices(r *registry.Registry, sess *session) {
	languageID := "default"
	if sess.g != nil {
		languageID = sess.g.Name
	}

	r.Register(languageID, registry.ServiceNameProvider, func(*registry.Registry) (any, error) {
		return ast.NameProvider(ast.DefaultNameProvider), nil
	})
	r.Register(languageID, registry.ServiceIndexManager, func(*registry.Registry) (any, error) {
		return sess.ix, nil
	})
	r.Register(languageID, registry.ServiceLinker, func(*registry.Registry) (any, error) {
		return sess.linker, nil
	})
}

func (s *session) documentSet() services.DocumentSet {
	return func(uri string) *ast.Document {
		return s.documentProvider(uri)
	}
}

func (s *session) documentURIs() []string {
	out := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		out = append(out, uri)
	}
	return out
}

// runREPL starts an interactive session over doc, letting a user issue
// editor-service commands against it. Grounded on tunaq's
// InteractiveCommandReader: GNU readline for a real tty, a plain line
// reader otherwise, the same fallback tunaq's engine makes for piped input.
func runREPL(sess *session, doc *parsedDoc) {
	useReadline := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	var readLine func() (string, error)
	if useReadline {
		rl, err := newReadlineReader()
		if err != nil {
			pterm.Warning.Println("falling back to plain stdin: " + err.Error())
			useReadline = false
		} else {
			defer rl.Close()
			readLine = rl.Readline
		}
	}
	if !useReadline {
		scanner := bufioScanner(os.Stdin)
		readLine = scanner
	}

	pterm.Info.Println(`interactive session; type "help" for commands, "quit" to exit`)

	for {
		line, err := readLine()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		args, err := shellquote.Split(line)
		if err != nil {
			pterm.Error.Println("unbalanced quoting: " + err.Error())
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return
		}
		runCommand(sess, doc, args)
	}
}

func runCommand(sess *session, doc *parsedDoc, args []string) {
	switch args[0] {
	case "help":
		fmt.Println("commands: dump, diag, hover OFFSET, highlight OFFSET, refs OFFSET, symbols, workspace QUERY, fold, table, quit")
	case "dump":
		fmt.Println(syntax.Dump(doc.root.Top))
	case "diag":
		printDiagnostics(doc.root.Diagnostics)
	case "hover":
		runHover(doc, args)
	case "highlight":
		runHighlight(sess, doc, args)
	case "refs":
		runReferences(sess, doc, args)
	case "symbols":
		for _, sym := range services.DocumentSymbols(doc.ast, ast.DefaultNameProvider) {
			printSymbol(sym, 0)
		}
	case "workspace":
		runWorkspace(sess, args)
	case "fold":
		for _, fr := range services.FoldingRanges(doc.root) {
			fmt.Printf("lines %d-%d\n", fr.StartLine, fr.EndLine)
		}
	case "table":
		if sess.backend != config.BackendLR {
			pterm.Warning.Println("table is only meaningful for the lr backend")
			return
		}
		fmt.Println(dumpLRTable(sess.lrAdapter.Table))
	default:
		pterm.Warning.Println("unknown command " + args[0] + `; type "help"`)
	}
}

func runHover(doc *parsedDoc, args []string) {
	offset, ok := parseOffset(args)
	if !ok {
		return
	}
	h, ok := services.HoverAt(doc.root, offset, doc.uri)
	if !ok {
		fmt.Println("no hover information at that offset")
		return
	}
	fmt.Println(h.Contents)
}

func runHighlight(sess *session, doc *parsedDoc, args []string) {
	offset, ok := parseOffset(args)
	if !ok {
		return
	}
	ranges, err := services.DocumentHighlight(doc.ast, offset, ast.DefaultNameProvider)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	for _, r := range ranges {
		fmt.Printf("%d:%d-%d:%d\n", r.StartLine, r.StartColumn, r.EndLine, r.EndColumn)
	}
}

func runReferences(sess *session, doc *parsedDoc, args []string) {
	offset, ok := parseOffset(args)
	if !ok {
		return
	}
	tok := services.NewCancelToken(context.Background())
	locs, err := services.References(doc.ast, offset, ast.DefaultNameProvider, sess.documentSet(), sess.documentURIs(), true, tok)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	for _, l := range locs {
		fmt.Printf("%s %d:%d-%d:%d\n", l.DocumentURI, l.Range.StartLine, l.Range.StartColumn, l.Range.EndLine, l.Range.EndColumn)
	}
}

func runWorkspace(sess *session, args []string) {
	if len(args) < 2 {
		pterm.Warning.Println("usage: workspace QUERY")
		return
	}
	tok := services.NewCancelToken(context.Background())
	syms, err := services.WorkspaceSymbols(sess.ix, sess.documentSet(), args[1], tok)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	for _, s := range syms {
		printSymbol(s, 0)
	}
}

func printSymbol(s services.Symbol, depth int) {
	fmt.Printf("%s%s (%s) %s\n", strings.Repeat("  ", depth), s.Name, s.Kind, s.Location.DocumentURI)
	for _, c := range s.Children {
		printSymbol(c, depth+1)
	}
}

func parseOffset(args []string) (int, bool) {
	if len(args) < 2 {
		pterm.Warning.Println("usage: " + args[0] + " OFFSET")
		return 0, false
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		pterm.Warning.Println("not a valid offset: " + args[1])
		return 0, false
	}
	return n, true
}
