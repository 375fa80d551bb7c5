// Package server implements a Language Server Protocol front end for
// moonlet scripts: compile diagnostics, completion and hover.
package server

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/moonlet/compiler"
	"github.com/chazu/moonlet/pkg/bytecode"
	"github.com/chazu/moonlet/pkg/runtime"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "moonlet-lsp"

// LspServer checks moonlet documents as they are edited and answers
// completion and hover requests from the host's global table.
type LspServer struct {
	worker *HostWorker
	log    commonlog.Logger

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server for scripts run by the given host.
func NewLSP(h *runtime.Host) *LspServer {
	s := &LspServer{
		worker:  NewHostWorker(h),
		log:     commonlog.GetLogger("moonlet.lsp"),
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Info("moonlet LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.setDocument(uri, text)
	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.setDocument(uri, whole.Text)
			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) setDocument(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}

	result, err := s.worker.Do(func(h *runtime.Host) any {
		return complete(h.Globals(), prefix)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	result, err := s.worker.Do(func(h *runtime.Host) any {
		return hover(h.Globals(), word)
	})
	if err != nil || result == nil {
		return nil, nil
	}
	return result.(*protocol.Hover), nil
}

// complete returns the globals and reserved words starting with prefix.
func complete(globals bytecode.Globals, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	names := make([]string, 0, len(globals))
	for name := range globals {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		kind := protocol.CompletionItemKindVariable
		if globals[name].Kind() == bytecode.KindNative {
			kind = protocol.CompletionItemKindFunction
		}
		detail := globals[name].Kind().String()
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	for _, word := range compiler.Keywords() {
		if strings.HasPrefix(word, prefix) {
			kind := protocol.CompletionItemKindKeyword
			items = append(items, protocol.CompletionItem{
				Label: word,
				Kind:  &kind,
			})
		}
	}

	return items
}

// hover describes the global or reserved word under the cursor.
func hover(globals bytecode.Globals, word string) *protocol.Hover {
	var doc string
	if v, ok := globals[word]; ok {
		if fn := v.AsNative(); fn != nil {
			doc = fmt.Sprintf("**%s** native function", fn.Name)
		} else {
			doc = fmt.Sprintf("**%s** global: `%s`", word, v.GoString())
		}
	} else if compiler.IsKeyword(word) {
		doc = fmt.Sprintf("`%s` reserved word", word)
	} else {
		return nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: doc,
		},
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnosticsFor(text)
	if len(diagnostics) > 0 {
		s.log.Debugf("%s: %s", uri, diagnostics[0].Message)
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnosticsFor compiles text and reports the first lex or parse error.
// The result is empty, not nil, for a document that compiles.
func diagnosticsFor(text string) []protocol.Diagnostic {
	_, err := compiler.Compile(text)
	if err == nil {
		return []protocol.Diagnostic{}
	}

	var (
		pos   compiler.Position
		width int
		msg   string
	)
	var lerr *compiler.LexError
	var perr *compiler.ParseError
	switch {
	case errors.As(err, &lerr):
		pos, width, msg = lerr.Pos, 1, lerr.Msg
	case errors.As(err, &perr):
		pos, width, msg = perr.Pos, tokenWidth(perr.Token), perr.Msg
	default:
		msg = err.Error()
	}

	severity := protocol.DiagnosticSeverityError
	source := lspName
	start := lspPosition(pos)
	end := start
	end.Character += protocol.UInteger(width)

	return []protocol.Diagnostic{{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}}
}

// tokenWidth returns the length of the token's source text.
func tokenWidth(tok compiler.Token) int {
	switch tok.Type {
	case compiler.TokenEOS:
		return 0
	case compiler.TokenString:
		return len(tok.Literal) + 2
	}
	return len(tok.Literal)
}

// lspPosition converts a 1-based source position to a 0-based LSP one.
func lspPosition(p compiler.Position) protocol.Position {
	if p.Line < 1 {
		return protocol.Position{}
	}
	return protocol.Position{
		Line:      protocol.UInteger(p.Line - 1),
		Character: protocol.UInteger(p.Column - 1),
	}
}

// --- Text extraction helpers ---

// extractPrefix returns the name fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}

	// Walk backwards from cursor to find the start of the name
	start := col
	for start > 0 && isNameChar(line[start-1]) {
		start--
	}
	return line[start:col]
}

// extractWord returns the full name under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}

	start := col
	for start > 0 && isNameChar(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isNameChar(line[end]) {
		end++
	}
	return line[start:end]
}

func lineAt(text string, pos protocol.Position) (string, int, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return "", 0, false
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}
	return line, col, true
}

func isNameChar(b byte) bool {
	ch := rune(b)
	return ch < unicode.MaxASCII && (unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_')
}

func boolPtr(b bool) *bool {
	return &b
}
