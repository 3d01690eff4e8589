// Package lsp provides a Language Server Protocol server that publishes
// boundary diagnostics for open documents and offers their fixes as code
// actions.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
	"github.com/Sumatoshi-tech/boundarylint/pkg/observability"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
	"github.com/Sumatoshi-tech/boundarylint/pkg/textedit"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
)

const (
	serverName = "boundarylint"
	// fixAllKind is "source.fixAll", missing from the 3.16 constants.
	fixAllKind = protocol.CodeActionKind("source.fixAll")
)

// Config wires a Server.
type Config struct {
	Linter  *lint.Linter
	Version string
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.LintMetrics
}

// Server implements the boundarylint language server.
type Server struct {
	store   *DocumentStore
	linter  *lint.Linter
	version string
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.LintMetrics
	handler protocol.Handler
}

// NewServer creates a server with default handlers.
func NewServer(cfg Config) *Server {
	srv := &Server{
		store:   NewDocumentStore(),
		linter:  cfg.Linter,
		version: cfg.Version,
		logger:  cfg.Logger,
		tracer:  cfg.Tracer,
		metrics: cfg.Metrics,
	}

	if srv.logger == nil {
		srv.logger = slog.New(slog.DiscardHandler)
	}

	if srv.tracer == nil {
		srv.tracer = nooptrace.NewTracerProvider().Tracer(serverName)
	}

	srv.handler = protocol.Handler{
		Initialize:             srv.initialize,
		Initialized:            srv.initialized,
		Shutdown:               srv.shutdown,
		SetTrace:               srv.setTrace,
		TextDocumentDidOpen:    srv.didOpen,
		TextDocumentDidChange:  srv.didChange,
		TextDocumentDidSave:    srv.didSave,
		TextDocumentDidClose:   srv.didClose,
		TextDocumentCodeAction: srv.codeAction,
	}

	return srv
}

// Handler exposes the protocol handler, for embedding in other transports.
func (srv *Server) Handler() glsp.Handler {
	return &srv.handler
}

// Run serves the protocol on stdio until the client disconnects.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()

	full := protocol.TextDocumentSyncKindFull
	if syncOpts, ok := capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions); ok {
		syncOpts.Change = &full
	}

	capabilities.CodeActionProvider = protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix, fixAllKind},
	}

	version := srv.version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI

	srv.store.Set(uri, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	if _, ok := srv.store.Apply(uri, params.ContentChanges); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if params.Text != nil {
		srv.store.Set(uri, *params.Text)
	}

	if _, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	text, _ := srv.store.Get(uri)

	result := srv.analyze(uri, text, false)

	diagnostics := []protocol.Diagnostic{}
	if result != nil {
		diagnostics = toProtocol(text, result.Diagnostics)
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// analyze lints text as the file behind uri. Unsupported documents and
// internal failures yield nil.
func (srv *Server) analyze(uri, text string, fix bool) *lint.FileResult {
	ctx, span := srv.tracer.Start(context.Background(), "lsp.analyze",
		trace.WithAttributes(attribute.String("lsp.uri", uri), attribute.Bool("lint.fix", fix)))
	defer span.End()

	start := time.Now()

	result, err := srv.linter.LintSource(ctx, filenameOf(uri), []byte(text), fix)
	if errors.Is(err, uast.ErrUnsupportedLanguage) {
		return nil
	}

	if err != nil {
		span.RecordError(err)
		srv.logger.WarnContext(ctx, "analysis failed", slog.String("uri", uri), slog.Any("error", err))

		return nil
	}

	srv.metrics.RecordFile(ctx, observability.FileStats{
		Language:          result.Language,
		DiagnosticsByRule: result.CountByRule(),
		FixesApplied:      result.FixesApplied,
		Duration:          time.Since(start),
	})

	return result
}

func (srv *Server) codeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI

	text, ok := srv.store.Get(uri)
	if !ok {
		return nil, nil
	}

	result := srv.analyze(uri, text, false)
	if result == nil {
		return nil, nil
	}

	actions := []protocol.CodeAction{}
	quickfix := protocol.CodeActionKindQuickFix
	preferred := true
	fixable := 0

	for _, d := range result.Diagnostics {
		if !d.Fixable() {
			continue
		}

		fixable++

		diag := toProtocol(text, []rules.Diagnostic{d})[0]
		if !overlaps(diag.Range, params.Range) {
			continue
		}

		actions = append(actions, protocol.CodeAction{
			Title:       fmt.Sprintf("Export %s with %s()", d.ComponentName, d.Suggestion),
			Kind:        &quickfix,
			Diagnostics: []protocol.Diagnostic{diag},
			IsPreferred: &preferred,
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: textEdits(text, d.Fix)},
			},
		})
	}

	if fixable > 0 {
		if action, built := srv.fixAllAction(uri, text); built {
			actions = append(actions, action)
		}
	}

	return actions, nil
}

// fixAllAction runs the multi-pass fixer and replaces the whole document.
func (srv *Server) fixAllAction(uri, text string) (protocol.CodeAction, bool) {
	fixed := srv.analyze(uri, text, true)
	if fixed == nil || !fixed.Fixed() {
		return protocol.CodeAction{}, false
	}

	kind := fixAllKind

	return protocol.CodeAction{
		Title: "Fix all boundarylint problems",
		Kind:  &kind,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: {{
				Range:   rangeOf(text, 0, len(text)),
				NewText: string(fixed.Output),
			}}},
		},
	}, true
}

func toProtocol(text string, diags []rules.Diagnostic) []protocol.Diagnostic {
	source := serverName
	out := make([]protocol.Diagnostic, 0, len(diags))

	for _, d := range diags {
		severity := protocol.DiagnosticSeverityWarning
		if d.Severity == rules.SeverityFatal {
			severity = protocol.DiagnosticSeverityError
		}

		code := d.Rule
		if code == "" {
			code = d.MessageID
		}

		out = append(out, protocol.Diagnostic{
			Range:    rangeOf(text, d.Start, d.End),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: code},
			Source:   &source,
			Message:  d.Message,
		})
	}

	return out
}

func textEdits(text string, edits []textedit.Edit) []protocol.TextEdit {
	normalized := textedit.Normalize(edits)
	out := make([]protocol.TextEdit, 0, len(normalized))

	for _, edit := range normalized {
		out = append(out, protocol.TextEdit{Range: rangeOf(text, edit.Start, edit.End), NewText: edit.Text})
	}

	return out
}

func filenameOf(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Path == "" {
		return path.Base(uri)
	}

	return parsed.Path
}
