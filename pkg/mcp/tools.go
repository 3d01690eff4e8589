package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

// Tool names.
const (
	ToolNameLint  = "boundary_lint"
	ToolNameRules = "boundary_rules"
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// defaultFilename is used when the caller gives no filename.
const defaultFilename = "component.tsx"

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
)

// LintInput is the input schema for the boundary_lint tool.
type LintInput struct {
	Code     string `json:"code"               jsonschema:"JSX or TSX module source"`
	Filename string `json:"filename,omitempty" jsonschema:"file name used to pick the grammar (default component.tsx)"`
	Fix      bool   `json:"fix,omitempty"      jsonschema:"apply autofixes and return the fixed source"`
}

// RulesInput is the input schema for the boundary_rules tool.
type RulesInput struct{}

// LintOutput is the payload of a boundary_lint call.
type LintOutput struct {
	Filename     string             `json:"filename"`
	Language     string             `json:"language"`
	Diagnostics  []rules.Diagnostic `json:"diagnostics"`
	FixesApplied int                `json:"fixesApplied"`
	Output       string             `json:"output,omitempty"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleLint(ctx context.Context, _ *mcpsdk.CallToolRequest, input LintInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCodeInput(input.Code)
	if err != nil {
		return errorResult(err)
	}

	filename := input.Filename
	if filename == "" {
		filename = defaultFilename
	}

	res, err := s.linter.LintSource(ctx, filename, []byte(input.Code), input.Fix)
	if err != nil {
		return errorResult(err)
	}

	out := LintOutput{
		Filename:     filename,
		Language:     res.Language,
		Diagnostics:  res.Diagnostics,
		FixesApplied: res.FixesApplied,
	}

	if out.Diagnostics == nil {
		out.Diagnostics = []rules.Diagnostic{}
	}

	if res.Fixed() {
		out.Output = string(res.Output)
	}

	return jsonResult(out)
}

func (s *Server) handleRules(_ context.Context, _ *mcpsdk.CallToolRequest, _ RulesInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	enabled := s.linter.Engine().Rules()
	metas := make([]rules.Meta, 0, len(enabled))

	for _, rule := range enabled {
		metas = append(metas, rule.Meta())
	}

	return jsonResult(metas)
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validateCodeInput(code string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}
