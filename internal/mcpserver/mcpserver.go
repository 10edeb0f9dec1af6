// Package mcpserver exposes the query surface as MCP tools, a thin
// consumer of internal/query: mcp.NewTool definitions plus
// closure-returning handlers registered with s.AddTool, reading
// request.GetArguments() by hand rather than through a generated binding.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/obsidian-lsp/vaultls/internal/indexer"
	"github.com/obsidian-lsp/vaultls/internal/model"
	"github.com/obsidian-lsp/vaultls/internal/query"
)

// New builds an MCP server wired to idx's live query engine: every tool
// call fetches idx.Engine() fresh, so it always observes the most recently
// published snapshot.
func New(idx *indexer.Indexer) *server.MCPServer {
	s := server.NewMCPServer("vaultls", "0.1.0")
	RegisterAll(s, idx)
	return s
}

// RegisterAll registers every query-surface tool with s.
func RegisterAll(s *server.MCPServer, idx *indexer.Indexer) {
	backrefsTool := mcp.NewTool("backrefs",
		mcp.WithDescription("List every reference resolving to a referenceable (file, heading, block, tag, ...), sorted newest-first by the referring file's modification time."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path of the file owning the target referenceable")),
		mcp.WithString("fragment", mcp.Description("Optional in-file fragment (heading text, ^block id, tag name, ...) identifying the target within path")),
	)
	s.AddTool(backrefsTool, backrefsHandler(idx))

	unresolvedTool := mcp.NewTool("unresolved",
		mcp.WithDescription("List references in a file that do not resolve to anything in the vault."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path to scan")),
	)
	s.AddTool(unresolvedTool, unresolvedHandler(idx))

	symbolsTool := mcp.NewTool("symbols",
		mcp.WithDescription("List a file's document symbols: headings, MyST anchors, labeled directives, glossary terms."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path")),
	)
	s.AddTool(symbolsTool, symbolsHandler(idx))

	workspaceSymbolsTool := mcp.NewTool("workspace_symbols",
		mcp.WithDescription("Fuzzy-search every referenceable in the vault by display name, ranked best match first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Fuzzy search query")),
	)
	s.AddTool(workspaceSymbolsTool, workspaceSymbolsHandler(idx))

	previewTool := mcp.NewTool("preview",
		mcp.WithDescription("Return the hover-preview text for a referenceable."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path of the file owning the target")),
		mcp.WithString("fragment", mcp.Description("Optional in-file fragment identifying the target within path")),
	)
	s.AddTool(previewTool, previewHandler(idx))
}

func resultJSON(v interface{}) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(b))
}

func lookupTarget(e *query.Engine, path, fragment string) (model.Referenceable, bool) {
	all := e.AllReferenceables(path)
	if fragment == "" {
		for _, r := range all {
			if _, ok := r.(model.File); ok {
				return r, true
			}
		}
		return nil, false
	}
	for _, r := range all {
		if r.Refname().InfileRef == fragment || r.Refname().Full == fragment {
			return r, true
		}
	}
	return nil, false
}

func backrefsHandler(idx *indexer.Indexer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		path, _ := args["path"].(string)
		fragment, _ := args["fragment"].(string)

		e := idx.Engine()
		target, ok := lookupTarget(e, path, fragment)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no referenceable found at %s#%s", path, fragment)), nil
		}
		backs := e.Backrefs(target)
		type row struct {
			Path string `json:"path"`
			Text string `json:"text"`
		}
		rows := make([]row, 0, len(backs))
		for _, b := range backs {
			rows = append(rows, row{Path: b.Path, Text: b.Ref.Data().Text})
		}
		return resultJSON(rows), nil
	}
}

func unresolvedHandler(idx *indexer.Indexer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		path, _ := args["path"].(string)

		e := idx.Engine()
		refs := e.Unresolved(path)
		texts := make([]string, 0, len(refs))
		for _, r := range refs {
			texts = append(texts, r.Data().Text)
		}
		return resultJSON(texts), nil
	}
}

func symbolsHandler(idx *indexer.Indexer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		path, _ := args["path"].(string)

		e := idx.Engine()
		syms := e.Symbols(path)
		type row struct {
			Name   string `json:"name"`
			Detail string `json:"detail"`
			Kind   string `json:"kind"`
			Line   int    `json:"line"`
		}
		rows := make([]row, 0, len(syms))
		for _, s := range syms {
			rows = append(rows, row{Name: s.Name, Detail: s.Detail, Kind: s.Kind, Line: s.Range.Start.Line})
		}
		return resultJSON(rows), nil
	}
}

func workspaceSymbolsHandler(idx *indexer.Indexer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		query_, _ := args["query"].(string)

		e := idx.Engine()
		matches := e.WorkspaceSymbols(query_)
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, model.DisplayName(m))
		}
		return resultJSON(names), nil
	}
}

func previewHandler(idx *indexer.Indexer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		path, _ := args["path"].(string)
		fragment, _ := args["fragment"].(string)

		e := idx.Engine()
		target, ok := lookupTarget(e, path, fragment)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no referenceable found at %s#%s", path, fragment)), nil
		}
		return mcp.NewToolResultText(e.Preview(target)), nil
	}
}
