package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/easycodehow/spark/internal/memos"
	"github.com/easycodehow/spark/internal/ui"
)

// NewServer creates an MCP server with tools for memo operations
func NewServer(store *memos.Store) *server.MCPServer {
	s := server.NewMCPServer(
		"Spark",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Tool: list_memos - List memos, newest first
	s.AddTool(
		mcp.NewTool("list_memos",
			mcp.WithDescription("List memos, newest first. Optionally filter by a case-insensitive keyword and by the important star."),
			mcp.WithString("query",
				mcp.Description("Optional: keyword that must appear in the memo content"),
			),
			mcp.WithBoolean("important_only",
				mcp.Description("Optional: only return starred memos (default: false)"),
			),
		),
		handleListMemos(store),
	)

	// Tool: get_memo - Get one memo by id
	s.AddTool(
		mcp.NewTool("get_memo",
			mcp.WithDescription("Get a single memo by its numeric id."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Memo id"),
			),
		),
		handleGetMemo(store),
	)

	// Tool: create_memo - Write a new memo
	s.AddTool(
		mcp.NewTool("create_memo",
			mcp.WithDescription("Create a memo. The content is trimmed and must not be empty. The memo is dated today."),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("Memo text; the first line is shown as its title"),
			),
			mcp.WithBoolean("important",
				mcp.Description("Star the memo (default: false)"),
			),
		),
		handleCreateMemo(store),
	)

	// Tool: update_memo - Replace content and star of a memo
	s.AddTool(
		mcp.NewTool("update_memo",
			mcp.WithDescription("Replace the content and star of an existing memo. The id and date are kept."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Memo id"),
			),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("New memo text"),
			),
			mcp.WithBoolean("important",
				mcp.Description("Star the memo (default: false)"),
			),
		),
		handleUpdateMemo(store),
	)

	// Tool: delete_memo
	s.AddTool(
		mcp.NewTool("delete_memo",
			mcp.WithDescription("Delete a memo by id."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Memo id"),
			),
		),
		handleDeleteMemo(store),
	)

	// Tool: export_memos - Full backup in the export file format
	s.AddTool(
		mcp.NewTool("export_memos",
			mcp.WithDescription("Export every memo as the JSON array used by backup files."),
		),
		handleExportMemos(store),
	)

	return s
}

func handleListMemos(store *memos.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list := ui.Filtered(store.All(), req.GetString("query", ""), req.GetBool("important_only", false))
		return jsonResult(list)
	}
}

func handleGetMemo(store *memos.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		m, ok := store.Get(int64(id))
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("memo %d not found", id)), nil
		}
		return jsonResult(m)
	}
}

func handleCreateMemo(store *memos.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}

		m, err := store.Create(ctx, content, req.GetBool("important", false))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create memo: %v", err)), nil
		}
		return jsonResult(m)
	}
}

func handleUpdateMemo(store *memos.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}

		m, err := store.Update(ctx, int64(id), content, req.GetBool("important", false))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update memo: %v", err)), nil
		}
		if m == nil {
			return mcp.NewToolResultError(fmt.Sprintf("memo %d not found", id)), nil
		}
		return jsonResult(m)
	}
}

func handleDeleteMemo(store *memos.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		deleted, err := store.Delete(ctx, int64(id))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete memo: %v", err)), nil
		}
		if !deleted {
			return mcp.NewToolResultError(fmt.Sprintf("memo %d not found", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("deleted memo %d", id)), nil
	}
}

func handleExportMemos(store *memos.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := memos.MarshalExport(store.All())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to export memos: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// Helper functions

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
