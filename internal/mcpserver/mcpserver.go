// Package mcpserver exposes the merged FAQ to MCP clients as read-only
// tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dgallion1/faqdesk/internal/merge"
	"github.com/dgallion1/faqdesk/internal/render"
	"github.com/dgallion1/faqdesk/internal/search"
)

const Version = "0.1.0"

// Source supplies the current merged document.
type Source interface {
	Merged(ctx context.Context) (*merge.MergedDocument, error)
}

type ListCategoriesRequest struct {
	Lang string `json:"lang"`
}

type GetQuestionRequest struct {
	ID   string `json:"id"`
	Lang string `json:"lang"`
}

type SearchQuestionsRequest struct {
	Query string `json:"query"`
	Lang  string `json:"lang"`
	Limit int    `json:"limit"`
}

// TreeNode is one entry of the list_categories result.
type TreeNode struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Children []*TreeNode `json:"children,omitempty"`
}

// SearchHit is one entry of the search_questions result.
type SearchHit struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	CategoryID    string `json:"categoryId"`
	SubcategoryID string `json:"subcategoryId"`
	Distance      int    `json:"distance"`
}

// NewServer creates the MCP server with the FAQ tools.
func NewServer(src Source, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"faqdesk",
		Version,
		server.WithToolCapabilities(false),
	)

	listTool := mcp.NewTool("list_categories",
		mcp.WithDescription("List the FAQ tree (categories, subcategories and question titles) in one language"),
		mcp.WithString("lang",
			mcp.Description("Language code such as zh, en, zh-CN or th. Defaults to the base language"),
		),
	)
	s.AddTool(listTool, mcp.NewTypedToolHandler(listCategoriesHandler(src, log)))

	getTool := mcp.NewTool("get_question",
		mcp.WithDescription("Get one FAQ question rendered as markdown"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Question ID, e.g. Q-001"),
		),
		mcp.WithString("lang",
			mcp.Description("Language code. Defaults to the base language"),
		),
	)
	s.AddTool(getTool, mcp.NewTypedToolHandler(getQuestionHandler(src, log)))

	searchTool := mcp.NewTool("search_questions",
		mcp.WithDescription("Fuzzy search FAQ questions across all languages"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for in titles and content"),
		),
		mcp.WithString("lang",
			mcp.Description("Language used for the returned titles. Defaults to the base language"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default 20)"),
		),
	)
	s.AddTool(searchTool, mcp.NewTypedToolHandler(searchQuestionsHandler(src, log)))

	return s
}

// NewHTTPHandler serves s over streamable HTTP at endpoint.
func NewHTTPHandler(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath(endpoint))
}

func listCategoriesHandler(src Source, log *slog.Logger) func(ctx context.Context, request mcp.CallToolRequest, args ListCategoriesRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ListCategoriesRequest) (*mcp.CallToolResult, error) {
		m, err := src.Merged(ctx)
		if err != nil {
			log.Warn("mcp list_categories failed", "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("failed to load FAQ: %v", err)), nil
		}
		lang := pickLang(m, args.Lang)

		tree := make([]*TreeNode, 0, len(m.Categories))
		for _, c := range m.Categories {
			cn := &TreeNode{ID: c.ID, Title: c.Title.Get(lang)}
			for _, s := range c.Subcategories {
				sn := &TreeNode{ID: s.ID, Title: s.Title.Get(lang)}
				for _, q := range s.Questions {
					sn.Children = append(sn.Children, &TreeNode{ID: q.ID, Title: q.Title.Get(lang)})
				}
				cn.Children = append(cn.Children, sn)
			}
			tree = append(tree, cn)
		}
		return jsonResult(map[string]any{"lang": lang, "categories": tree})
	}
}

func getQuestionHandler(src Source, log *slog.Logger) func(ctx context.Context, request mcp.CallToolRequest, args GetQuestionRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetQuestionRequest) (*mcp.CallToolResult, error) {
		if args.ID == "" {
			return mcp.NewToolResultError("id is required"), nil
		}
		m, err := src.Merged(ctx)
		if err != nil {
			log.Warn("mcp get_question failed", "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("failed to load FAQ: %v", err)), nil
		}
		q := m.FindQuestion(args.ID)
		if q == nil {
			return mcp.NewToolResultError(fmt.Sprintf("question %q not found", args.ID)), nil
		}
		md, err := render.Markdown(render.QuestionArticle(q, pickLang(m, args.Lang)))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(md), nil
	}
}

func searchQuestionsHandler(src Source, log *slog.Logger) func(ctx context.Context, request mcp.CallToolRequest, args SearchQuestionsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SearchQuestionsRequest) (*mcp.CallToolResult, error) {
		if args.Query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		m, err := src.Merged(ctx)
		if err != nil {
			log.Warn("mcp search_questions failed", "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("failed to load FAQ: %v", err)), nil
		}
		lang := pickLang(m, args.Lang)

		results := search.NewIndex(search.Flatten(m)).Search(args.Query, args.Limit)
		hits := make([]SearchHit, 0, len(results))
		for _, r := range results {
			title := r.Title
			if q := m.FindQuestion(r.ID); q != nil && q.Title.Get(lang) != "" {
				title = q.Title.Get(lang)
			}
			hits = append(hits, SearchHit{
				ID:            r.ID,
				Title:         title,
				CategoryID:    r.CategoryID,
				SubcategoryID: r.SubcategoryID,
				Distance:      r.Distance,
			})
		}
		return jsonResult(map[string]any{"query": args.Query, "lang": lang, "results": hits})
	}
}

func pickLang(m *merge.MergedDocument, lang string) string {
	if lang == "" {
		return m.BaseLanguage
	}
	return lang
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
