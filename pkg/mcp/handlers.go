package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/QinMou000/SuiJi/pkg/blocks"
	"github.com/QinMou000/SuiJi/pkg/store"
)

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Suiji MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_suiji"), nil
}

// RegisterSaveNoteTool registers the save_note tool.
func RegisterSaveNoteTool(s *server.MCPServer, st *store.Store) {
	saveNote := mcp.NewTool("save_note",
		mcp.WithDescription("Creates or updates a journal note. Omit 'id' to create a new note."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note body. Plain text/markdown by default.")),
		mcp.WithString("id", mcp.Description("Optional id of an existing note to update.")),
		mcp.WithString("title", mcp.Description("Optional title. Derived from the first content line when omitted.")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated list of tags.")),
	)
	s.AddTool(saveNote, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, contentOk := request.Params.Arguments["content"].(string)
		if !contentOk {
			return mcp.NewToolResultError("'content' parameter is required."), nil
		}
		id, _ := request.Params.Arguments["id"].(string)
		title, _ := request.Params.Arguments["title"].(string)
		tagsStr, _ := request.Params.Arguments["tags"].(string)

		// Tool saves are always plain text; block notes come from richer clients.
		note := store.Note{
			ID:      id,
			Title:   title,
			Content: content,
			Format:  blocks.FormatPlain,
			Tags:    parseTags(tagsStr),
		}
		saved, err := st.SaveNote(ctx, note, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save note: %v", err)), nil
		}

		jsonResult, err := json.Marshal(saved)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize note to JSON: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// RegisterGetNoteTool registers the get_note tool.
func RegisterGetNoteTool(s *server.MCPServer, st *store.Store) {
	getNote := mcp.NewTool("get_note",
		mcp.WithDescription("Retrieves a note and its media attachments by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The id of the note to retrieve.")),
	)
	s.AddTool(getNote, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, idOk := request.Params.Arguments["id"].(string)
		if !idOk || id == "" {
			return mcp.NewToolResultError("'id' parameter is required and must be a non-empty string."), nil
		}

		note, err := st.GetNote(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving note '%s': %v", id, err)), nil
		}
		media, err := st.ListMediaForNote(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving media for note '%s': %v", id, err)), nil
		}

		payload := struct {
			Note  store.Note    `json:"note"`
			Media []store.Media `json:"media,omitempty"`
		}{Note: note, Media: media}
		jsonResult, err := json.Marshal(payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize note to JSON: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// RegisterListNotesTool registers the list_notes tool.
func RegisterListNotesTool(s *server.MCPServer, st *store.Store) {
	listNotes := mcp.NewTool("list_notes",
		mcp.WithDescription("Lists notes newest-first, optionally filtered by a tag."),
		mcp.WithString("tag", mcp.Description("Optional tag to filter by.")),
	)
	s.AddTool(listNotes, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tag, _ := request.Params.Arguments["tag"].(string)

		var notes []store.Note
		var err error
		if tag != "" {
			notes, err = st.ListNotesByTag(ctx, tag)
		} else {
			notes, err = st.ListNotes(ctx)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list notes: %v", err)), nil
		}
		return marshalListResult(notes)
	})
}

// RegisterSearchNotesTool registers the search_notes tool.
func RegisterSearchNotesTool(s *server.MCPServer, st *store.Store) {
	searchNotes := mcp.NewTool("search_notes",
		mcp.WithDescription("Searches notes by substring over titles, text content, link previews and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The search text. Case-insensitive.")),
	)
	s.AddTool(searchNotes, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, queryOk := request.Params.Arguments["query"].(string)
		if !queryOk || query == "" {
			return mcp.NewToolResultError("'query' parameter is required and must be non-empty."), nil
		}

		notes, err := st.SearchNotes(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search notes: %v", err)), nil
		}
		return marshalListResult(notes)
	})
}

// RegisterDeleteNoteTool registers the delete_note tool.
func RegisterDeleteNoteTool(s *server.MCPServer, st *store.Store) {
	deleteNote := mcp.NewTool("delete_note",
		mcp.WithDescription("Deletes a note and its media attachments."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The id of the note to delete.")),
	)
	s.AddTool(deleteNote, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, idOk := request.Params.Arguments["id"].(string)
		if !idOk || id == "" {
			return mcp.NewToolResultError("'id' parameter is required."), nil
		}

		if err := st.DeleteNote(ctx, id); err != nil {
			if err == store.ErrNoteNotFound {
				return mcp.NewToolResultText(fmt.Sprintf("Note '%s' not found, nothing to delete.", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete note '%s': %v", id, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Note '%s' deleted successfully.", id)), nil
	})
}

// RegisterListTagsTool registers the list_tags tool.
func RegisterListTagsTool(s *server.MCPServer, st *store.Store) {
	listTags := mcp.NewTool("list_tags",
		mcp.WithDescription("Lists all known tags from the tag dictionary."),
	)
	s.AddTool(listTags, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := st.ListTags(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list tags: %v", err)), nil
		}
		return marshalListResult(tags)
	})
}

// RegisterSaveTransactionTool registers the save_transaction tool.
func RegisterSaveTransactionTool(s *server.MCPServer, st *store.Store) {
	saveTransaction := mcp.NewTool("save_transaction",
		mcp.WithDescription("Records an expense or income transaction."),
		mcp.WithNumber("amount", mcp.Required(), mcp.Description("Transaction amount. Must be positive.")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Either 'expense' or 'income'.")),
		mcp.WithString("category_id", mcp.Required(), mcp.Description("Id of an existing category, e.g. 'c_food'.")),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("Id of an existing account, e.g. 'a_cash'.")),
		mcp.WithString("note", mcp.Description("Optional free-text remark.")),
	)
	s.AddTool(saveTransaction, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		amount, amountOk := request.Params.Arguments["amount"].(float64)
		txType, typeOk := request.Params.Arguments["type"].(string)
		categoryID, catOk := request.Params.Arguments["category_id"].(string)
		accountID, accOk := request.Params.Arguments["account_id"].(string)
		note, _ := request.Params.Arguments["note"].(string)

		if !amountOk || !typeOk || !catOk || !accOk {
			return mcp.NewToolResultError("'amount', 'type', 'category_id' and 'account_id' are all required."), nil
		}

		saved, err := st.SaveTransaction(ctx, store.Transaction{
			Amount:     amount,
			Type:       store.TransactionType(txType),
			CategoryID: categoryID,
			AccountID:  accountID,
			Note:       note,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save transaction: %v", err)), nil
		}

		jsonResult, err := json.Marshal(saved)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize transaction to JSON: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// RegisterListTransactionsTool registers the list_transactions tool.
func RegisterListTransactionsTool(s *server.MCPServer, st *store.Store) {
	listTransactions := mcp.NewTool("list_transactions",
		mcp.WithDescription("Lists transactions newest-first, optionally filtered by type, category or account."),
		mcp.WithString("type", mcp.Description("Optional filter: 'expense' or 'income'.")),
		mcp.WithString("category_id", mcp.Description("Optional category id filter.")),
		mcp.WithString("account_id", mcp.Description("Optional account id filter.")),
	)
	s.AddTool(listTransactions, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		txType, _ := request.Params.Arguments["type"].(string)
		categoryID, _ := request.Params.Arguments["category_id"].(string)
		accountID, _ := request.Params.Arguments["account_id"].(string)

		transactions, err := st.ListTransactions(ctx, store.TransactionFilter{
			Type:       store.TransactionType(txType),
			CategoryID: categoryID,
			AccountID:  accountID,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list transactions: %v", err)), nil
		}
		return marshalListResult(transactions)
	})
}

// RegisterListCategoriesTool registers the list_categories tool.
func RegisterListCategoriesTool(s *server.MCPServer, st *store.Store) {
	listCategories := mcp.NewTool("list_categories",
		mcp.WithDescription("Lists transaction categories, optionally filtered by type."),
		mcp.WithString("type", mcp.Description("Optional filter: 'expense' or 'income'.")),
	)
	s.AddTool(listCategories, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		catType, _ := request.Params.Arguments["type"].(string)
		categories, err := st.ListCategories(ctx, store.TransactionType(catType))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list categories: %v", err)), nil
		}
		return marshalListResult(categories)
	})
}

// RegisterListAccountsTool registers the list_accounts tool.
func RegisterListAccountsTool(s *server.MCPServer, st *store.Store) {
	listAccounts := mcp.NewTool("list_accounts",
		mcp.WithDescription("Lists all money accounts."),
	)
	s.AddTool(listAccounts, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		accounts, err := st.ListAccounts(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list accounts: %v", err)), nil
		}
		return marshalListResult(accounts)
	})
}

// RegisterSaveCountdownTool registers the save_countdown tool.
func RegisterSaveCountdownTool(s *server.MCPServer, st *store.Store) {
	saveCountdown := mcp.NewTool("save_countdown",
		mcp.WithDescription("Creates or updates a countdown or anniversary event."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Event title.")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Either 'countdown' or 'anniversary'.")),
		mcp.WithNumber("date", mcp.Required(), mcp.Description("Target date as milliseconds since the Unix epoch.")),
		mcp.WithString("id", mcp.Description("Optional id of an existing event to update.")),
		mcp.WithString("note", mcp.Description("Optional free-text remark.")),
	)
	s.AddTool(saveCountdown, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, titleOk := request.Params.Arguments["title"].(string)
		cdType, typeOk := request.Params.Arguments["type"].(string)
		date, dateOk := request.Params.Arguments["date"].(float64)
		id, _ := request.Params.Arguments["id"].(string)
		note, _ := request.Params.Arguments["note"].(string)

		if !titleOk || !typeOk || !dateOk {
			return mcp.NewToolResultError("'title', 'type' and 'date' are all required."), nil
		}

		saved, err := st.SaveCountdown(ctx, store.Countdown{
			ID:    id,
			Title: title,
			Type:  store.CountdownType(cdType),
			Date:  int64(date),
			Note:  note,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save countdown: %v", err)), nil
		}

		jsonResult, err := json.Marshal(saved)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize countdown to JSON: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// RegisterListCountdownsTool registers the list_countdowns tool.
func RegisterListCountdownsTool(s *server.MCPServer, st *store.Store) {
	listCountdowns := mcp.NewTool("list_countdowns",
		mcp.WithDescription("Lists countdown and anniversary events ordered by target date."),
		mcp.WithString("type", mcp.Description("Optional filter: 'countdown' or 'anniversary'.")),
	)
	s.AddTool(listCountdowns, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cdType, _ := request.Params.Arguments["type"].(string)

		var countdowns []store.Countdown
		var err error
		if cdType != "" {
			countdowns, err = st.ListCountdownsByType(ctx, store.CountdownType(cdType))
		} else {
			countdowns, err = st.ListCountdowns(ctx)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list countdowns: %v", err)), nil
		}
		return marshalListResult(countdowns)
	})
}

// marshalListResult serializes a slice result, mapping an empty slice to "[]".
func marshalListResult[T any](items []T) (*mcp.CallToolResult, error) {
	if len(items) == 0 {
		return mcp.NewToolResultText("[]"), nil
	}
	jsonResult, err := json.Marshal(items)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonResult)), nil
}

// parseTags splits a comma-separated tag string, dropping blanks.
func parseTags(tagsStr string) []string {
	if tagsStr == "" {
		return nil
	}
	var tagsList []string
	for _, tag := range strings.Split(tagsStr, ",") {
		t := strings.TrimSpace(tag)
		if t != "" {
			tagsList = append(tagsList, t)
		}
	}
	return tagsList
}
