package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools wires the tool catalog into the SDK server, dispatching
// every call through the shared handler.
func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		def := def
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: toSchema(def.InputSchema),
		}, toolHandler(handler, def.Name))
	}
}

// toSchema converts a catalog schema map to the SDK's schema type.
func toSchema(m map[string]any) *jsonschema.Schema {
	raw, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("marshaling tool schema: %v", err))
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		panic(fmt.Sprintf("building tool schema: %v", err))
	}
	return &schema
}

func toolHandler(handler *Handler, method string) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		companyID := getCompanyID(ctx)
		if companyID == "" {
			return errorResult(&APIError{Code: "UNAUTHORIZED", Message: "no company in context"}), nil
		}

		args, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return errorResult(&APIError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("invalid arguments: %v", err)}), nil
		}

		result, err := handler.Handle(ctx, companyID, getUserID(ctx), method, args)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return errorResult(apiErr), nil
			}
			return nil, err
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s result: %w", method, err)
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(payload)}},
		}, nil
	}
}

// errorResult renders a domain error as a tool error payload so the caller
// can read the code and recovery hint.
func errorResult(apiErr *APIError) *sdkmcp.CallToolResult {
	payload, err := json.Marshal(map[string]any{"error": apiErr})
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error":{"code":%q,"message":%q}}`, apiErr.Code, apiErr.Message))
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(payload)}},
		IsError: true,
	}
}
