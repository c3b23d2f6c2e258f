package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/reltio-open/reltio-mcp-server/internal/mcpclient"
	"github.com/reltio-open/reltio-mcp-server/pkg/mcp"
)

const systemPrompt = `You are a helpful AI assistant that works with Reltio data.
Provide detailed and comprehensive answers, don't skip important details.
Be helpful, accurate, and thorough in your responses.`

const maxToolTurns = 6

func main() {
	var serverURL string
	var model string
	var historySize int
	var authorizeURL string
	var tokenURL string
	var clientID string
	flag.StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the MCP server HTTP transport")
	flag.StringVar(&model, "model", "claude-3-5-sonnet-latest", "Claude model name")
	flag.IntVar(&historySize, "history", 10, "Number of exchanges to keep in the conversation window")
	flag.StringVar(&authorizeURL, "authorize-url", "", "OAuth authorization endpoint; empty disables OAuth")
	flag.StringVar(&tokenURL, "token-url", "", "OAuth token endpoint")
	flag.StringVar(&clientID, "client-id", "reltio_ui", "OAuth client ID")
	flag.Parse()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Fatal("ANTHROPIC_API_KEY must be set")
	}

	var tokens mcpclient.TokenSource
	if authorizeURL != "" {
		if tokenURL == "" {
			log.Fatal("-token-url is required when -authorize-url is set")
		}
		cache := newTokenCache(oauthConfig{
			AuthorizeURL: authorizeURL,
			TokenURL:     tokenURL,
			ClientID:     clientID,
			ClientSecret: os.Getenv("RELTIO_CLIENT_SECRET"),
		})
		tokens = cache.Token
	}

	ctx := context.Background()
	mcpConn := mcpclient.New(serverURL, tokens)
	if err := mcpConn.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize MCP session: %v", err)
	}
	tools, err := mcpConn.ListTools(ctx)
	if err != nil {
		log.Fatalf("Failed to list tools: %v", err)
	}
	fmt.Printf("Connected to MCP server, %d tools available\n", len(tools))

	chat := &chatSession{
		ai:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		mcp:         mcpConn,
		model:       model,
		tools:       toAnthropicTools(tools),
		historySize: historySize,
	}
	chat.repl(ctx)
}

type chatSession struct {
	ai          anthropic.Client
	mcp         *mcpclient.Client
	model       string
	tools       []anthropic.ToolUnionParam
	history     []anthropic.MessageParam
	historySize int
}

// toAnthropicTools converts the MCP tool catalog into Messages API tools.
func toAnthropicTools(tools []mcp.Tool) []anthropic.ToolUnionParam {
	var result []anthropic.ToolUnionParam
	for _, t := range tools {
		toolParam := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: toInputSchema(t.InputSchema),
		}
		result = append(result, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return result
}

func toInputSchema(schema map[string]interface{}) anthropic.ToolInputSchemaParam {
	out := anthropic.ToolInputSchemaParam{}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = props
	}
	return out
}

func (c *chatSession) repl(ctx context.Context) {
	fmt.Println("Type your queries, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "quit") || strings.EqualFold(input, "exit") {
			return
		}

		reply, err := c.process(ctx, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("\nAssistant: %s\n", reply)
	}
}

// process runs one user turn, looping through tool use until the model
// produces a final text answer.
func (c *chatSession) process(ctx context.Context, input string) (string, error) {
	c.append(anthropic.NewUserMessage(anthropic.NewTextBlock(input)))

	var finalText strings.Builder
	for turn := 0; turn < maxToolTurns; turn++ {
		resp, err := c.ai.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: 1024,
			System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
			Messages:  c.history,
			Tools:     c.tools,
		})
		if err != nil {
			return "", err
		}

		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolUses []anthropic.ToolUseBlock
		for _, block := range resp.Content {
			switch b := block.AsAny().(type) {
			case anthropic.TextBlock:
				finalText.WriteString(b.Text)
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(b.Text))
			case anthropic.ToolUseBlock:
				toolUses = append(toolUses, b)
				assistantBlocks = append(assistantBlocks, anthropic.NewToolUseBlock(b.ID, b.Input, b.Name))
			}
		}
		if len(assistantBlocks) > 0 {
			c.append(anthropic.NewAssistantMessage(assistantBlocks...))
		}

		if len(toolUses) == 0 {
			return finalText.String(), nil
		}

		var resultBlocks []anthropic.ContentBlockParamUnion
		for _, use := range toolUses {
			args := map[string]interface{}{}
			if err := unmarshalArgs(use.Input, &args); err != nil {
				resultBlocks = append(resultBlocks,
					anthropic.NewToolResultBlock(use.ID, "Error: invalid tool arguments", true))
				continue
			}

			fmt.Printf("[calling %s]\n", use.Name)
			result, err := c.mcp.CallTool(ctx, use.Name, args)
			if err != nil {
				resultBlocks = append(resultBlocks,
					anthropic.NewToolResultBlock(use.ID, "Error: "+err.Error(), true))
				continue
			}
			resultBlocks = append(resultBlocks,
				anthropic.NewToolResultBlock(use.ID, mcpclient.ResultText(result), result.IsError))
		}
		c.append(anthropic.NewUserMessage(resultBlocks...))
		finalText.WriteString("\n")
	}
	return "", fmt.Errorf("tool call limit reached without a final answer")
}

// append adds a message and trims the window. Anthropic conversations must
// start with a plain user message, so trimming drops leading messages until
// one is found.
func (c *chatSession) append(msg anthropic.MessageParam) {
	c.history = append(c.history, msg)
	limit := c.historySize * 2
	for len(c.history) > limit {
		c.history = c.history[1:]
	}
	for len(c.history) > 0 && !startsWithUserText(c.history[0]) {
		c.history = c.history[1:]
	}
}

// unmarshalArgs converts a tool-use input of any shape into a plain
// argument map.
func unmarshalArgs(input interface{}, out *map[string]interface{}) error {
	if input == nil {
		return nil
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func startsWithUserText(msg anthropic.MessageParam) bool {
	if msg.Role != anthropic.MessageParamRoleUser {
		return false
	}
	for _, block := range msg.Content {
		if block.OfToolResult != nil {
			return false
		}
	}
	return true
}
