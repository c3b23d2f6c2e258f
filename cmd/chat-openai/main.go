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

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"

	"github.com/reltio-open/reltio-mcp-server/internal/mcpclient"
	"github.com/reltio-open/reltio-mcp-server/pkg/mcp"
)

const systemPrompt = `You are a helpful AI assistant that works with Reltio data.
Provide detailed and comprehensive answers, don't skip important details.
Be helpful, accurate, and thorough in your responses.`

// maxToolTurns bounds a single user query to a handful of tool round-trips.
const maxToolTurns = 6

func main() {
	var serverURL string
	var model string
	var historySize int
	flag.StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the MCP server HTTP transport")
	flag.StringVar(&model, "model", "gpt-4o", "OpenAI model name")
	flag.IntVar(&historySize, "history", 10, "Number of exchanges to keep in the conversation window")
	flag.Parse()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY must be set")
	}

	ctx := context.Background()
	mcpConn := mcpclient.New(serverURL, nil)
	if err := mcpConn.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize MCP session: %v", err)
	}
	tools, err := mcpConn.ListTools(ctx)
	if err != nil {
		log.Fatalf("Failed to list tools: %v", err)
	}
	fmt.Printf("Connected to MCP server, %d tools available\n", len(tools))

	chat := &chatSession{
		ai:          openai.NewClient(option.WithAPIKey(apiKey)),
		mcp:         mcpConn,
		model:       model,
		tools:       toOpenAITools(tools),
		historySize: historySize,
	}
	chat.repl(ctx)
}

type chatSession struct {
	ai          openai.Client
	mcp         *mcpclient.Client
	model       string
	tools       []openai.ChatCompletionToolUnionParam
	history     []openai.ChatCompletionMessageParamUnion
	historySize int
}

// toOpenAITools converts the MCP tool catalog into Chat Completions
// function tools.
func toOpenAITools(tools []mcp.Tool) []openai.ChatCompletionToolUnionParam {
	var result []openai.ChatCompletionToolUnionParam
	for _, t := range tools {
		function := openai.FunctionDefinitionParam{
			Name:       t.Name,
			Parameters: t.InputSchema,
		}
		if t.Description != "" {
			function.Description = openai.String(t.Description)
		}
		result = append(result, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: function,
				Type:     constant.ValueOf[constant.Function](),
			},
		})
	}
	return result
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

// process runs one user turn through the model, executing any requested
// tool calls against the MCP server before the final answer.
func (c *chatSession) process(ctx context.Context, input string) (string, error) {
	c.append(openai.UserMessage(input))

	for turn := 0; turn < maxToolTurns; turn++ {
		messages := append([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
		}, c.history...)

		resp, err := c.ai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    c.model,
			Messages: messages,
			Tools:    c.tools,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("model returned no choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			c.append(openai.AssistantMessage(msg.Content))
			return msg.Content, nil
		}

		assistantParam := msg.ToAssistantMessageParam()
		c.append(openai.ChatCompletionMessageParamUnion{OfAssistant: &assistantParam})

		for _, call := range msg.ToolCalls {
			name := call.Function.Name
			args := map[string]interface{}{}
			if call.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
					c.append(openai.ToolMessage("Error: invalid tool arguments", call.ID))
					continue
				}
			}

			fmt.Printf("[calling %s %s]\n", name, call.Function.Arguments)
			result, err := c.mcp.CallTool(ctx, name, args)
			if err != nil {
				c.append(openai.ToolMessage("Error: "+err.Error(), call.ID))
				continue
			}
			c.append(openai.ToolMessage(mcpclient.ResultText(result), call.ID))
		}
	}
	return "", fmt.Errorf("tool call limit reached without a final answer")
}

// append adds a message and trims the window. Trimming never strands a tool
// response without its assistant tool call: leading tool messages are
// dropped along with it.
func (c *chatSession) append(msg openai.ChatCompletionMessageParamUnion) {
	c.history = append(c.history, msg)
	limit := c.historySize * 2
	for len(c.history) > limit {
		c.history = c.history[1:]
		for len(c.history) > 0 && c.history[0].OfTool != nil {
			c.history = c.history[1:]
		}
	}
}
