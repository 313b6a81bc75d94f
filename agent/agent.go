package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/myproject/ha-weather-agent/tools"
)

const (
	DefaultName        = "weather_assistant"
	DefaultDescription = "An assistant that answers questions about the weather at home using Home Assistant sensor data"
	DefaultSystemPrompt = "You are a home weather assistant. Use the available tools to read live sensor data " +
		"from Home Assistant and answer questions about current conditions and forecasts. " +
		"If a tool returns an object with an \"error\" field, explain the problem to the user instead of guessing."
	DefaultMaxRounds           = 5
	DefaultTemperature float32 = 0.5
)

// Agent runs a chat loop against an OpenAI-compatible API and dispatches tool
// calls to registered handlers.
type Agent struct {
	Name         string
	Description  string
	client       openai.Client
	model        string
	tools        map[string]tools.Tool
	apiTools     []openai.ChatCompletionToolParam
	systemPrompt string
	memory       []string
	MaxRounds    int
	Temperature  float32
	AllowTools   bool
}

func New(apiKey, baseURL, model string, allowTools bool) *Agent {
	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	return &Agent{
		Name:         DefaultName,
		Description:  DefaultDescription,
		client:       openai.NewClient(options...),
		model:        model,
		tools:        map[string]tools.Tool{},
		apiTools:     []openai.ChatCompletionToolParam{},
		systemPrompt: DefaultSystemPrompt,
		MaxRounds:    DefaultMaxRounds,
		Temperature:  DefaultTemperature,
		AllowTools:   allowTools,
	}
}

func (a *Agent) SetSystemPrompt(prompt string) {
	if strings.TrimSpace(prompt) != "" {
		a.systemPrompt = prompt
	}
}

// AddMemory appends a remembered line to the system context of later turns.
func (a *Agent) AddMemory(memory string) {
	if strings.TrimSpace(memory) == "" {
		return
	}
	a.memory = append(a.memory, memory)
}

func (a *Agent) ListTools() []tools.Tool {
	items := make([]tools.Tool, 0, len(a.tools))
	for _, tool := range a.tools {
		items = append(items, tool)
	}
	return items
}

func (a *Agent) RegisterTool(tool tools.Tool) {
	if tool.Name == "" {
		return
	}
	if tool.Kind == "" {
		tool.Kind = tools.ToolKindTool
	}
	a.tools[tool.Name] = tool
	functionDef := openai.FunctionDefinitionParam{
		Name: tool.Name,
	}
	if tool.Description != "" {
		functionDef.Description = openai.String(tool.Description)
	}
	if tool.Parameters != nil {
		functionDef.Parameters = openai.FunctionParameters(tool.Parameters)
	}
	a.apiTools = append(a.apiTools, openai.ChatCompletionToolParam{
		Function: functionDef,
	})
}

func (a *Agent) RegisterToolFunc(name string, handler tools.ToolHandler, opts ...tools.Option) {
	a.RegisterTool(tools.New(name, handler, opts...))
}

func (a *Agent) systemMessage() string {
	parts := make([]string, 0, 3)
	parts = append(parts, fmt.Sprintf("Agent Name: %s\nAgent Description: %s", a.Name, a.Description))
	parts = append(parts, a.systemPrompt)
	if len(a.memory) > 0 {
		parts = append(parts, "Memory:\n"+strings.Join(a.memory, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// Invoke runs one user turn, calling tools until the model produces a final
// answer or the round limit is hit.
func (a *Agent) Invoke(ctx context.Context, userQuery string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(a.systemMessage()),
		openai.UserMessage(userQuery),
	}
	for i := 1; i <= a.MaxRounds; i++ {
		req := openai.ChatCompletionNewParams{
			Model:    a.model,
			Messages: messages,
		}
		req.Temperature = openai.Float(float64(a.Temperature))
		if a.AllowTools && len(a.apiTools) > 0 {
			req.Tools = a.apiTools
		}
		resp, err := a.client.Chat.Completions.New(ctx, req)
		if err != nil {
			return "", fmt.Errorf("llm error: %v", err)
		}
		msg := resp.Choices[0].Message
		messages = append(messages, msg.ToParam())
		if !a.AllowTools {
			if len(msg.ToolCalls) > 0 {
				return "", fmt.Errorf("tool calls disabled but received %d tool calls", len(msg.ToolCalls))
			}
			return msg.Content, nil
		}
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}
		for _, toolCall := range msg.ToolCalls {
			toolName := toolCall.Function.Name
			args := toolCall.Function.Arguments
			tool, exists := a.tools[toolName]
			if !exists {
				log.Printf("Tool %s not found", toolName)
				continue
			}
			log.Printf("Agent calling tool: %s with args: %s", toolName, args)
			result, err := tool.Handler(ctx, args)
			if err != nil {
				result = fmt.Sprintf("Error executing tool: %v", err)
			}
			messages = append(messages, openai.ToolMessage(result, toolCall.ID))
		}
	}
	return "", fmt.Errorf("agent loop limit exceeded")
}
