// Package llm implements the text-generation collaborator on the OpenAI
// chat-completions API. A persona's declared capabilities are exposed to the
// model as tools; the client executes tool calls against the configured
// providers and loops until the model returns a plain message.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sellside/prospect"
)

const (
	searchToolName = "tavily_search"
	fetchToolName  = "fetch_page"

	defaultMaxToolRounds = 10
)

// Client generates text for personas via the OpenAI API.
type Client struct {
	api           *openai.Client
	searcher      prospect.SearchProvider
	fetcher       prospect.FetchProvider
	logger        *zap.Logger
	maxToolRounds int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSearchProvider supplies the backend for the search capability.
func WithSearchProvider(s prospect.SearchProvider) ClientOption {
	return func(c *Client) { c.searcher = s }
}

// WithFetchProvider supplies the backend for the fetch capability.
func WithFetchProvider(f prospect.FetchProvider) ClientOption {
	return func(c *Client) { c.fetcher = f }
}

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxToolRounds bounds how many tool-call rounds a single generation may
// take before giving up.
func WithMaxToolRounds(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxToolRounds = n
		}
	}
}

// NewClient constructs a Client for api.openai.com.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey), opts...)
}

// NewClientWithConfig constructs a Client from an explicit API configuration.
// This is useful for pointing at OpenAI-compatible servers.
func NewClientWithConfig(cfg openai.ClientConfig, opts ...ClientOption) *Client {
	c := &Client{
		api:           openai.NewClientWithConfig(cfg),
		logger:        zap.NewNop(),
		maxToolRounds: defaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends the persona's instructions plus the ordered context to the
// model and returns the final message text. Tool calls issued by the model
// along the way are executed against the configured providers; a failing
// search or fetch is reported back to the model as a structured error value
// rather than aborting the generation.
func (c *Client) Generate(ctx context.Context, persona prospect.Persona, messages []prospect.Message) (string, error) {
	tools, err := c.toolsFor(persona)
	if err != nil {
		return "", err
	}

	log := c.logger.With(zap.String("persona", persona.Name), zap.String("model", persona.Model))

	msgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: persona.Instructions,
	})
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	for round := 0; round < c.maxToolRounds; round++ {
		req := openai.ChatCompletionRequest{
			Model:    persona.Model,
			Messages: msgs,
			Tools:    tools,
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("%s: chat completion: %w", persona.Name, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%s: chat completion returned no choices", persona.Name)
		}

		msg := resp.Choices[0].Message
		msgs = append(msgs, msg)

		if len(msg.ToolCalls) == 0 {
			log.Debug("generation complete",
				zap.Int("rounds", round+1),
				zap.Int("output_chars", len(msg.Content)),
			)
			return msg.Content, nil
		}

		for _, tc := range msg.ToolCalls {
			result := c.executeTool(ctx, log, tc)
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				Name:       tc.Function.Name,
				ToolCallID: tc.ID,
			})
		}
	}

	return "", fmt.Errorf("%s: no final message after %d tool rounds", persona.Name, c.maxToolRounds)
}

// toolsFor maps the persona's capability tags onto tool definitions,
// rejecting any capability the client has no provider for.
func (c *Client) toolsFor(persona prospect.Persona) ([]openai.Tool, error) {
	var tools []openai.Tool

	if persona.Can(prospect.CapabilitySearch) {
		if c.searcher == nil {
			return nil, fmt.Errorf("%s declares the search capability but no search provider is configured", persona.Name)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        searchToolName,
				Description: "Search the web. Returns ranked results and a synthesized answer.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "The search query",
						},
					},
					"required": []string{"query"},
				},
			},
		})
	}

	if persona.Can(prospect.CapabilityFetch) {
		if c.fetcher == nil {
			return nil, fmt.Errorf("%s declares the fetch capability but no fetch provider is configured", persona.Name)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        fetchToolName,
				Description: "Fetch a web page and return its readable text content.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"url": map[string]any{
							"type":        "string",
							"description": "The page URL to fetch",
						},
					},
					"required": []string{"url"},
				},
			},
		})
	}

	return tools, nil
}

// executeTool runs one tool call and renders its outcome as JSON for the
// model. Provider errors become an {"error": ...} value so the persona can
// decide how to proceed.
func (c *Client) executeTool(ctx context.Context, log *zap.Logger, tc openai.ToolCall) string {
	switch tc.Function.Name {
	case searchToolName:
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return toolError(fmt.Errorf("bad tool arguments: %w", err))
		}
		log.Debug("tool call", zap.String("tool", searchToolName), zap.String("query", args.Query))

		resp, err := c.searcher.Search(ctx, args.Query)
		if err != nil {
			log.Error("search failed", zap.String("query", args.Query), zap.Error(err))
			return toolError(err)
		}
		return renderSearch(resp)

	case fetchToolName:
		var args struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return toolError(fmt.Errorf("bad tool arguments: %w", err))
		}
		log.Debug("tool call", zap.String("tool", fetchToolName), zap.String("url", args.URL))

		text, err := c.fetcher.Fetch(ctx, args.URL)
		if err != nil {
			log.Error("fetch failed", zap.String("url", args.URL), zap.Error(err))
			return toolError(err)
		}
		return mustJSON(map[string]any{"content": text})

	default:
		return toolError(fmt.Errorf("unknown tool %q", tc.Function.Name))
	}
}

func renderSearch(resp *prospect.SearchResponse) string {
	results := make([]map[string]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, map[string]string{
			"title":   r.Title,
			"url":     r.URL,
			"content": r.Snippet,
		})
	}
	return mustJSON(map[string]any{
		"answer":  resp.Answer,
		"results": results,
	})
}

func toolError(err error) string {
	return mustJSON(map[string]any{"error": err.Error()})
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(b)
}
