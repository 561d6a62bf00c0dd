// Package openai implements model.Model on top of the OpenAI Chat
// Completions API (streaming and non-streaming, with function/tool calling).
// It converts troupe's flat message history into the SDK's message unions
// and surfaces streamed chunks as raw deltas; reassembly happens in the
// orchestrator, not here.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/model"
)

// Options configure the OpenAI model adapter. Request-level concerns (model
// id, tools, tool choice) travel in model.Request; Options hold the
// client-level knobs.
type Options struct {
	DefaultModel        string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// New creates the adapter using the official client with environment-based
// configuration.
func New(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates the adapter from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		DefaultModel:        openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Complete implements model.Model for the non-streaming path.
func (m *Model) Complete(ctx context.Context, req model.Request) (*core.Message, error) {
	resp, err := m.client.Chat.Completions.New(ctx, m.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api returned no choices")
	}
	choice := resp.Choices[0]

	msg := &core.Message{Role: core.RoleAssistant, Content: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: core.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return msg, nil
}

// Stream implements model.Model for the streaming path. Chunk deltas are
// forwarded as-is: content fragments, and per-index tool-call fragments with
// whatever subset of id/name/arguments the chunk carried.
func (m *Model) Stream(ctx context.Context, req model.Request) (<-chan model.Delta, <-chan error) {
	out := make(chan model.Delta, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		stream := m.client.Chat.Completions.NewStreaming(ctx, m.buildParams(req))
		for stream.Next() {
			chunk := stream.Current()
			for _, choice := range chunk.Choices {
				d := model.Delta{
					Role:    choice.Delta.Role,
					Content: choice.Delta.Content,
				}
				for _, tc := range choice.Delta.ToolCalls {
					d.ToolCalls = append(d.ToolCalls, model.ToolCallDelta{
						Index:     int(tc.Index),
						ID:        tc.ID,
						Type:      string(tc.Type),
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					})
				}
				if d.Role == "" && d.Content == "" && len(d.ToolCalls) == 0 {
					continue
				}
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case out <- d:
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("openai streaming error: %w", err)
		}
	}()
	return out, errCh
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.DefaultModel, Provider: "openai", SupportsTools: true}
}

// buildParams assembles the request parameters including tool definitions,
// tool choice and the parallel-tool-calls flag.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	modelID := req.Model
	if modelID == "" {
		modelID = m.opts.DefaultModel
	}
	params := openai.ChatCompletionNewParams{
		Model:               modelID,
		Messages:            buildMessages(req.Messages),
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, def := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        def.Function.Name,
					Description: openai.String(def.Function.Description),
					Parameters:  def.Function.Parameters,
				},
			}
		}
		params.Tools = tools
		if req.ParallelToolCalls != nil {
			params.ParallelToolCalls = openai.Bool(*req.ParallelToolCalls)
		}
		if req.ToolChoice != "" {
			params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
				OfAuto: openai.String(req.ToolChoice),
			}
		}
	}
	return params
}

// buildMessages converts the flat history into SDK message unions. Tool
// messages arrive already ordered directly after the assistant message that
// requested them, so no reordering is needed.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case core.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case core.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case core.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{Role: "assistant"}
			if msg.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(msg.Content),
				}
			}
			for _, tc := range msg.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		default:
			if msg.Content != "" {
				out = append(out, openai.UserMessage(msg.Content))
			}
		}
	}
	return out
}
