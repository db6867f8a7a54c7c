package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Coordinator orchestrates one chat turn: it asks the completion engine what
// to do, runs any requested tools through an Executor, and obtains the final
// natural-language reply. A turn makes at most two engine calls; the second
// one carries no tool catalog, so tool use is bounded to a single round.
type Coordinator struct {
	base      model.ToolCallingChatModel // final-reply calls, no tools attached
	withTools model.ToolCallingChatModel // first-phase calls, catalog attached
}

// NewCoordinator binds the static tool catalog to the model once.
func NewCoordinator(m model.ToolCallingChatModel) (*Coordinator, error) {
	bound, err := m.WithTools(Catalog())
	if err != nil {
		return nil, fmt.Errorf("bind tool catalog: %w", err)
	}
	return &Coordinator{base: m, withTools: bound}, nil
}

// ProcessMessage runs one turn for the given user message. history is the
// bounded prior transcript in chronological order. The executor is bound to
// the caller's user and (typically transaction-scoped) task store.
//
// The returned action is the last non-empty one across the turn's tool
// invocations: when several tools run in one turn, the most recent mutation
// is the one reported.
func (c *Coordinator) ProcessMessage(ctx context.Context, exec *Executor, history []*schema.Message, userText string) (string, *TaskAction, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(SystemPrompt))
	messages = append(messages, history...)
	messages = append(messages, schema.UserMessage(userText))

	first, err := c.withTools.Generate(ctx, messages)
	if err != nil {
		return "", nil, fmt.Errorf("completion: %w", err)
	}

	if len(first.ToolCalls) == 0 {
		return first.Content, nil, nil
	}

	messages = append(messages, first)

	var action *TaskAction
	for _, call := range first.ToolCalls {
		result := c.executeCall(ctx, exec, call, &action)
		if result.err != nil {
			return "", nil, result.err
		}
		messages = append(messages, schema.ToolMessage(result.payload, call.ID))
	}

	final, err := c.base.Generate(ctx, messages)
	if err != nil {
		return "", nil, fmt.Errorf("completion after tools: %w", err)
	}
	return final.Content, action, nil
}

type callOutcome struct {
	payload string
	err     error
}

func (c *Coordinator) executeCall(ctx context.Context, exec *Executor, call schema.ToolCall, action **TaskAction) callOutcome {
	name := call.Function.Name

	var result Result
	kind, ok := KindForName(name)
	if !ok {
		result = failure("Unknown tool: %s", name)
	} else {
		var (
			act *TaskAction
			err error
		)
		result, act, err = exec.Execute(ctx, kind, call.Function.Arguments)
		if err != nil {
			return callOutcome{err: fmt.Errorf("execute %s: %w", name, err)}
		}
		if act != nil {
			*action = act
		}
	}

	if !result.Success {
		slog.Debug("tool call failed", "tool", name, "message", result.Message)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return callOutcome{err: fmt.Errorf("marshal %s result: %w", name, err)}
	}
	return callOutcome{payload: string(payload)}
}
