package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes Sessions as an eino adk.Agent. The session is taken from the
// state key of the run context.
type Agent struct {
	name        string
	description string
	sessions    *Sessions
}

func NewAgent(name, description string, sessions *Sessions) *Agent {
	return &Agent{
		name:        name,
		description: description,
		sessions:    sessions,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		resp, err := a.sessions.Submit(ctx, input.Messages[len(input.Messages)-1].Content)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("submit failed: %w", err),
			})
			return
		}
		for i, reply := range resp.Replies {
			event := &adk.AgentEvent{
				Output: &adk.AgentOutput{
					MessageOutput: &adk.MessageVariant{
						IsStreaming: false,
						Message:     schema.AssistantMessage(reply, nil),
						Role:        schema.Assistant,
					},
				},
			}
			if resp.Terminated && i == len(resp.Replies)-1 {
				event.Action = &adk.AgentAction{Exit: true}
			}
			gen.Send(event)
		}
	}()
	return iter
}
