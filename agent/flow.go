package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/talentscout/command"
	"github.com/tbxark/talentscout/patch"
	"github.com/tbxark/talentscout/screening"
	"github.com/tbxark/talentscout/types"
)

const (
	EmptyInputReply       = "Please enter a response so we can continue."
	WithdrawReply         = "Thank you for your time. Your information has not been stored. Goodbye!"
	AppliedReply          = "Thank you for applying. Our team will reach out if there’s a match."
	ClosingReply          = "This concludes the initial screening. Have a great day!"
	GenerationFailedReply = "Sorry, we couldn’t prepare your screening questions right now. Please send your tech stack again to retry."
)

var ErrUnknownStage = errors.New("unknown stage")

// transition consumes one answer for the current stage. It may change the
// stage, the candidate record and append non-visible messages; the returned
// reply is appended by the caller.
type transition func(ctx context.Context, state *State, input string) (string, error)

type FormFlow struct {
	spec          FormSpec
	generator     screening.Generator
	commandParser command.Parser
	allowedPaths  map[string]bool
	transitions   map[types.Stage]transition
}

func NewFormFlow(
	spec FormSpec,
	generator screening.Generator,
	commandParser command.Parser,
) (*FormFlow, error) {
	for _, stage := range types.Stages {
		if _, ok := spec.Step(stage); !ok {
			return nil, fmt.Errorf("form spec has no step for stage %q", stage)
		}
	}
	allowedPaths := make(map[string]bool)
	for _, path := range spec.AllowedPaths() {
		allowedPaths[path] = true
	}
	flow := &FormFlow{
		spec:          spec,
		generator:     generator,
		commandParser: commandParser,
		allowedPaths:  allowedPaths,
	}
	flow.transitions = map[types.Stage]transition{
		types.StageTechStack: flow.screen,
		types.StageEnd:       flow.applied,
	}
	for _, stage := range types.Stages {
		if _, ok := flow.transitions[stage]; !ok {
			flow.transitions[stage] = flow.collect
		}
	}
	return flow, nil
}

// NewChatModelFormFlow wires the local keyword parser and a screening builder
// backed by chatModel.
func NewChatModelFormFlow(
	spec FormSpec,
	chatModel model.BaseChatModel,
	opts ...screening.Option,
) (*FormFlow, error) {
	return NewFormFlow(
		spec,
		screening.NewBuilder(chatModel, opts...),
		command.NewLocalCommandParser(),
	)
}

// Start creates the state of a freshly contacted session, greeting included.
func (f *FormFlow) Start() *State {
	return &State{
		Stage: types.StageName,
		Transcript: []*schema.Message{
			schema.SystemMessage(f.spec.SystemPrompt()),
			schema.AssistantMessage(f.spec.Greeting(), nil),
		},
		Greeted: true,
	}
}

// Invoke runs one user turn. input.State is left untouched; the new state is
// returned in the response.
func (f *FormFlow) Invoke(ctx context.Context, input *Request) (*Response, error) {
	state := input.State.Clone()
	if state == nil || !state.Greeted {
		state = f.Start()
	}

	cmd, err := f.commandParser.ParseCommand(ctx, input.UserInput)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command: %w", err)
	}
	slog.Debug("Parsed command", "command", cmd, "stage", state.Stage)

	switch cmd {
	case command.Empty:
		return f.reply(state, EmptyInputReply), nil
	case command.Withdraw:
		return f.handleWithdraw(state), nil
	}

	state.Transcript = appendTranscript(state.Transcript, schema.UserMessage(input.UserInput))
	from := state.Stage
	reply, err := f.advance(ctx, state, input.UserInput)
	if err != nil {
		if errors.Is(err, screening.ErrGenerationUnavailable) {
			return f.handleError(err, state), nil
		}
		return nil, err
	}

	resp := f.reply(state, reply)
	if state.Stage == types.StageEnd {
		state.Transcript = appendTranscript(state.Transcript, schema.AssistantMessage(ClosingReply, nil))
		resp.Replies = append(resp.Replies, ClosingReply)
	}
	slog.Debug("Turn processed", "from", from, "to", state.Stage)
	return resp, nil
}

// Advance applies input to a copy of state using the current stage's
// transition and returns the copy with the reply for that stage. The gate
// and transcript bookkeeping of Invoke are not applied.
func (f *FormFlow) Advance(ctx context.Context, state *State, input string) (*State, string, error) {
	next := state.Clone()
	if next == nil {
		return nil, "", errors.New("state is nil")
	}
	reply, err := f.advance(ctx, next, input)
	if err != nil {
		return nil, "", err
	}
	return next, reply, nil
}

func (f *FormFlow) advance(ctx context.Context, state *State, input string) (string, error) {
	tr, ok := f.transitions[state.Stage]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, state.Stage)
	}
	return tr(ctx, state, input)
}

func (f *FormFlow) collect(ctx context.Context, state *State, input string) (string, error) {
	step, ok := f.spec.Step(state.Stage)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, state.Stage)
	}
	if step.Validate != nil && !step.Validate(input) {
		slog.Debug("Answer rejected", "stage", state.Stage, "field", step.Field.JSONPointer)
		return step.Retry, nil
	}
	candidate, err := patch.Set(state.Candidate, step.Field.JSONPointer, input, f.allowedPaths)
	if err != nil {
		return "", fmt.Errorf("failed to record %s: %w", step.Field.JSONPointer, err)
	}
	state.Candidate = candidate
	state.Stage = state.Stage.Next()
	return step.Ask, nil
}

// screen records the tech stack only when both generation calls succeed, so
// a failed attempt leaves the stage open for another try.
func (f *FormFlow) screen(ctx context.Context, state *State, input string) (string, error) {
	step, ok := f.spec.Step(state.Stage)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, state.Stage)
	}
	candidate, err := patch.Set(state.Candidate, step.Field.JSONPointer, input, f.allowedPaths)
	if err != nil {
		return "", fmt.Errorf("failed to record %s: %w", step.Field.JSONPointer, err)
	}
	if missing := f.spec.MissingFacts(candidate); len(missing) > 0 {
		pointers := make([]string, 0, len(missing))
		for _, field := range missing {
			pointers = append(pointers, field.JSONPointer)
		}
		return "", fmt.Errorf("cannot screen an incomplete profile, missing %s", strings.Join(pointers, ", "))
	}

	slog.Debug("Requesting screening")
	result, err := f.generator.Screen(ctx, &screening.Request{
		Transcript: state.Transcript,
		Record:     candidate,
	})
	if err != nil {
		return "", err
	}

	state.Candidate = candidate
	state.Transcript = appendTranscript(state.Transcript, result.Instructions...)
	state.Stage = types.StageEnd
	slog.Info("Screening completed", "instructions", len(result.Instructions))
	return result.Reply, nil
}

func (f *FormFlow) applied(ctx context.Context, state *State, input string) (string, error) {
	return AppliedReply, nil
}

func (f *FormFlow) reply(state *State, message string) *Response {
	state.Transcript = appendTranscript(state.Transcript, schema.AssistantMessage(message, nil))
	return &Response{
		Replies:  []string{message},
		State:    state,
		Metadata: map[string]string{"stage": string(state.Stage)},
	}
}

func (f *FormFlow) handleWithdraw(state *State) *Response {
	slog.Info("Candidate withdrew", "stage", state.Stage)
	return &Response{
		Replies:    []string{WithdrawReply},
		Terminated: true,
		Metadata:   map[string]string{},
	}
}

func (f *FormFlow) handleError(err error, state *State) *Response {
	slog.Warn("Screening unavailable", "stage", state.Stage, "error", err)
	resp := f.reply(state, GenerationFailedReply)
	resp.Metadata["error"] = err.Error()
	return resp
}

// Summary renders the candidate profile held by state.
func (f *FormFlow) Summary(state *State) string {
	if state == nil {
		return ""
	}
	return f.spec.Summary(state.Candidate)
}
