package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/talentscout/command"
	"github.com/tbxark/talentscout/intake"
	"github.com/tbxark/talentscout/screening"
	"github.com/tbxark/talentscout/types"
)

type fakeGenerator struct {
	mu       sync.Mutex
	results  []*screening.Result
	errs     []error
	requests []*screening.Request
}

func (g *fakeGenerator) Screen(ctx context.Context, req *screening.Request) (*screening.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, &screening.Request{
		Transcript: append([]*schema.Message(nil), req.Transcript...),
		Record:     req.Record,
	})
	if len(g.errs) > 0 {
		err := g.errs[0]
		g.errs = g.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(g.results) == 0 {
		return nil, errors.New("no scripted result")
	}
	r := g.results[0]
	g.results = g.results[1:]
	return r, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func screeningResult(rec types.Record) *screening.Result {
	questions := "1. What is a goroutine?"
	confidence := "Confidence Level: Moderate\nReason: Clear but brief answers."
	return &screening.Result{
		Instructions: []*schema.Message{
			schema.SystemMessage("questions for " + rec.TechStack),
			schema.SystemMessage("confidence"),
		},
		Questions:  questions,
		Confidence: confidence,
		Reply:      screening.FormatReply(questions, confidence),
	}
}

func newTestFlow(t *testing.T, gen screening.Generator) *FormFlow {
	t.Helper()
	flow, err := NewFormFlow(intake.CandidateForm{}, gen, command.NewLocalCommandParser())
	require.NoError(t, err)
	return flow
}

func stateAt(flow *FormFlow, stage types.Stage, rec types.Record) *State {
	state := flow.Start()
	state.Stage = stage
	state.Candidate = rec
	return state
}

func completeRecord() types.Record {
	return types.Record{
		Name:       "Jane Doe",
		Email:      "jane@x.com",
		Phone:      "12345678",
		Experience: "3",
		Position:   "Backend Engineer",
		Location:   "Berlin",
	}
}

func TestStartGreets(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})
	state := flow.Start()

	assert.Equal(t, types.StageName, state.Stage)
	assert.True(t, state.Greeted)
	require.Len(t, state.Transcript, 2)
	assert.Equal(t, schema.System, state.Transcript[0].Role)
	assert.Equal(t, intake.SystemPrompt, state.Transcript[0].Content)
	assert.Equal(t, schema.Assistant, state.Transcript[1].Role)
	assert.Equal(t, intake.Greeting, state.Transcript[1].Content)
	assert.Equal(t, types.Record{}, state.Candidate)
}

func TestAdvanceCollectStages(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})
	ctx := context.Background()

	cases := []struct {
		stage types.Stage
		input string
		reply string
		next  types.Stage
	}{
		{types.StageName, "Jane Doe", "Thanks! What is your email address?", types.StageEmail},
		{types.StageEmail, "jane@x.com", "What is your phone number?", types.StagePhone},
		{types.StagePhone, "12345678", "How many years of experience do you have?", types.StageExperience},
		{types.StageExperience, "3", "Which position(s) are you applying for?", types.StagePosition},
		{types.StagePosition, "Backend Engineer", "Where are you currently located?", types.StageLocation},
		{types.StageLocation, "Berlin", "Please list your tech stack (languages, frameworks, tools).", types.StageTechStack},
	}
	for _, tc := range cases {
		t.Run(string(tc.stage), func(t *testing.T) {
			state := stateAt(flow, tc.stage, types.Record{})
			next, reply, err := flow.Advance(ctx, state, tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.reply, reply)
			assert.Equal(t, tc.next, next.Stage)
			assert.Equal(t, tc.input, next.Candidate.Get(tc.stage))
			assert.Equal(t, tc.stage, state.Stage, "input state must not change")
		})
	}
}

func TestAdvanceRejectsInvalidAnswers(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})
	ctx := context.Background()

	state := stateAt(flow, types.StageEmail, types.Record{Name: "Jane"})
	next, reply, err := flow.Advance(ctx, state, "jane.x.com")
	require.NoError(t, err)
	assert.Equal(t, "That doesn’t look like a valid email. Could you please re-enter your email address?", reply)
	assert.Equal(t, types.StageEmail, next.Stage)
	assert.False(t, next.Candidate.Has(types.StageEmail))

	state = stateAt(flow, types.StagePhone, types.Record{Name: "Jane", Email: "jane@x.com"})
	for _, input := range []string{"123-456-78", "1234567", "+12345678"} {
		next, reply, err = flow.Advance(ctx, state, input)
		require.NoError(t, err)
		assert.Equal(t, "Please enter a valid phone number (digits only).", reply)
		assert.Equal(t, types.StagePhone, next.Stage)
		assert.False(t, next.Candidate.Has(types.StagePhone))
	}
}

func TestAdvanceKeepsRawInput(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})
	next, _, err := flow.Advance(context.Background(), stateAt(flow, types.StageName, types.Record{}), "  Jane Doe ")
	require.NoError(t, err)
	assert.Equal(t, "  Jane Doe ", next.Candidate.Name)
}

func TestAdvanceTechStack(t *testing.T) {
	rec := completeRecord()
	rec.TechStack = "Go"
	gen := &fakeGenerator{results: []*screening.Result{screeningResult(rec)}}
	flow := newTestFlow(t, gen)

	state := stateAt(flow, types.StageTechStack, completeRecord())
	next, reply, err := flow.Advance(context.Background(), state, "Go")
	require.NoError(t, err)
	assert.Equal(t, types.StageEnd, next.Stage)
	assert.Equal(t, "Go", next.Candidate.TechStack)
	assert.Contains(t, reply, "### 📌 Technical Interview Questions")
	assert.Contains(t, reply, "### 📊 Confidence Assessment")

	require.Equal(t, 1, gen.calls())
	assert.Equal(t, "Go", gen.requests[0].Record.TechStack)
	require.Len(t, next.Transcript, len(state.Transcript)+2)
	assert.Equal(t, schema.System, next.Transcript[len(next.Transcript)-1].Role)
}

func TestAdvanceTechStackRequiresCompleteProfile(t *testing.T) {
	gen := &fakeGenerator{}
	flow := newTestFlow(t, gen)

	_, _, err := flow.Advance(context.Background(), stateAt(flow, types.StageTechStack, types.Record{Name: "Jane"}), "Go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/email")
	assert.Equal(t, 0, gen.calls())
}

func TestAdvanceEnd(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})
	rec := completeRecord()
	rec.TechStack = "Go"

	next, reply, err := flow.Advance(context.Background(), stateAt(flow, types.StageEnd, rec), "anything else?")
	require.NoError(t, err)
	assert.Equal(t, AppliedReply, reply)
	assert.Equal(t, types.StageEnd, next.Stage)
	assert.Equal(t, rec, next.Candidate)
}

func TestAdvanceUnknownStage(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})
	_, _, err := flow.Advance(context.Background(), stateAt(flow, types.Stage("nope"), types.Record{}), "x")
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestInvokeEmptyInput(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})
	state := flow.Start()

	for _, input := range []string{"", "   ", "\t\n"} {
		resp, err := flow.Invoke(context.Background(), &Request{State: state, UserInput: input})
		require.NoError(t, err)
		assert.Equal(t, []string{EmptyInputReply}, resp.Replies)
		assert.Equal(t, types.StageName, resp.State.Stage)
		require.Len(t, resp.State.Transcript, 3)
		assert.Equal(t, schema.Assistant, resp.State.Transcript[2].Role)
		assert.Equal(t, EmptyInputReply, resp.State.Transcript[2].Content)
	}
	assert.Len(t, state.Transcript, 2)
}

func TestInvokeWithdraw(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})

	for _, input := range []string{"exit", "QUIT", "  Stop  "} {
		t.Run(input, func(t *testing.T) {
			state := stateAt(flow, types.StagePhone, types.Record{Name: "Jane", Email: "jane@x.com"})
			resp, err := flow.Invoke(context.Background(), &Request{State: state, UserInput: input})
			require.NoError(t, err)
			assert.True(t, resp.Terminated)
			assert.Nil(t, resp.State)
			assert.Equal(t, []string{WithdrawReply}, resp.Replies)
			require.Len(t, resp.View(), 1)
			assert.Equal(t, WithdrawReply, resp.View()[0].Content)
		})
	}
}

func TestInvokeWithdrawNotSubstring(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})
	resp, err := flow.Invoke(context.Background(), &Request{State: flow.Start(), UserInput: "Stopford Exiter"})
	require.NoError(t, err)
	assert.False(t, resp.Terminated)
	assert.Equal(t, "Stopford Exiter", resp.State.Candidate.Name)
}

func TestInvokeWithoutStateStartsSession(t *testing.T) {
	flow := newTestFlow(t, &fakeGenerator{})
	resp, err := flow.Invoke(context.Background(), &Request{UserInput: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, types.StageEmail, resp.State.Stage)
	view := resp.View()
	require.Len(t, view, 3)
	assert.Equal(t, intake.Greeting, view[0].Content)
	assert.Equal(t, "Jane Doe", view[1].Content)
}

func TestInvokeFullInterview(t *testing.T) {
	rec := completeRecord()
	rec.TechStack = "Python, PostgreSQL"
	gen := &fakeGenerator{results: []*screening.Result{screeningResult(rec)}}
	flow := newTestFlow(t, gen)
	ctx := context.Background()

	state := flow.Start()
	inputs := []string{"Jane Doe", "jane@x.com", "12345678", "3", "Backend Engineer", "Berlin"}
	for _, input := range inputs {
		resp, err := flow.Invoke(ctx, &Request{State: state, UserInput: input})
		require.NoError(t, err)
		require.Len(t, resp.Replies, 1)
		state = resp.State
	}
	assert.Equal(t, types.StageTechStack, state.Stage)
	assert.Equal(t, 0, gen.calls())

	resp, err := flow.Invoke(ctx, &Request{State: state, UserInput: "Python, PostgreSQL"})
	require.NoError(t, err)
	require.Len(t, resp.Replies, 2)
	assert.Equal(t, ClosingReply, resp.Replies[1])
	assert.Equal(t, types.StageEnd, resp.State.Stage)
	assert.Equal(t, rec, resp.State.Candidate)

	// The generator sees the tech stack answer as the last message.
	require.Equal(t, 1, gen.calls())
	sent := gen.requests[0].Transcript
	assert.Equal(t, schema.User, sent[len(sent)-1].Role)
	assert.Equal(t, "Python, PostgreSQL", sent[len(sent)-1].Content)

	tail := resp.State.Transcript[len(resp.State.Transcript)-5:]
	assert.Equal(t, schema.User, tail[0].Role)
	assert.Equal(t, schema.System, tail[1].Role)
	assert.Equal(t, schema.System, tail[2].Role)
	assert.Equal(t, schema.Assistant, tail[3].Role)
	assert.Equal(t, ClosingReply, tail[4].Content)

	view := resp.View()
	assert.Equal(t, 1+2*len(inputs)+3, len(view))

	resp, err = flow.Invoke(ctx, &Request{State: resp.State, UserInput: "When will I hear back?"})
	require.NoError(t, err)
	assert.Equal(t, []string{AppliedReply, ClosingReply}, resp.Replies)
	assert.Equal(t, rec, resp.State.Candidate)
	assert.Equal(t, 1, gen.calls())

	summary := flow.Summary(resp.State)
	assert.Contains(t, summary, "Jane Doe")
	assert.Contains(t, summary, "Python, PostgreSQL")
}

func TestInvokeGenerationFailureAllowsRetry(t *testing.T) {
	rec := completeRecord()
	rec.TechStack = "Go"
	gen := &fakeGenerator{
		errs:    []error{fmt.Errorf("%w: technical questions: boom", screening.ErrGenerationUnavailable), nil},
		results: []*screening.Result{screeningResult(rec)},
	}
	flow := newTestFlow(t, gen)
	ctx := context.Background()

	state := stateAt(flow, types.StageTechStack, completeRecord())
	resp, err := flow.Invoke(ctx, &Request{State: state, UserInput: "Go"})
	require.NoError(t, err)
	assert.Equal(t, []string{GenerationFailedReply}, resp.Replies)
	assert.Equal(t, types.StageTechStack, resp.State.Stage)
	assert.Empty(t, resp.State.Candidate.TechStack)
	assert.Contains(t, resp.Metadata["error"], "boom")
	assert.Len(t, resp.State.Transcript, len(state.Transcript)+2)

	resp, err = flow.Invoke(ctx, &Request{State: resp.State, UserInput: "Go"})
	require.NoError(t, err)
	assert.Equal(t, types.StageEnd, resp.State.Stage)
	assert.Equal(t, "Go", resp.State.Candidate.TechStack)
	assert.Equal(t, 2, gen.calls())
}

func TestInvokeUnexpectedGeneratorError(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("bad request")}}
	flow := newTestFlow(t, gen)

	_, err := flow.Invoke(context.Background(), &Request{
		State:     stateAt(flow, types.StageTechStack, completeRecord()),
		UserInput: "Go",
	})
	require.Error(t, err)
}

func TestNewFormFlowRequiresEveryStage(t *testing.T) {
	_, err := NewFormFlow(partialSpec{intake.CandidateForm{}}, &fakeGenerator{}, command.NewLocalCommandParser())
	require.Error(t, err)
}

type partialSpec struct {
	intake.CandidateForm
}

func (p partialSpec) Step(stage types.Stage) (types.Step, bool) {
	if stage == types.StageLocation {
		return types.Step{}, false
	}
	return p.CandidateForm.Step(stage)
}
