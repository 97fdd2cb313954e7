package testcases

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/tbxark/talentscout/agent"
	"github.com/tbxark/talentscout/config"
	"github.com/tbxark/talentscout/intake"
	"github.com/tbxark/talentscout/screening"
)

// Completion is one scripted model answer. Err takes precedence over Content.
type Completion struct {
	Content string
	Err     error
}

// ScriptedModel answers Generate calls from a fixed script and records every request.
type ScriptedModel struct {
	mu       sync.Mutex
	script   []Completion
	Requests [][]*schema.Message
	Options  []*model.Options
}

var _ model.BaseChatModel = (*ScriptedModel)(nil)

func NewScriptedModel(script ...Completion) *ScriptedModel {
	return &ScriptedModel{script: script}
}

func (m *ScriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, append([]*schema.Message(nil), input...))
	m.Options = append(m.Options, model.GetCommonOptions(&model.Options{}, opts...))
	if len(m.script) == 0 {
		return nil, errors.New("script exhausted")
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return schema.AssistantMessage(next.Content, nil), nil
}

func (m *ScriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming is not supported")
}

func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func InitChatModel(t *testing.T) *openai.ChatModel {
	if os.Getenv("TALENTSCOUT_RUN_LIVE_TESTS") != "1" {
		t.Skip("set TALENTSCOUT_RUN_LIVE_TESTS=1 to run live LLM tests")
		return nil
	}

	ctx := context.Background()
	conf, err := config.Load("../config.json")
	if err != nil {
		t.Skipf("failed to load config: %v", err)
		return nil
	}
	conf.ApplyEnv()
	if conf.APIKey == "" {
		t.Skip("no api key in config.json or environment")
		return nil
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  conf.APIKey,
		Model:   conf.Model,
		BaseURL: conf.BaseURL,
	})
	if err != nil {
		t.Fatalf("failed to init chat model: %v", err)
		return nil
	}
	return chatModel
}

// NewTestSessions builds in-memory sessions over chatModel and returns a
// context routed to a fresh session.
func NewTestSessions(t *testing.T, chatModel model.BaseChatModel, opts ...screening.Option) (*agent.Sessions, context.Context) {
	t.Helper()
	flow, err := agent.NewChatModelFormFlow(intake.CandidateForm{}, chatModel, opts...)
	if err != nil {
		t.Fatalf("failed to create flow: %v", err)
	}
	sessions := agent.NewSessions(flow, agent.NewMemoryStateReadWriter())
	return sessions, agent.WithStateKey(context.Background(), uuid.NewString())
}
