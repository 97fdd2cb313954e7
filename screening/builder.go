package screening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/talentscout/types"
)

const (
	DefaultModel                         = "llama-3.1-8b-instant"
	DefaultQuestionsTemperature  float32 = 0.4
	DefaultConfidenceTemperature float32 = 0.3
	DefaultTimeout                       = 60 * time.Second
)

// DefaultQuestionsPromptTemplate takes the tech stack and the years of
// experience, in that order.
const DefaultQuestionsPromptTemplate = `The candidate has the following tech stack:
%s

Generate 3 to 5 technical interview questions for each technology.
Difficulty should match %s years of experience.
Do not include answers.`

const DefaultConfidencePrompt = `You are an AI evaluator.

Based ONLY on the candidate's interaction style and responses so far,
estimate their interview confidence.

Respond in EXACTLY this format (no extra text):

Confidence Level: High / Moderate / Low
Reason: One short sentence (max 15 words)

Do NOT ask questions.
Do NOT generate technical content.`

type CallConfig struct {
	Model       string
	Temperature float32
}

type builderOptions struct {
	questions               CallConfig
	confidence              CallConfig
	timeout                 time.Duration
	questionsPromptTemplate string
	confidencePrompt        string
}

type Option func(*builderOptions)

// WithQuestionsCall sets the model and temperature of the technical-questions call.
func WithQuestionsCall(modelName string, temperature float32) Option {
	return func(o *builderOptions) {
		o.questions = CallConfig{Model: modelName, Temperature: temperature}
	}
}

// WithConfidenceCall sets the model and temperature of the confidence call.
func WithConfidenceCall(modelName string, temperature float32) Option {
	return func(o *builderOptions) {
		o.confidence = CallConfig{Model: modelName, Temperature: temperature}
	}
}

// WithTimeout bounds each model call. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(o *builderOptions) {
		o.timeout = timeout
	}
}

// WithQuestionsPromptTemplate overrides the technical-questions instruction.
// The template receives the tech stack and the experience, in that order.
func WithQuestionsPromptTemplate(tpl string) Option {
	return func(o *builderOptions) {
		o.questionsPromptTemplate = tpl
	}
}

func WithConfidencePrompt(prompt string) Option {
	return func(o *builderOptions) {
		o.confidencePrompt = prompt
	}
}

// Builder turns a finished intake into technical questions and a confidence
// assessment using two sequential model calls.
type Builder struct {
	chatModel               model.BaseChatModel
	questions               CallConfig
	confidence              CallConfig
	timeout                 time.Duration
	questionsPromptTemplate string
	confidencePrompt        string
}

var _ Generator = (*Builder)(nil)

func NewBuilder(chatModel model.BaseChatModel, opts ...Option) *Builder {
	options := builderOptions{
		questions:               CallConfig{Model: DefaultModel, Temperature: DefaultQuestionsTemperature},
		confidence:              CallConfig{Model: DefaultModel, Temperature: DefaultConfidenceTemperature},
		timeout:                 DefaultTimeout,
		questionsPromptTemplate: DefaultQuestionsPromptTemplate,
		confidencePrompt:        DefaultConfidencePrompt,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.questionsPromptTemplate == "" {
		options.questionsPromptTemplate = DefaultQuestionsPromptTemplate
	}
	if options.confidencePrompt == "" {
		options.confidencePrompt = DefaultConfidencePrompt
	}
	return &Builder{
		chatModel:               chatModel,
		questions:               options.questions,
		confidence:              options.confidence,
		timeout:                 options.timeout,
		questionsPromptTemplate: options.questionsPromptTemplate,
		confidencePrompt:        options.confidencePrompt,
	}
}

func (b *Builder) QuestionsInstruction(rec types.Record) *schema.Message {
	experience := rec.Experience
	if experience == "" {
		experience = "their"
	}
	return schema.SystemMessage(fmt.Sprintf(b.questionsPromptTemplate, rec.TechStack, experience))
}

func (b *Builder) ConfidenceInstruction() *schema.Message {
	return schema.SystemMessage(b.confidencePrompt)
}

// Screen runs the technical-questions call and then the confidence call. The
// second request sees the first completion as an assistant message.
func (b *Builder) Screen(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.Record.TechStack == "" {
		return nil, errors.New("screening request has no tech stack")
	}

	questionsInstruction := b.QuestionsInstruction(req.Record)
	messages := make([]*schema.Message, 0, len(req.Transcript)+1)
	messages = append(messages, req.Transcript...)
	messages = append(messages, questionsInstruction)

	slog.Debug("Requesting technical questions", "messages", len(messages), "model", b.questions.Model)
	questions, err := b.complete(ctx, messages, b.questions)
	if err != nil {
		return nil, fmt.Errorf("%w: technical questions: %w", ErrGenerationUnavailable, err)
	}
	if strings.TrimSpace(questions) == "" {
		return nil, fmt.Errorf("%w: technical questions: empty completion", ErrGenerationUnavailable)
	}

	confidenceInstruction := b.ConfidenceInstruction()
	followUp := make([]*schema.Message, 0, len(messages)+2)
	followUp = append(followUp, messages...)
	followUp = append(followUp, schema.AssistantMessage(questions, nil), confidenceInstruction)

	slog.Debug("Requesting confidence assessment", "messages", len(followUp), "model", b.confidence.Model)
	confidence, err := b.complete(ctx, followUp, b.confidence)
	if err != nil {
		return nil, fmt.Errorf("%w: confidence assessment: %w", ErrGenerationUnavailable, err)
	}
	confidence = strings.TrimSpace(confidence)
	if _, err := ParseConfidence(confidence); err != nil {
		return nil, fmt.Errorf("%w: confidence assessment: %w", ErrGenerationUnavailable, err)
	}

	return &Result{
		Instructions: []*schema.Message{questionsInstruction, confidenceInstruction},
		Questions:    questions,
		Confidence:   confidence,
		Reply:        FormatReply(questions, confidence),
	}, nil
}

func (b *Builder) complete(ctx context.Context, messages []*schema.Message, call CallConfig) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	opts := []model.Option{model.WithTemperature(call.Temperature)}
	if call.Model != "" {
		opts = append(opts, model.WithModel(call.Model))
	}
	response, err := b.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if response == nil {
		return "", errors.New("LLM returned no message")
	}
	return response.Content, nil
}
