package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/o1-assessor/internal/ai"
)

type stubCompleter struct {
	resp    openai.ChatCompletionResponse
	err     error
	lastReq openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

func TestGeneratorGenerateContent(t *testing.T) {
	stub := &stubCompleter{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "  {\"rating\": 5}  "},
			FinishReason: openai.FinishReasonStop,
		}},
	}}
	g := &Generator{client: stub, model: "gpt-test", logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), "evaluate this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != `{"rating": 5}` {
		t.Fatalf("unexpected output: %q", output)
	}

	req := stub.lastReq
	if req.Model != "gpt-test" {
		t.Fatalf("unexpected model: %s", req.Model)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "evaluate this" || req.Messages[0].Role != openai.ChatMessageRoleUser {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	if req.Temperature <= 0 || req.Temperature > 1e-6 {
		t.Fatalf("expected near-zero temperature, got %v", req.Temperature)
	}
	if req.MaxTokens != defaultMaxTokens {
		t.Fatalf("unexpected max tokens: %d", req.MaxTokens)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Fatalf("expected json object response format, got %+v", req.ResponseFormat)
	}
}

func TestGeneratorWrapsTransportErrors(t *testing.T) {
	g := &Generator{client: &stubCompleter{err: errors.New("401 unauthorized")}, model: "gpt-test", logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "prompt")
	if !errors.Is(err, ai.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestGeneratorRejectsEmptyChoices(t *testing.T) {
	g := &Generator{client: &stubCompleter{}, model: "gpt-test", logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error when no choices returned")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(Config{APIKey: "  "}); err == nil {
		t.Fatal("expected error for missing api key")
	}

	g, err := NewGenerator(Config{APIKey: "sk-test", BaseURL: "https://gateway.example/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %s", g.Model())
	}
}
