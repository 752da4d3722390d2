package oracle_test

// Notes:
// - Black-box testing via package oracle_test.
// - Most tests inject a mock chatCompleter through export_test.go.
// - One test runs a real go-openai client against httptest to exercise
//   Provider.NewClient and status-code classification end to end.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-subtitle/internal/apierr"
	"github.com/alnah/go-subtitle/internal/oracle"
	"github.com/alnah/go-subtitle/internal/prompt"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockChat struct {
	mu      sync.Mutex
	calls   []openai.ChatCompletionRequest
	replies []string
	errs    []error
}

func (m *mockChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.calls)
	m.calls = append(m.calls, req)
	if idx < len(m.errs) && m.errs[idx] != nil {
		return openai.ChatCompletionResponse{}, m.errs[idx]
	}
	if idx >= len(m.replies) {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: m.replies[idx]}}},
	}, nil
}

// ---------------------------------------------------------------------------
// TestSplit / TestGroup
// ---------------------------------------------------------------------------

func TestSplit_SendsPromptAndText(t *testing.T) {
	t.Parallel()

	mock := &mockChat{replies: []string{"안녕하세요.\n\n반갑습니다."}}
	o := oracle.NewTestOracle(mock,
		oracle.WithModel("gemini-2.5-pro"),
		oracle.WithSplitParams(prompt.SplitParams{MaxLineChars: 25, MaxLines: 3}))

	got, err := o.Split(context.Background(), "안녕하세요. 반갑습니다.")
	if err != nil {
		t.Fatalf("Split() = %v", err)
	}
	if got != "안녕하세요.\n\n반갑습니다." {
		t.Errorf("Split() = %q", got)
	}

	req := mock.calls[0]
	if req.Model != "gemini-2.5-pro" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "never exceeds 25 characters") {
		t.Errorf("system prompt = %q", req.Messages[0].Content)
	}
	if req.Messages[1].Content != "안녕하세요. 반갑습니다." {
		t.Errorf("user content = %q", req.Messages[1].Content)
	}
}

func TestGroup_FillsCueCount(t *testing.T) {
	t.Parallel()

	mock := &mockChat{replies: []string{"GROUP1: 1-3 | intro"}}
	o := oracle.NewTestOracle(mock, oracle.WithGroupParams(prompt.GroupParams{
		TargetMin: 12, TargetMax: 18, SpanMinSeconds: 15, SpanMaxSeconds: 45,
	}))

	if _, err := o.Group(context.Background(), "1. [0.0s-1.0s] a\n", 42); err != nil {
		t.Fatalf("Group() = %v", err)
	}
	if !strings.Contains(mock.calls[0].Messages[0].Content, "You are given 42 numbered") {
		t.Errorf("system prompt = %q", mock.calls[0].Messages[0].Content)
	}
}

// ---------------------------------------------------------------------------
// Failures
// ---------------------------------------------------------------------------

func TestComplete_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mock     *mockChat
		wantErrs []error
	}{
		{
			name:     "empty reply",
			mock:     &mockChat{replies: []string{"   \n"}},
			wantErrs: []error{oracle.ErrOracleFailure, oracle.ErrEmptyResponse},
		},
		{
			name:     "no choices",
			mock:     &mockChat{},
			wantErrs: []error{oracle.ErrOracleFailure, oracle.ErrEmptyResponse},
		},
		{
			name:     "rate limit is single-shot",
			mock:     &mockChat{errs: []error{&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}}},
			wantErrs: []error{oracle.ErrOracleFailure, apierr.ErrRateLimit},
		},
		{
			name:     "auth",
			mock:     &mockChat{errs: []error{&openai.APIError{HTTPStatusCode: http.StatusUnauthorized}}},
			wantErrs: []error{oracle.ErrOracleFailure, apierr.ErrAuthFailed},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := oracle.NewTestOracle(tt.mock).Split(context.Background(), "text")
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("Split() error = %v, want %v", err, want)
				}
			}
			if len(tt.mock.calls) != 1 {
				t.Errorf("calls = %d, want 1 (no retry by default)", len(tt.mock.calls))
			}
		})
	}
}

func TestComplete_OptionalRetry(t *testing.T) {
	t.Parallel()

	mock := &mockChat{
		errs:    []error{&openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable}},
		replies: []string{"", "ok"},
	}
	o := oracle.NewTestOracle(mock,
		oracle.WithMaxRetries(1),
		oracle.WithRetryDelays(time.Millisecond, time.Millisecond))

	got, err := o.Split(context.Background(), "text")
	if err != nil || got != "ok" {
		t.Errorf("Split() = %q, %v", got, err)
	}
}

func TestComplete_LogsReply(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	o := oracle.NewTestOracle(&mockChat{replies: []string{"abc"}}, oracle.WithLogger(zap.New(core)))

	if _, err := o.Split(context.Background(), "abc"); err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("oracle replied").All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	if entries[0].ContextMap()["task"] != "split" || entries[0].ContextMap()["reply_chars"] != int64(3) {
		t.Errorf("fields = %v", entries[0].ContextMap())
	}
}

// ---------------------------------------------------------------------------
// Provider
// ---------------------------------------------------------------------------

func TestParseProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    oracle.Provider
		wantErr bool
	}{
		{"", oracle.Gemini, false},
		{"Gemini", oracle.Gemini, false},
		{"openai", oracle.OpenAI, false},
		{" deepseek ", oracle.DeepSeek, false},
		{"claude", oracle.Provider{}, true},
	}

	for _, tt := range tests {
		got, err := oracle.ParseProvider(tt.in)
		if tt.wantErr {
			if !errors.Is(err, oracle.ErrInvalidProvider) {
				t.Errorf("ParseProvider(%q) error = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseProvider(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestProvider_NewClientRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := oracle.DeepSeek.NewClient(" ")
	if !errors.Is(err, oracle.ErrEmptyAPIKey) || !strings.Contains(err.Error(), "DEEPSEEK_API_KEY") {
		t.Errorf("NewClient() error = %v", err)
	}
	if _, err := (oracle.Provider{}).NewClient("k"); !errors.Is(err, oracle.ErrInvalidProvider) {
		t.Errorf("zero provider NewClient() error = %v", err)
	}
}

func TestChatOracle_HTTP(t *testing.T) {
	t.Parallel()

	var (
		mu                sync.Mutex
		gotAuth, gotModel string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		gotModel = req.Model
		mu.Unlock()

		if strings.Contains(req.Messages[1].Content, "fail") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "line one\n\nline two"}}},
		})
	}))
	defer srv.Close()

	provider := oracle.OpenAI.WithBaseURL(srv.URL + "/v1")
	client, err := provider.NewClient("sk-test")
	if err != nil {
		t.Fatal(err)
	}
	o := oracle.New(client, provider)

	got, err := o.Split(context.Background(), "line one line two")
	if err != nil {
		t.Fatalf("Split() = %v", err)
	}
	if got != "line one\n\nline two" {
		t.Errorf("Split() = %q", got)
	}
	mu.Lock()
	if gotAuth != "Bearer sk-test" || gotModel != oracle.OpenAI.DefaultModel() {
		t.Errorf("auth = %q, model = %q", gotAuth, gotModel)
	}
	mu.Unlock()

	_, err = o.Split(context.Background(), "fail")
	if !errors.Is(err, apierr.ErrAuthFailed) || !errors.Is(err, oracle.ErrOracleFailure) {
		t.Errorf("Split(fail) error = %v", err)
	}
}
