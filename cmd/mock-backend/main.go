// Command mock-backend runs a deterministic Chat Completions server for
// testing the figaro gateway without a real model provider. It classifies
// incoming prompts by their instruction text and returns canned chart
// code, enhanced prompts, or answers.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", handleChatCompletions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- Response types ---

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Handler ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	prompt := lastUserMessage(&req)
	content := classify(prompt)

	model := req.Model
	if model == "" {
		model = "mock-model"
	}

	resp := chatResponse{
		ID:     fmt.Sprintf("chatcmpl-mock-%d", time.Now().UnixNano()),
		Object: "chat.completion",
		Model:  model,
		Choices: []chatChoice{{
			Message:      chatMsg{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
		Usage: chatUsage{
			PromptTokens:     len(prompt) / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      (len(prompt) + len(content)) / 4,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return req.Messages[i].Content
		}
	}
	return ""
}

var columnsPattern = regexp.MustCompile(`Available columns: \[([^\]]*)\]`)

// classify inspects the instruction text and returns a canned completion.
// Chart prompts get fenced code over the first two advertised columns,
// enhancement prompts get a rewritten query, and anything else gets a
// plain-text answer.
func classify(prompt string) string {
	switch {
	case strings.Contains(prompt, "Generate only executable JavaScript"):
		x, y := promptColumns(prompt)
		return fmt.Sprintf("```js\nfig = px.bar(df, {x: %q, y: %q, title: \"Mock Chart\"});\n```", x, y)
	case strings.Contains(prompt, "generate a clear, specific prompt"):
		return "Show the distribution of values per category as a bar chart, sorted descending."
	default:
		return "This is a deterministic mock answer."
	}
}

// promptColumns extracts the first two column names from the instruction's
// "Available columns" line, falling back to x/y.
func promptColumns(prompt string) (string, string) {
	m := columnsPattern.FindStringSubmatch(prompt)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return "x", "y"
	}
	var cols []string
	for _, part := range strings.Split(m[1], ",") {
		cols = append(cols, strings.Trim(strings.TrimSpace(part), `"`))
	}
	if len(cols) == 1 {
		return cols[0], cols[0]
	}
	return cols[0], cols[1]
}
