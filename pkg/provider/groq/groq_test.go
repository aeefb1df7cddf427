package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/figaro-dev/figaro/pkg/provider/openaicompat"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNew_Defaults(t *testing.T) {
	p, err := New(Config{APIKey: "gsk-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if p.Name() != "groq" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestGenerate_DeterministicTemperature(t *testing.T) {
	var gotReq openaicompat.ChatCompletionRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		resp := openaicompat.ChatCompletionResponse{
			Choices: []openaicompat.ChatChoice{
				{Message: openaicompat.ChatMessage{Role: "assistant", Content: "fig = px.line(df);"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "gsk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	out, err := p.Generate(context.Background(), "plot it")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "fig = px.line(df);" {
		t.Errorf("output = %q", out)
	}
	if gotReq.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", gotReq.Temperature)
	}
	if gotReq.Model != DefaultModel {
		t.Errorf("model = %q, want default %q", gotReq.Model, DefaultModel)
	}
	if gotAuth != "Bearer gsk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}
