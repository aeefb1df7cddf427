// Command mcp-server exposes the figaro pipeline as MCP tools so agent
// frameworks can generate charts and answer data questions over the Model
// Context Protocol. Tools: "generate_chart", "enhance_prompt", and
// "answer_question".
//
// Configuration follows pkg/config (YAML file plus FIGARO_* overrides);
// the sandbox always runs locally.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/figaro-dev/figaro/pkg/config"
	"github.com/figaro-dev/figaro/pkg/dataset"
	"github.com/figaro-dev/figaro/pkg/pipeline"
	"github.com/figaro-dev/figaro/pkg/provider"
	"github.com/figaro-dev/figaro/pkg/provider/groq"
	"github.com/figaro-dev/figaro/pkg/provider/openaicompat"
	"github.com/figaro-dev/figaro/pkg/qa"
	"github.com/figaro-dev/figaro/pkg/sandbox"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		log.Fatalf("creating generator: %v", err)
	}
	defer gen.Close()

	exec := sandbox.NewLocal(sandbox.Config{
		Timeout:          cfg.Sandbox.Timeout,
		MaxCallStackSize: cfg.Sandbox.MaxCallStack,
	})
	p := pipeline.New(gen, exec, nil)
	answerer := qa.New(gen)

	server := mcp.NewServer(
		&mcp.Implementation{Name: "figaro-mcp", Version: "v1.0.0"},
		nil,
	)

	type ChartInput struct {
		CSV   string `json:"csv" jsonschema_description:"Dataset as raw CSV with a header row"`
		Query string `json:"query" jsonschema_description:"Natural-language description of the chart to create"`
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_chart",
		Description: "Generates a plotly figure from a CSV dataset and a natural-language query",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChartInput) (*mcp.CallToolResult, struct{}, error) {
		ds, err := dataset.ReadCSV(strings.NewReader(input.CSV))
		if err != nil {
			return nil, struct{}{}, fmt.Errorf("invalid CSV: %w", err)
		}
		fig, err := p.GenerateChart(ctx, input.Query, ds)
		if err != nil {
			return nil, struct{}{}, err
		}
		b, err := json.Marshal(fig)
		if err != nil {
			return nil, struct{}{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
		}, struct{}{}, nil
	})

	type EnhanceInput struct {
		CSV   string `json:"csv" jsonschema_description:"Dataset as raw CSV with a header row"`
		Query string `json:"query" jsonschema_description:"The query to rewrite into a better-specified prompt"`
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "enhance_prompt",
		Description: "Rewrites a vague chart query into a specific analytical prompt over the dataset's columns",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input EnhanceInput) (*mcp.CallToolResult, struct{}, error) {
		ds, err := dataset.ReadCSV(strings.NewReader(input.CSV))
		if err != nil {
			return nil, struct{}{}, fmt.Errorf("invalid CSV: %w", err)
		}
		prompt, err := p.EnhancePrompt(ctx, input.Query, ds)
		if err != nil {
			return nil, struct{}{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: prompt}},
		}, struct{}{}, nil
	})

	type AnswerInput struct {
		Question  string `json:"question" jsonschema_description:"The question to answer"`
		TableName string `json:"table_name,omitempty" jsonschema_description:"Optional table name used for context"`
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "answer_question",
		Description: "Answers a data question in free text",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AnswerInput) (*mcp.CallToolResult, struct{}, error) {
		answer, err := answerer.Answer(ctx, input.Question, input.TableName)
		if err != nil {
			return nil, struct{}{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: answer}},
		}, struct{}{}, nil
	})

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)

	httpMux := http.NewServeMux()
	httpMux.Handle("/mcp", handler)
	httpMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	log.Printf("figaro MCP server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, httpMux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func buildGenerator(cfg *config.Config) (provider.Generator, error) {
	switch cfg.Generator.Provider {
	case "groq":
		return groq.New(groq.Config{
			APIKey:  cfg.Generator.APIKey,
			Model:   cfg.Generator.Model,
			BaseURL: cfg.Generator.BaseURL,
			Timeout: cfg.Generator.Timeout,
		})
	case "openai_compat":
		return openaicompat.NewClient(openaicompat.Config{
			BaseURL: cfg.Generator.BaseURL,
			APIKey:  cfg.Generator.APIKey,
			Model:   cfg.Generator.Model,
			Timeout: cfg.Generator.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Generator.Provider)
	}
}
