package codegen

import (
	"strings"
	"testing"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "javascript tagged fence",
			response: "Here is your chart:\n```javascript\nfig = px.bar(df)\n```\nEnjoy!",
			want:     "fig = px.bar(df)",
		},
		{
			name:     "js tagged fence",
			response: "```js\nfig = px.line(df, {x: 'a', y: 'b'})\n```",
			want:     "fig = px.line(df, {x: 'a', y: 'b'})",
		},
		{
			name:     "untagged fence",
			response: "Sure:\n```\nfig = px.pie(df)\n```",
			want:     "fig = px.pie(df)",
		},
		{
			name:     "no fence returns trimmed response",
			response: "  fig = px.bar(df)  \n",
			want:     "fig = px.bar(df)",
		},
		{
			// The js tag must not match inside "```json"; the block falls
			// through to the untagged-fence path, which keeps the tag word.
			name:     "js tag does not match json fence",
			response: "```json\n{\"not\": \"code\"}\n```",
			want:     "json\n{\"not\": \"code\"}",
		},
		{
			name:     "json fence followed by js fence",
			response: "```json\n{}\n```\n```js\nfig = px.bar(df)\n```",
			want:     "fig = px.bar(df)",
		},
		{
			name:     "first of multiple blocks wins",
			response: "```js\nfig = px.bar(df)\n```\n```js\nfig = px.pie(df)\n```",
			want:     "fig = px.bar(df)",
		},
		{
			name:     "unterminated fence takes the rest",
			response: "```js\nfig = px.bar(df)",
			want:     "fig = px.bar(df)",
		},
		{
			name:     "empty response",
			response: "",
			want:     "",
		},
		{
			name:     "tagged fence preferred over earlier untagged",
			response: "```\nnot the code\n```\n```js\nfig = px.bar(df)\n```",
			want:     "fig = px.bar(df)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCode(tt.response); got != tt.want {
				t.Errorf("ExtractCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "import line and show call",
			fragment: "import pandas as pd\nfig = px.bar(df)\nfig.show()",
			want:     "\nfig = px.bar(df)\n",
		},
		{
			name:     "from import",
			fragment: "from plotly import express\nfig = px.bar(df)",
			want:     "\nfig = px.bar(df)",
		},
		{
			name:     "require call",
			fragment: "require('plotly')\nfig = px.bar(df)",
			want:     "\nfig = px.bar(df)",
		},
		{
			name:     "indented import stripped",
			fragment: "  import x\nfig = px.bar(df)",
			want:     "\nfig = px.bar(df)",
		},
		{
			name:     "show call mid-line",
			fragment: "fig = px.bar(df); fig.show()",
			want:     "fig = px.bar(df); ",
		},
		{
			name:     "clean fragment untouched",
			fragment: "sorted = df.sort_values('revenue', false)\nfig = px.bar(sorted)",
			want:     "sorted = df.sort_values('revenue', false)\nfig = px.bar(sorted)",
		},
		{
			name:     "line positions preserved",
			fragment: "import a\nimport b\nfig = px.bar(df)",
			want:     "\n\nfig = px.bar(df)",
		},
		{
			name:     "empty fragment",
			fragment: "",
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.fragment); got != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	fragments := []string{
		"import pandas as pd\nfig = px.bar(df)\nfig.show()",
		"fig = px.bar(df)",
		"",
		"from x import y\nrequire('z')\nfig.show()\nfig = go.Figure()",
	}
	for _, f := range fragments {
		once := Sanitize(f)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", f, once, twice)
		}
	}
}

func TestBuildChartPrompt(t *testing.T) {
	prompt := BuildChartPrompt("show top 5 by revenue", []string{"product", "revenue"})

	for _, want := range []string{
		"show top 5 by revenue",
		`["product", "revenue"]`,
		"'fig'",
		"'df'",
		"fig.show()",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildChartPrompt_NoColumns(t *testing.T) {
	prompt := BuildChartPrompt("plot something", nil)
	if !strings.Contains(prompt, "Available columns: []") {
		t.Errorf("expected empty column list, got:\n%s", prompt)
	}
}

func TestBuildEnhancedPrompt(t *testing.T) {
	prompt := BuildEnhancedPrompt("revenue stuff", []string{"product", "revenue"})
	if !strings.Contains(prompt, "revenue stuff") {
		t.Errorf("prompt missing user query:\n%s", prompt)
	}
	if !strings.Contains(prompt, `["product", "revenue"]`) {
		t.Errorf("prompt missing column list:\n%s", prompt)
	}
}

func TestExtractThenSanitize(t *testing.T) {
	response := "Here you go:\n```js\nimport plotly from 'plotly';\nfig = px.bar(df, {x: 'product', y: 'revenue'})\nfig.show()\n```"
	got := Sanitize(ExtractCode(response))
	want := "\nfig = px.bar(df, {x: 'product', y: 'revenue'})\n"
	if got != want {
		t.Errorf("pipeline output = %q, want %q", got, want)
	}
}
