package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/dataset"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		[]string{"product", "revenue"},
		[][]any{
			{"widget", 100.0},
			{"gadget", 250.0},
		},
	)
	if err != nil {
		t.Fatalf("building dataset: %v", err)
	}
	return ds
}

func TestClient_Execute(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr bool
	}{
		{
			name: "successful execution",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(ExecuteResponse{
					Figure: &api.Figure{Data: []api.Trace{{Type: "bar"}}},
				})
			},
		},
		{
			name: "sandbox at capacity (429)",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"at capacity"}`))
			},
			wantErr: true,
		},
		{
			name: "sandbox server error (500)",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal error"}`))
			},
			wantErr: true,
		},
		{
			name: "invalid JSON response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{invalid json`))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient()
			resp, err := client.Execute(context.Background(), server.URL, &ExecuteRequest{
				Fragment: "fig = px.bar(df)",
				Dataset:  EncodeDataset(testDataset(t)),
			})

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if resp.Figure == nil {
				t.Error("expected figure in response")
			}
		})
	}
}

func TestExecutor_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/execute" {
			t.Errorf("path = %q, want /execute", r.URL.Path)
		}

		var req ExecuteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Fragment != "fig = px.bar(df)" {
			t.Errorf("fragment = %q", req.Fragment)
		}
		if req.Dataset == nil || len(req.Dataset.Columns) != 2 {
			t.Errorf("dataset columns = %v, want 2 columns", req.Dataset)
		}
		if req.TimeoutSeconds != 60 {
			t.Errorf("timeout_seconds = %d, want 60", req.TimeoutSeconds)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ExecuteResponse{
			Figure: &api.Figure{Data: []api.Trace{{Type: "bar", Name: "revenue"}}},
		})
	}))
	defer server.Close()

	exec := NewExecutor(&StaticURLAcquirer{URL: server.URL}, 60)
	fig, err := exec.Execute(context.Background(), "fig = px.bar(df)", testDataset(t))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(fig.Data) != 1 || fig.Data[0].Type != "bar" {
		t.Errorf("unexpected figure: %+v", fig)
	}
}

func TestExecutor_FragmentFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ExecuteResponse{
			Error: api.NewExecutionError("no_such is not defined", "fig = px.bar(no_such)"),
		})
	}))
	defer server.Close()

	exec := NewExecutor(&StaticURLAcquirer{URL: server.URL}, 0)
	_, err := exec.Execute(context.Background(), "fig = px.bar(no_such)", testDataset(t))

	var chartErr *api.ChartError
	if !errors.As(err, &chartErr) {
		t.Fatalf("error = %T, want *api.ChartError", err)
	}
	if chartErr.Type != api.ErrorTypeExecution {
		t.Errorf("type = %q, want execution_error", chartErr.Type)
	}
	if chartErr.Fragment != "fig = px.bar(no_such)" {
		t.Errorf("fragment = %q", chartErr.Fragment)
	}
}

func TestExecutor_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ExecuteResponse{})
	}))
	defer server.Close()

	exec := NewExecutor(&StaticURLAcquirer{URL: server.URL}, 0)
	_, err := exec.Execute(context.Background(), "fig = px.bar(df)", testDataset(t))
	if err == nil {
		t.Fatal("expected error for response with neither figure nor error")
	}
	if !strings.Contains(err.Error(), "neither figure nor error") {
		t.Errorf("error = %v", err)
	}
}

func TestExecutor_AcquireFailure(t *testing.T) {
	exec := NewExecutor(failingAcquirer{}, 0)
	_, err := exec.Execute(context.Background(), "fig = px.bar(df)", testDataset(t))
	if err == nil {
		t.Fatal("expected error when acquisition fails")
	}
	if !strings.Contains(err.Error(), "acquire sandbox") {
		t.Errorf("error = %v", err)
	}
}

type failingAcquirer struct{}

func (failingAcquirer) Acquire(context.Context) (string, func(), error) {
	return "", nil, errors.New("no sandboxes available")
}

func TestDatasetRoundTrip(t *testing.T) {
	ds := testDataset(t)

	wire := EncodeDataset(ds)
	data, err := json.Marshal(wire)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decodedWire Dataset
	if err := json.Unmarshal(data, &decodedWire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	decoded, err := DecodeDataset(&decodedWire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.NumRows() != ds.NumRows() {
		t.Errorf("rows = %d, want %d", decoded.NumRows(), ds.NumRows())
	}
	v, err := decoded.Value(1, "revenue")
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != 250.0 {
		t.Errorf("value = %v, want 250", v)
	}
}

func TestDecodeDataset_Nil(t *testing.T) {
	if _, err := DecodeDataset(nil); err == nil {
		t.Error("expected error for nil dataset")
	}
}
