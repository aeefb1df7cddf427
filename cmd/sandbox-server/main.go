// Command sandbox-server runs the execution half of the remote sandbox
// protocol inside agent-sandbox pods. It accepts sanitized chart fragments
// over HTTP, runs them on an embedded VM, and returns the figure or a
// structured execution error.
//
// Configuration:
//
//	SANDBOX_PORT           - Listen port (default: 8080)
//	SANDBOX_MAX_CONCURRENT - Max concurrent executions (default: 4)
//	SANDBOX_MAX_CALL_STACK - VM call stack depth limit (default: 500)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/sandbox"
	"github.com/figaro-dev/figaro/pkg/sandbox/remote"
)

func main() {
	port := envOr("SANDBOX_PORT", "8080")
	maxConcurrent := envOrInt("SANDBOX_MAX_CONCURRENT", 4)
	maxCallStack := envOrInt("SANDBOX_MAX_CALL_STACK", 0)

	srv := &sandboxServer{
		maxConcurrent: int32(maxConcurrent),
		maxCallStack:  maxCallStack,
		startTime:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /execute", srv.handleExecute)
	mux.HandleFunc("GET /health", srv.handleHealth)

	httpSrv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Long timeout for fragment execution.
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("sandbox server starting", "port", port, "max_concurrent", maxConcurrent)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpSrv.Shutdown(shutdownCtx)
}

type sandboxServer struct {
	maxConcurrent int32
	maxCallStack  int
	currentLoad   atomic.Int32
	startTime     time.Time
}

func (s *sandboxServer) handleExecute(w http.ResponseWriter, r *http.Request) {
	// Capacity check. The gateway treats 429 as "at capacity".
	current := s.currentLoad.Add(1)
	defer s.currentLoad.Add(-1)
	if current > s.maxConcurrent {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{
			"error": fmt.Sprintf("at capacity (%d/%d concurrent executions)", current, s.maxConcurrent),
		})
		return
	}

	var req remote.ExecuteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 10*1024*1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if req.Fragment == "" {
		writeError(w, http.StatusBadRequest, "fragment is required")
		return
	}

	ds, err := remote.DecodeDataset(req.Dataset)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dataset: "+err.Error())
		return
	}

	fragmentPreview := req.Fragment
	if len(fragmentPreview) > 120 {
		fragmentPreview = fragmentPreview[:120] + "..."
	}
	slog.Info("execute request", "fragment", fragmentPreview, "timeout", req.TimeoutSeconds)

	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	exec := sandbox.NewLocal(sandbox.Config{
		Timeout:          timeout,
		MaxCallStackSize: s.maxCallStack,
	})

	start := time.Now()
	fig, execErr := exec.Execute(r.Context(), req.Fragment, ds)
	elapsed := time.Since(start)

	resp := remote.ExecuteResponse{ExecutionTimeMs: elapsed.Milliseconds()}
	if execErr != nil {
		var chartErr *api.ChartError
		if !errors.As(execErr, &chartErr) {
			chartErr = api.NewExecutionError(execErr.Error(), req.Fragment)
		}
		resp.Error = chartErr
		slog.Info("execution failed", "error", chartErr.Message, "duration", elapsed)
	} else {
		resp.Figure = fig
		slog.Info("execution succeeded", "traces", len(fig.Data), "duration", elapsed)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *sandboxServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"load":   s.currentLoad.Load(),
		"uptime": time.Since(s.startTime).String(),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
