// Command server runs the figaro chart-generation API.
//
// Configuration is loaded from a YAML file (see pkg/config for discovery
// order) with FIGARO_* environment overrides. A .env file in the working
// directory is loaded first when present, so GROQ_API_KEY can live there
// during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"

	"github.com/figaro-dev/figaro/pkg/auth"
	"github.com/figaro-dev/figaro/pkg/auth/apikey"
	"github.com/figaro-dev/figaro/pkg/auth/jwt"
	"github.com/figaro-dev/figaro/pkg/auth/noop"
	"github.com/figaro-dev/figaro/pkg/config"
	"github.com/figaro-dev/figaro/pkg/pipeline"
	"github.com/figaro-dev/figaro/pkg/provider"
	"github.com/figaro-dev/figaro/pkg/provider/groq"
	"github.com/figaro-dev/figaro/pkg/provider/openaicompat"
	"github.com/figaro-dev/figaro/pkg/qa"
	"github.com/figaro-dev/figaro/pkg/sandbox"
	"github.com/figaro-dev/figaro/pkg/sandbox/remote"
	"github.com/figaro-dev/figaro/pkg/sandbox/remote/kubernetes"
	"github.com/figaro-dev/figaro/pkg/session"
	sessionmemory "github.com/figaro-dev/figaro/pkg/session/memory"
	sessionpostgres "github.com/figaro-dev/figaro/pkg/session/postgres"
	transporthttp "github.com/figaro-dev/figaro/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	gen, err := buildGenerator(cfg)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	defer gen.Close()

	exec, err := buildExecutor(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating executor: %w", err)
	}

	store, err := buildSessionStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	chain, err := buildAuthChain(cfg)
	if err != nil {
		return fmt.Errorf("creating auth chain: %w", err)
	}

	p := pipeline.New(gen, exec, logger)
	adapterCfg := transporthttp.DefaultConfig()
	adapterCfg.Addr = fmt.Sprintf(":%d", cfg.Server.Port)
	adapterCfg.MaxBodySize = cfg.Server.MaxBodySize
	adapter := transporthttp.NewAdapter(p, qa.New(gen), store, adapterCfg)

	middleware := []func(http.Handler) http.Handler{}
	if cfg.Observability.Metrics.Enabled {
		middleware = append(middleware, metricsRoute(cfg.Observability.Metrics.Path))
	}
	middleware = append(middleware, auth.Middleware(chain, auth.NewInProcessLimiter(nil, 0), auth.DefaultBypassEndpoints))

	srv := transporthttp.NewServer(adapter,
		transporthttp.WithAddr(adapterCfg.Addr),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithReadTimeout(cfg.Server.ReadTimeout),
		transporthttp.WithWriteTimeout(cfg.Server.WriteTimeout),
		transporthttp.WithLogger(logger),
		transporthttp.WithMiddleware(middleware...),
	)

	logger.Info("figaro starting",
		"port", cfg.Server.Port,
		"provider", cfg.Generator.Provider,
		"model", cfg.Generator.Model,
		"sandbox", cfg.Sandbox.Mode,
		"sessions", cfg.Session.Type,
		"auth", cfg.Auth.Type,
	)
	return srv.ListenAndServe()
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

func buildExecutor(cfg *config.Config, logger *slog.Logger) (sandbox.Executor, error) {
	switch cfg.Sandbox.Mode {
	case "local":
		return sandbox.NewLocal(sandbox.Config{
			Timeout:          cfg.Sandbox.Timeout,
			MaxCallStackSize: cfg.Sandbox.MaxCallStack,
		}), nil
	case "remote":
		acquirer, err := buildAcquirer(cfg, logger)
		if err != nil {
			return nil, err
		}
		return remote.NewExecutor(acquirer, cfg.Sandbox.Remote.ExecutionTimeout), nil
	default:
		return nil, fmt.Errorf("unknown sandbox mode %q", cfg.Sandbox.Mode)
	}
}

func buildAcquirer(cfg *config.Config, logger *slog.Logger) (remote.Acquirer, error) {
	if cfg.Sandbox.Remote.URL != "" {
		return &remote.StaticURLAcquirer{URL: cfg.Sandbox.Remote.URL}, nil
	}

	restCfg, err := ctrlconfig.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("loading kubeconfig: %w", err)
	}
	scheme, err := kubernetes.NewScheme()
	if err != nil {
		return nil, err
	}
	c, err := client.New(restCfg, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}

	logger.Info("sandbox claims enabled",
		"template", cfg.Sandbox.Remote.Template,
		"namespace", cfg.Sandbox.Remote.Namespace,
	)
	timeout := time.Duration(cfg.Sandbox.Remote.ClaimTimeout) * time.Second
	return kubernetes.NewClaimAcquirer(c, cfg.Sandbox.Remote.Template, cfg.Sandbox.Remote.Namespace, timeout), nil
}

func buildSessionStore(cfg *config.Config, logger *slog.Logger) (session.Store, error) {
	switch cfg.Session.Type {
	case "memory":
		logger.Info("session storage enabled", "type", "memory", "max_size", cfg.Session.MaxSize)
		return sessionmemory.New(cfg.Session.MaxSize), nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		store, err := sessionpostgres.New(ctx, sessionpostgres.Config{
			DSN:            cfg.Session.Postgres.DSN,
			MaxConns:       cfg.Session.Postgres.MaxConns,
			MigrateOnStart: cfg.Session.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("session storage enabled", "type", "postgres")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Type)
	}
}

func buildAuthChain(cfg *config.Config) (*auth.Chain, error) {
	switch cfg.Auth.Type {
	case "none":
		return &auth.Chain{Authenticators: []auth.Authenticator{&noop.Authenticator{}}}, nil
	case "apikey":
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.Auth.APIKeys))
		for _, k := range cfg.Auth.APIKeys {
			entries = append(entries, apikey.RawKeyEntry{
				Key:      k.Key,
				Identity: auth.Identity{Subject: k.Subject, ServiceTier: "default"},
			})
		}
		return &auth.Chain{
			Authenticators:  []auth.Authenticator{apikey.New(entries)},
			DefaultDecision: auth.No,
		}, nil
	case "jwt":
		a := jwt.New(jwt.Config{
			Issuer:   cfg.Auth.JWT.Issuer,
			Audience: cfg.Auth.JWT.Audience,
			JWKSURL:  cfg.Auth.JWT.JWKSURL,
		})
		return &auth.Chain{
			Authenticators:  []auth.Authenticator{a},
			DefaultDecision: auth.No,
		}, nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Auth.Type)
	}
}

// metricsRoute serves the Prometheus endpoint ahead of the API routes.
func metricsRoute(path string) func(http.Handler) http.Handler {
	handler := promhttp.Handler()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == path {
				handler.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
