package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/serverforge/orchestrator/internal/api"
	"github.com/serverforge/orchestrator/internal/compliance"
	"github.com/serverforge/orchestrator/internal/config"
	"github.com/serverforge/orchestrator/internal/db"
	"github.com/serverforge/orchestrator/internal/emit"
	"github.com/serverforge/orchestrator/internal/interpret"
	"github.com/serverforge/orchestrator/internal/job"
	"github.com/serverforge/orchestrator/internal/pack"
	"github.com/serverforge/orchestrator/internal/pipeline"
	"github.com/serverforge/orchestrator/internal/registry"
	"github.com/serverforge/orchestrator/internal/toolrun"
	"github.com/serverforge/orchestrator/internal/workspace"
)

func main() {
	submitDesc := flag.String("submit", "", "Run one description through the pipeline and print the result")
	dataDir := flag.String("data", "", "Override data directory (default: $DATA_DIR or ./data)")
	workspaceDir := flag.String("workspace", "", "Override workspace directory (default: $WORKSPACE_DIR or ./workspace)")
	rulesPath := flag.String("rules", "", "Path to a YAML severity rules file (default: $RULES_PATH)")
	flag.Parse()

	cfg := config.Load()
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *workspaceDir != "" {
		cfg.WorkspaceDir = *workspaceDir
	}
	if *rulesPath != "" {
		cfg.RulesPath = *rulesPath
	}

	if *submitDesc != "" {
		os.Exit(runOnce(cfg, *submitDesc))
	}

	runServer(cfg)
}

// runOnce drives a single description through the pipeline synchronously
// and prints the terminal job record as JSON. It uses in-memory stores so
// a one-shot run leaves nothing behind but the artifact and the package.
func runOnce(cfg *config.Config, description string) int {
	engine, cleanup, err := buildEngine(cfg, job.NewMemoryStore(), registry.NewMemoryRegistry())
	if err != nil {
		log.Printf("Setup error: %v", err)
		return 2
	}
	defer cleanup()

	rec, err := engine.RunSync(context.Background(), description)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyDescription) {
			fmt.Fprintln(os.Stderr, "Error: description must not be empty")
			return 1
		}
		log.Printf("Pipeline error: %v", err)
		return 2
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Printf("Encode error: %v", err)
		return 2
	}
	fmt.Println(string(out))

	if rec.Status == job.StatusFailed {
		return 1
	}
	return 0
}

func runServer(cfg *config.Config) {
	log.Printf("Starting forge node: %s", cfg.NodeID)
	log.Printf("HTTP port: %d", cfg.HTTPPort)

	kv, err := db.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer kv.Close()

	store := job.NewBadgerStore(kv)
	reg := registry.NewBadgerRegistry(kv)

	engine, cleanup, err := buildEngine(cfg, store, reg)
	if err != nil {
		log.Fatalf("Setup error: %v", err)
	}
	defer cleanup()

	router := api.NewRouter(cfg, store, engine, reg)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	engine.Wait()
	log.Println("Server stopped")
}

// buildEngine assembles the pipeline collaborators from config. The
// returned cleanup closes anything that holds external resources.
func buildEngine(cfg *config.Config, store job.Store, reg registry.Registry) (*pipeline.Engine, func(), error) {
	ws, err := workspace.New(cfg.WorkspaceDir)
	if err != nil {
		return nil, nil, fmt.Errorf("create workspace: %w", err)
	}

	var images *pack.ImageBuilder
	if cfg.DockerBuild {
		images, err = pack.NewImageBuilder(cfg.ToolTimeout)
		if err != nil {
			log.Printf("Docker not available, packaging tarballs only: %v", err)
		} else if err := images.Ping(context.Background()); err != nil {
			log.Printf("Docker not available, packaging tarballs only: %v", err)
			images.Close()
			images = nil
		}
	}

	packager, err := pack.NewPackager(filepath.Join(cfg.WorkspaceDir, "dist"), images)
	if err != nil {
		return nil, nil, fmt.Errorf("create packager: %w", err)
	}
	if cfg.NpmInstall {
		packager.SetInvoker(toolrun.NewInvoker(cfg.ToolTimeout))
	}

	rules, err := compliance.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load rules: %w", err)
	}
	if cfg.RulesPath != "" {
		log.Printf("Loaded severity rules from %s", cfg.RulesPath)
	}

	engine := pipeline.NewEngine(store, interpret.NewHeuristic(), emit.NewGenerator(ws, cfg.GitInit), packager, reg, compliance.NewClassifier(rules))

	cleanup := func() {
		engine.Wait()
		if images != nil {
			images.Close()
		}
	}
	return engine, cleanup, nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Serverforge - Service description to packaged server pipeline\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Modes:\n")
		fmt.Fprintf(os.Stderr, "  Server (default): Run the HTTP API and job pipeline\n")
		fmt.Fprintf(os.Stderr, "  One-shot: Build a single service and print the job record\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                        # Run the server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --submit \"a weather lookup service\"    # One-shot build\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --rules rules.yaml --data /var/forge   # Custom rules and data dir\n", os.Args[0])
	}
}
