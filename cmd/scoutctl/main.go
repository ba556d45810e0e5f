package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arturoeanton/scout/internal/adapter/loader"
	"github.com/arturoeanton/scout/internal/app"
	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/middleware"
	"github.com/arturoeanton/scout/internal/service"
	"github.com/arturoeanton/scout/pkg/config"
)

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "ingest":
		ingestCmd(os.Args[2:])
	case "search":
		searchCmd(os.Args[2:])
	case "token":
		tokenCmd(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: scoutctl <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  ingest  Extract, chunk, embed and store files (pdf, html, markdown, text)")
	fmt.Fprintln(os.Stderr, "  search  Similarity search over stored knowledge")
	fmt.Fprintln(os.Stderr, "  token   Mint an admin JWT for the HTTP API")
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

func build(ctx context.Context, cfg *config.Config) *app.App {
	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	return a
}

func ingestCmd(args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	meta := flags.String("meta", "", `metadata JSON applied to every file, e.g. '{"type":"onboarding"}'`)
	noSplit := flags.Bool("no-split", false, "store each file as a single document")
	flags.Parse(args)

	files := flags.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: scoutctl ingest [--meta=JSON] [--no-split] file1 [file2 ...]")
		os.Exit(2)
	}

	var base domain.Metadata
	if *meta != "" {
		if err := json.Unmarshal([]byte(*meta), &base); err != nil {
			log.Fatalf("--meta: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := build(ctx, loadConfig())
	defer a.Close()

	failed := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed++
			continue
		}
		text, err := loader.Extract(path, data)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed++
			continue
		}

		m := base.Clone()
		m["source"] = filepath.Base(path)

		start := time.Now()
		docs, err := a.Knowledge.Store(ctx, service.StoreRequest{
			Content:  text,
			Metadata: m,
			Split:    !*noSplit,
			Progress: func(stored, total int) {
				fmt.Fprintf(os.Stderr, "\r%s: %d/%d", path, stored, total)
			},
		})
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: stored %d document(s) in %s\n", path, len(docs), time.Since(start).Round(time.Millisecond))
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func searchCmd(args []string) {
	flags := flag.NewFlagSet("search", flag.ExitOnError)
	threshold := flags.Float64("threshold", -2, "minimum cosine similarity (default: configured threshold)")
	count := flags.Int("count", 0, "max results (default: configured count)")
	asJSON := flags.Bool("json", false, "print matches as JSON")
	flags.Parse(args)

	query := strings.Join(flags.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(os.Stderr, "Usage: scoutctl search [--threshold=0.78] [--count=5] [--json] <query>")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := build(ctx, loadConfig())
	defer a.Close()

	opts := service.RetrievalOptions{Count: *count}
	if *threshold >= -1 {
		opts.Threshold = threshold
	}
	matches, err := a.Knowledge.Search(ctx, query, opts)
	if err != nil {
		log.Fatalf("search: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(matches); err != nil {
			log.Fatalf("encode: %v", err)
		}
		return
	}
	if len(matches) == 0 {
		fmt.Println("no matches")
		return
	}
	for i, m := range matches {
		fmt.Printf("%d. [%.1f%%] id=%s\n   %s\n", i+1, m.Similarity*100, m.ID, oneLine(m.Content, 200))
	}
}

func tokenCmd(args []string) {
	flags := flag.NewFlagSet("token", flag.ExitOnError)
	sub := flags.String("sub", "admin", "token subject")
	name := flags.String("name", "", "display name")
	role := flags.String("role", "admin", "role claim")
	ttl := flags.Duration("ttl", 0, "token lifetime (default: JWT_EXPIRATION_HOURS)")
	flags.Parse(args)

	cfg := loadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	expiresIn := time.Duration(cfg.JWTExpiration) * time.Hour
	if *ttl > 0 {
		expiresIn = *ttl
	}

	token, err := middleware.GenerateJWT(domain.AdminContext{Subject: *sub, Name: *name, Role: *role}, middleware.JWTConfig{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		ExpiresIn: expiresIn,
	})
	if err != nil {
		log.Fatalf("token: %v", err)
	}
	fmt.Println(token)
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}
