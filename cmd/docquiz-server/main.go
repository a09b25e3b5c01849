package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"docquiz/internal/chunker"
	"docquiz/internal/config"
	"docquiz/internal/embedding"
	"docquiz/internal/pipeline"
	"docquiz/internal/quiz"
	"docquiz/internal/reranker"
	"docquiz/internal/server"
	"docquiz/internal/store"
	"docquiz/internal/summarizer"
	"docquiz/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ch, err := chunker.New(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		log.Fatalf("chunker init failed: %v", err)
	}

	var remote embedding.Encoder
	if key := os.Getenv(cfg.Embedder.APIKeyEnv); key != "" {
		enc, err := embedding.NewOpenAIEncoder(embedding.OpenAIConfig{
			APIKey:  key,
			BaseURL: cfg.Embedder.BaseURL,
			Model:   cfg.Embedder.Model,
		})
		if err != nil {
			log.Fatalf("embedder init failed: %v", err)
		}
		remote = enc
	} else {
		log.Printf("no %s set, embeddings use the local fallback encoder", cfg.Embedder.APIKeyEnv)
	}
	engine := embedding.NewEngine(remote, cfg.Embedder.Dimension,
		time.Duration(cfg.Embedder.TimeoutSecs)*time.Second)

	pipe := pipeline.New(ch, engine, vectorstore.NewMemoryStore(), reranker.New(),
		pipeline.WithOversample(cfg.Retrieval.Oversample))

	genKey := os.Getenv(cfg.Generator.APIKeyEnv)
	if genKey == "" {
		log.Fatalf("generation requires %s to be set", cfg.Generator.APIKeyEnv)
	}
	backend, err := quiz.NewOpenAIBackend(quiz.OpenAIBackendConfig{
		APIKey:  genKey,
		BaseURL: cfg.Generator.BaseURL,
		Model:   cfg.Generator.Model,
	})
	if err != nil {
		log.Fatalf("backend init failed: %v", err)
	}
	generator := quiz.NewGenerator(backend, summarizer.New(),
		quiz.WithTimeout(time.Duration(cfg.Generator.TimeoutSecs)*time.Second),
		quiz.WithContextBudget(cfg.Generator.ContextChars))

	quizzes, err := store.NewSQLiteStore(cfg.Store.DSN)
	if err != nil {
		log.Fatalf("open quiz store: %v", err)
	}
	defer quizzes.Close()

	srv := server.New(pipe, generator, quizzes, summarizer.New(), cfg.Retrieval.MaxChunks)
	srv.SetEmbeddingStatus(engine)

	log.Printf("docquiz server listening on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Router()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
