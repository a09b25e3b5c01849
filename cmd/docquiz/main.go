package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docquiz/internal/chunker"
	"docquiz/internal/config"
	"docquiz/internal/domain"
	"docquiz/internal/embedding"
	"docquiz/internal/pipeline"
	"docquiz/internal/quiz"
	"docquiz/internal/reranker"
	"docquiz/internal/summarizer"
	"docquiz/internal/tui"
	"docquiz/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath      string
		topic        string
		difficulty   string
		numQuestions int
		types        string
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.StringVar(&topic, "topic", "", "Topic to focus the quiz on")
	flag.StringVar(&difficulty, "difficulty", "medium", "Quiz difficulty: easy, medium, hard")
	flag.IntVar(&numQuestions, "n", 5, "Number of questions")
	flag.StringVar(&types, "types", "multiple_choice", "Comma-separated question types")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: docquiz [flags] file1.txt [file2.txt ...]")
		os.Exit(1)
	}

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

	ctx := context.Background()
	total := 0
	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		n, err := pipe.Ingest(ctx, id, string(data))
		if err != nil {
			log.Fatalf("ingest %s: %v", path, err)
		}
		total += n
	}
	log.Printf("ingested %d chunks from %d file(s)", total, len(inputs))

	genCfg := domain.GenerationConfig{
		NumQuestions:  numQuestions,
		Difficulty:    domain.Difficulty(difficulty),
		QuestionTypes: parseTypes(types),
		Topic:         topic,
	}
	chunks, err := pipe.RetrieveContext(ctx, topic, cfg.Retrieval.MaxChunks)
	if err != nil {
		log.Fatalf("retrieve context: %v", err)
	}
	q, err := generator.Generate(ctx, genCfg, chunks)
	if err != nil {
		log.Fatalf("generate quiz: %v", err)
	}

	if _, err := tea.NewProgram(tui.New(q)).Run(); err != nil {
		log.Fatal(err)
	}
}

func parseTypes(s string) []domain.QuestionType {
	var out []domain.QuestionType
	for _, part := range strings.Split(s, ",") {
		t := domain.QuestionType(strings.TrimSpace(part))
		if domain.KnownQuestionType(t) {
			out = append(out, t)
		}
	}
	return out
}
