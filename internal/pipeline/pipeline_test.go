package pipeline

import (
	"context"
	"testing"
	"time"

	"docquiz/internal/chunker"
	"docquiz/internal/embedding"
	"docquiz/internal/reranker"
	"docquiz/internal/vectorstore"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	c, err := chunker.New(200, 0)
	if err != nil {
		t.Fatalf("chunker: %v", err)
	}
	eng := embedding.NewEngine(nil, 128, time.Second)
	return New(c, eng, vectorstore.NewMemoryStore(), reranker.New())
}

const (
	bioDoc = "Photosynthesis converts light energy into chemical energy inside chloroplasts. " +
		"Chlorophyll absorbs mostly red and blue light while reflecting green. " +
		"The light reactions produce ATP and NADPH which drive the Calvin cycle."
	historyDoc = "The Congress of Vienna reshaped Europe after the Napoleonic Wars ended. " +
		"Diplomats redrew borders to restore a balance of power between monarchies. " +
		"The settlement held for decades and delayed further continental wars."
)

func TestIngest_CountsAndStats(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	n, err := p.Ingest(ctx, "bio", bioDoc)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n == 0 {
		t.Fatal("Ingest stored no chunks")
	}
	if _, err := p.Ingest(ctx, "history", historyDoc); err != nil {
		t.Fatalf("Ingest second doc: %v", err)
	}
	stats := p.Stats()
	if stats.Documents != 2 {
		t.Errorf("Documents = %d, want 2", stats.Documents)
	}
	if stats.Chunks < 2 {
		t.Errorf("Chunks = %d, want at least 2", stats.Chunks)
	}
}

func TestIngest_DuplicateContentSkipped(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	first, err := p.Ingest(ctx, "bio", bioDoc)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	again, err := p.Ingest(ctx, "bio-copy", bioDoc)
	if err != nil {
		t.Fatalf("duplicate Ingest: %v", err)
	}
	if again != 0 {
		t.Errorf("duplicate Ingest stored %d chunks, want 0", again)
	}
	if p.Stats().Chunks != first {
		t.Errorf("store grew on duplicate ingest")
	}
}

func TestIngest_EmptyDocument(t *testing.T) {
	p := newTestPipeline(t)
	n, err := p.Ingest(context.Background(), "empty", "   ")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 0 {
		t.Errorf("stored %d chunks for empty document", n)
	}
}

func TestRetrieveContext_TopicRelevance(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	if _, err := p.Ingest(ctx, "bio", bioDoc); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := p.Ingest(ctx, "history", historyDoc); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	chunks, err := p.RetrieveContext(ctx, "photosynthesis chlorophyll light", 1)
	if err != nil {
		t.Fatalf("RetrieveContext: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].DocumentID != "bio" {
		t.Errorf("top chunk from %s, want bio", chunks[0].DocumentID)
	}
}

func TestRetrieveContext_EmptyTopicDocumentOrder(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	p.Ingest(ctx, "bio", bioDoc)
	p.Ingest(ctx, "history", historyDoc)

	chunks, err := p.RetrieveContext(ctx, "  ", 3)
	if err != nil {
		t.Fatalf("RetrieveContext: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("empty topic returned no chunks")
	}
	if chunks[0].DocumentID != "bio" || chunks[0].Position != 0 {
		t.Errorf("first chunk = %s:%d, want bio:0", chunks[0].DocumentID, chunks[0].Position)
	}
}

func TestRetrieveContext_EmptyStore(t *testing.T) {
	p := newTestPipeline(t)
	chunks, err := p.RetrieveContext(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("RetrieveContext: %v", err)
	}
	if chunks != nil {
		t.Errorf("got %d chunks from empty store", len(chunks))
	}
}

func TestRetrieveContext_MaxChunksBound(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	p.Ingest(ctx, "bio", bioDoc)
	p.Ingest(ctx, "history", historyDoc)

	chunks, err := p.RetrieveContext(ctx, "europe", 2)
	if err != nil {
		t.Fatalf("RetrieveContext: %v", err)
	}
	if len(chunks) > 2 {
		t.Errorf("got %d chunks, want at most 2", len(chunks))
	}
}

func TestDeleteDocument_AllowsReingest(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	n, _ := p.Ingest(ctx, "bio", bioDoc)
	removed := p.DeleteDocument("bio")
	if removed != n {
		t.Errorf("removed %d chunks, want %d", removed, n)
	}
	if p.Stats().Chunks != 0 {
		t.Errorf("store not empty after delete")
	}
	again, err := p.Ingest(ctx, "bio", bioDoc)
	if err != nil {
		t.Fatalf("re-Ingest: %v", err)
	}
	if again != n {
		t.Errorf("re-ingest stored %d chunks, want %d", again, n)
	}
}

func TestClear(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()
	p.Ingest(ctx, "bio", bioDoc)
	p.Clear()
	if stats := p.Stats(); stats.Chunks != 0 || stats.Documents != 0 {
		t.Errorf("Stats after Clear = %+v", stats)
	}
	if n, err := p.Ingest(ctx, "bio", bioDoc); err != nil || n == 0 {
		t.Errorf("ingest after Clear: n=%d err=%v", n, err)
	}
}
