package store_test

import (
	"context"
	"testing"
	"time"

	"policyrag/internal/data/redisstore"
	"policyrag/internal/data/store"
	"policyrag/internal/domain/policymodel"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testRegistry(t *testing.T) *store.RedisDocumentRegistry {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestDocumentRegistry(redisstore.NewTestStore(client))
}

func pendingDoc(id string, uploaded time.Time) policymodel.Document {
	return policymodel.Document{
		Id:          id,
		Name:        "Access Control Policy",
		ContentType: policymodel.PDF,
		Meta:        policymodel.PolicyMeta{PolicyType: "access", Version: "2.1"},
		Status:      policymodel.DocStatusPending,
		Stage:       policymodel.StageReceived,
		UploadedAt:  uploaded,
	}
}

func TestRedisDocumentRegistry_StageFlow(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	admitted, err := registry.TryStart(ctx, pendingDoc("access-policy", time.Now()))
	if err != nil {
		t.Fatalf("TryStart failed: %v", err)
	}
	if !admitted {
		t.Fatal("Fresh document was refused")
	}

	if err := registry.SetStage(ctx, "access-policy", policymodel.StageParsing); err != nil {
		t.Fatalf("SetStage failed: %v", err)
	}
	doc, found := registry.Get(ctx, "access-policy")
	if !found {
		t.Fatal("Document missing after SetStage")
	}
	if doc.Stage != policymodel.StageParsing || doc.Status != policymodel.DocStatusProcessing {
		t.Errorf("Got stage %s status %s, want parsing/processing", doc.Stage, doc.Status)
	}

	if err := registry.SetCounts(ctx, "access-policy", 12, 40); err != nil {
		t.Fatalf("SetCounts failed: %v", err)
	}
	if err := registry.MarkReady(ctx, "access-policy"); err != nil {
		t.Fatalf("MarkReady failed: %v", err)
	}

	doc, _ = registry.Get(ctx, "access-policy")
	if doc.Status != policymodel.DocStatusReady || doc.Stage != policymodel.StageReady {
		t.Errorf("Got status %s stage %s after MarkReady", doc.Status, doc.Stage)
	}
	if doc.PageCount != 12 || doc.ChunkCount != 40 {
		t.Errorf("Counts not persisted: pages %d chunks %d", doc.PageCount, doc.ChunkCount)
	}
	if !doc.Status.Terminal() {
		t.Error("Ready must be terminal")
	}
}

func TestRedisDocumentRegistry_SingleFlight(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	if admitted, _ := registry.TryStart(ctx, pendingDoc("crypto-policy", time.Now())); !admitted {
		t.Fatal("First TryStart refused")
	}

	// still pending, a second run must be refused
	admitted, err := registry.TryStart(ctx, pendingDoc("crypto-policy", time.Now()))
	if err != nil {
		t.Fatalf("TryStart failed: %v", err)
	}
	if admitted {
		t.Error("Second TryStart admitted while the first run is in flight")
	}

	// a failed run is terminal, re-ingestion is allowed again
	if err := registry.MarkFailed(ctx, "crypto-policy", policymodel.FaultEmbed, "embedder quota exhausted"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	doc, _ := registry.Get(ctx, "crypto-policy")
	if doc.ErrorKind != policymodel.FaultEmbed || doc.ErrorMessage == "" {
		t.Errorf("Failure details not recorded: kind %s msg %q", doc.ErrorKind, doc.ErrorMessage)
	}

	admitted, err = registry.TryStart(ctx, pendingDoc("crypto-policy", time.Now()))
	if err != nil {
		t.Fatalf("TryStart after failure errored: %v", err)
	}
	if !admitted {
		t.Error("Re-ingestion of a failed document was refused")
	}

	// the fresh claim resets the error details on the next MarkReady
	if err := registry.MarkReady(ctx, "crypto-policy"); err != nil {
		t.Fatalf("MarkReady failed: %v", err)
	}
	doc, _ = registry.Get(ctx, "crypto-policy")
	if doc.ErrorKind != "" || doc.ErrorMessage != "" {
		t.Errorf("Error details survived MarkReady: kind %s msg %q", doc.ErrorKind, doc.ErrorMessage)
	}
}

func TestRedisDocumentRegistry_List(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	first := pendingDoc("first-policy", time.Now().Add(-time.Hour))
	second := pendingDoc("second-policy", time.Now())

	if _, err := registry.TryStart(ctx, second); err != nil {
		t.Fatalf("TryStart failed: %v", err)
	}
	if _, err := registry.TryStart(ctx, first); err != nil {
		t.Fatalf("TryStart failed: %v", err)
	}

	docs, err := registry.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Got %d documents, want 2", len(docs))
	}
	if docs[0].Id != "first-policy" || docs[1].Id != "second-policy" {
		t.Errorf("List not ordered by upload time: %s, %s", docs[0].Id, docs[1].Id)
	}
}

func TestRedisDocumentRegistry_GetMissing(t *testing.T) {
	registry := testRegistry(t)

	if _, found := registry.Get(context.Background(), "ghost-policy"); found {
		t.Error("Expected found=false for unknown document")
	}
}
