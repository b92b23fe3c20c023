package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/schema"
	"github.com/sevigo/goframe/vectorstores"
	"github.com/sevigo/goframe/vectorstores/qdrant"
)

//go:generate mockgen -destination=../../mocks/mock_vectorstore.go -package=mocks github.com/driftaldev/redline/internal/storage VectorStore

// VectorStore is the vector database behind semantic code search. One
// collection holds the embedded chunks of one repository.
type VectorStore interface {
	// AddDocuments embeds and stores documents into a collection.
	AddDocuments(ctx context.Context, collectionName string, docs []schema.Document) error

	// SimilaritySearch finds the most relevant documents for a query.
	SimilaritySearch(ctx context.Context, collectionName, query string, numDocs int) ([]schema.Document, error)

	// DeleteCollection removes a collection and all its data.
	DeleteCollection(ctx context.Context, collectionName string) error
}

// qdrantStore talks to Qdrant through goframe with one client per
// collection, created lazily and reused across calls.
type qdrantStore struct {
	host     string
	embedder embeddings.Embedder
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[string]vectorstores.VectorStore
}

// NewQdrantVectorStore creates a Qdrant-backed vector store.
func NewQdrantVectorStore(host string, embedder embeddings.Embedder, logger *slog.Logger) VectorStore {
	return &qdrantStore{
		host:     host,
		embedder: embedder,
		logger:   logger,
		clients:  make(map[string]vectorstores.VectorStore),
	}
}

// collection returns the client for one collection, building it on first use.
func (q *qdrantStore) collection(name string) (vectorstores.VectorStore, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if client, ok := q.clients[name]; ok {
		return client, nil
	}

	client, err := qdrant.New(
		qdrant.WithHost(q.host),
		qdrant.WithEmbedder(q.embedder),
		qdrant.WithCollectionName(name),
		qdrant.WithLogger(q.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client for collection %s: %w", name, err)
	}
	q.clients[name] = client
	return client, nil
}

func (q *qdrantStore) AddDocuments(ctx context.Context, collectionName string, docs []schema.Document) error {
	client, err := q.collection(collectionName)
	if err != nil {
		return err
	}
	if _, err := client.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("adding %d documents to collection %s: %w", len(docs), collectionName, err)
	}
	return nil
}

func (q *qdrantStore) SimilaritySearch(ctx context.Context, collectionName, query string, numDocs int) ([]schema.Document, error) {
	client, err := q.collection(collectionName)
	if err != nil {
		return nil, err
	}
	docs, err := client.SimilaritySearch(ctx, query, numDocs)
	if err != nil {
		return nil, fmt.Errorf("searching collection %s: %w", collectionName, err)
	}
	return docs, nil
}

func (q *qdrantStore) DeleteCollection(ctx context.Context, collectionName string) error {
	client, err := q.collection(collectionName)
	if err != nil {
		return err
	}
	if err := client.DeleteCollection(ctx, collectionName); err != nil {
		return fmt.Errorf("deleting collection %s: %w", collectionName, err)
	}

	// The cached client is bound to the deleted collection; drop it so a
	// later re-index starts fresh.
	q.mu.Lock()
	delete(q.clients, collectionName)
	q.mu.Unlock()
	return nil
}
