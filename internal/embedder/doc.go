// Package embedder generates vector embeddings for indexed chunks.
//
// The embedder supports multiple providers (OpenAI, Ollama, local) and
// provides batching, caching, and retry handling for production use.
//
// # Basic Usage
//
//	// Create embedder (auto-detects provider from environment)
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	// Generate single embedding
//	result, err := emb.Embed(ctx, "func ParseFile(path string) error { ... }")
//	fmt.Printf("Vector dimension: %d\n", result.Dimension)
//
// # Batch Processing
//
// For indexing, use batch processing:
//
//	texts := []string{chunk1.Text, chunk2.Text, chunk3.Text}
//	embeddings, err := emb.EmbedBatch(ctx, texts)
//	for i, embedding := range embeddings {
//	    // Store embedding for chunk i
//	}
//
// Batching reduces API round trips; a batch of 20 costs roughly the same
// latency as two single requests.
//
// # Provider Selection
//
// The factory selects a provider based on environment variables:
//
//  1. If CODEQUARRY_EMBEDDING_PROVIDER is set → use specified provider
//  2. Else if OPENAI_API_KEY is set → use OpenAI
//  3. Else if OLLAMA_HOST is set → use Ollama
//  4. Else → fallback to local provider (offline mode)
//
// Or configure explicitly:
//
//	emb, err := embedder.New(embedder.Config{
//	    Provider:  "ollama",
//	    BaseURL:   "http://localhost:11434",
//	    Model:     "nomic-embed-text",
//	    CacheSize: 10000,
//	})
//
// Dimensions per provider: OpenAI text-embedding-3-small produces 1536,
// Ollama nomic-embed-text produces 768, the local provider produces 384.
// Vectors of differing dimension never match each other at search time,
// so a database must be indexed and queried with the same provider.
//
// # Caching
//
// All providers share a hash-keyed LRU cache:
//
//	cache := embedder.NewCache(10000)
//	hash := embedder.ComputeHash(text)
//	if emb, ok := cache.Get(hash); ok {
//	    return emb // cache hit
//	}
//
// Re-indexing an unchanged file therefore costs no provider calls.
//
// # Error Handling
//
// Transient provider failures are retried with exponential backoff.
// After retries are exhausted the error wraps ErrProviderFailed:
//
//	embeddings, err := emb.EmbedBatch(ctx, texts)
//	if errors.Is(err, embedder.ErrProviderFailed) {
//	    // API temporarily unavailable, retry later
//	}
//
// The local provider never fails and is suitable for tests and
// offline operation.
package embedder
