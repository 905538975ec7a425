// Package embedder defines the text embedding boundary.
//
// The semantic memory store treats embedding as an opaque function
// from text to a fixed-length vector; any backend that satisfies
// Provider can be plugged in.
package embedder

import "context"

// Provider converts text into fixed-length embedding vectors.
//
// Implementations must be deterministic for identical input within a
// session and must produce vectors of a single fixed length.
type Provider interface {
	// Embed converts one text into its embedding vector.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch converts several texts in one call. Results are in
	// input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the length of vectors this provider produces.
	// May return 0 if the length is only known after the first call.
	Dimensions() int

	// Close releases provider resources.
	Close() error
}
