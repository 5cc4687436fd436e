// Package scoring holds the pure similarity functions used by the matching engine:
// per-factor scores, cosine similarity and adaptive weight redistribution.
// Nothing here does I/O or keeps state.
package scoring
