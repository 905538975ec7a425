package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/Arnaud58/llamakeeper-go/pkg/embedder"
	"github.com/Arnaud58/llamakeeper-go/pkg/storage"
)

// Store is the semantic memory store for a single agent.
//
// It owns the agent's memories, retrieves them by cosine similarity
// weighted by importance, updates importance, and evicts the least
// valuable non-long-term memories when the store grows past its
// capacity. A memory is long-term exactly when its current importance
// is at or above the configured threshold; long-term memories are
// never removed by capacity eviction.
//
// The store is safe for concurrent use. Mutations are serialized;
// Retrieve and Summarize take a read lock and may run concurrently.
// Embeddings are computed before the lock is taken, so a slow embedder
// does not block other callers.
type Store struct {
	// agentID identifies the owning agent.
	agentID string

	// embedder converts text to vectors for storage and querying.
	embedder embedder.Provider

	// journal mirrors mutations to durable storage (nil if not configured).
	journal storage.RecordStore

	// node generates unique memory IDs.
	node *snowflake.Node

	// maxMemories bounds the main collection, except when every
	// remaining candidate is long-term.
	maxMemories int

	// longTermThreshold is the importance at which a memory becomes long-term.
	longTermThreshold float64

	// dimensions is the fixed embedding length. Zero until the first
	// embedding pins it, if the embedder does not declare one.
	dimensions int

	// mu guards memories, longTerm, and dimensions.
	mu sync.RWMutex

	// memories is the main collection, keyed by memory ID.
	memories map[int64]*Memory

	// longTerm is the derived protected subset, kept consistent with
	// each memory's current importance under mu.
	longTerm map[int64]struct{}
}

// NewStore creates a standalone semantic memory store for one agent.
//
// The store fails fast on invalid configuration: the embedder is
// required, MaxMemories must be positive, and LongTermThreshold must
// lie in [0,1]. Most applications construct stores through a Manager
// instead, which shares the embedder across agents.
func NewStore(agentID string, provider embedder.Provider, cfg MemoryConfig) (*Store, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewMemoryError("NewStore", err)
	}
	return newStore(agentID, provider, nil, node, cfg)
}

// newStore is the shared constructor used by NewStore and Manager.
func newStore(agentID string, provider embedder.Provider, journal storage.RecordStore, node *snowflake.Node, cfg MemoryConfig) (*Store, error) {
	cfg.applyDefaults()
	if provider == nil {
		return nil, NewMemoryError("NewStore", fmt.Errorf("%w: embedder is required", ErrInvalidConfig))
	}
	if cfg.MaxMemories <= 0 {
		return nil, NewMemoryError("NewStore", fmt.Errorf("%w: max memories must be positive", ErrInvalidConfig))
	}
	if cfg.LongTermThreshold < 0 || cfg.LongTermThreshold > 1 {
		return nil, NewMemoryError("NewStore", fmt.Errorf("%w: long-term threshold must be in [0,1]", ErrInvalidConfig))
	}

	return &Store{
		agentID:           agentID,
		embedder:          provider,
		journal:           journal,
		node:              node,
		maxMemories:       cfg.MaxMemories,
		longTermThreshold: cfg.LongTermThreshold,
		dimensions:        provider.Dimensions(),
		memories:          make(map[int64]*Memory),
		longTerm:          make(map[int64]struct{}),
	}, nil
}

// AgentID returns the ID of the agent that owns this store.
func (s *Store) AgentID() string {
	return s.agentID
}

// Store records a new memory.
//
// The content is embedded, importance is clamped into [0,1], and the
// memory is inserted; capacity eviction runs immediately afterwards
// and may remove a different memory, or in principle the one just
// inserted. The returned Memory is a snapshot: the store retains
// ownership of the live record and callers may mutate the copy freely.
func (s *Store) Store(ctx context.Context, content string, memoryType MemoryType, opts ...StoreOption) (*Memory, error) {
	if content == "" {
		return nil, NewMemoryError("Store", fmt.Errorf("%w: content is empty", ErrInvalidInput))
	}
	if !memoryType.Valid() {
		return nil, NewMemoryError("Store", fmt.Errorf("%w: unknown memory type %q", ErrInvalidInput, memoryType))
	}
	options := applyStoreOptions(opts)

	// Embed outside the lock so a slow embedder never blocks readers
	// or other writers.
	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, NewMemoryError("Store", fmt.Errorf("%w: %v", ErrEmbeddingFailed, err))
	}
	if len(vector) == 0 {
		return nil, NewMemoryError("Store", fmt.Errorf("%w: empty vector", ErrEmbeddingFailed))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDimensionsLocked(vector); err != nil {
		return nil, NewMemoryError("Store", err)
	}

	now := time.Now()
	memory := &Memory{
		ID:                 s.node.Generate().Int64(),
		AgentID:            s.agentID,
		Content:            content,
		MemoryType:         memoryType,
		Importance:         clamp01(options.Importance),
		Context:            copyContext(options.Context),
		AssociatedEntities: copyEntities(options.AssociatedEntities),
		Embedding:          vector,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	s.memories[memory.ID] = memory
	if memory.Importance >= s.longTermThreshold {
		s.longTerm[memory.ID] = struct{}{}
	}

	// Snapshot before eviction: the new memory itself may be evicted
	// if its importance ranks lowest.
	snapshot := cloneMemory(memory)
	evicted := s.evictLocked()

	if s.journal != nil {
		if _, present := s.memories[memory.ID]; !present {
			// Inserted and immediately evicted; nothing to journal.
		} else if err := s.journal.Insert(ctx, toStorageMemory(memory)); err != nil {
			return nil, NewMemoryError("Store", fmt.Errorf("%w: %v", ErrStorageOperation, err))
		}
		for _, id := range evicted {
			if id == memory.ID {
				continue
			}
			if err := s.journal.Delete(ctx, id); err != nil {
				return nil, NewMemoryError("Store", fmt.Errorf("%w: %v", ErrStorageOperation, err))
			}
		}
	}

	return snapshot, nil
}

// Retrieve returns the memories most relevant to the query text.
//
// Candidates are filtered by the optional type and minimum importance,
// ranked descending by cosine similarity with importance as the
// tiebreak, and truncated to top-k. No match is an empty slice, not an
// error. The store is not mutated and results are snapshots.
func (s *Store) Retrieve(ctx context.Context, query string, opts ...RetrieveOption) ([]*Memory, error) {
	options := applyRetrieveOptions(opts)

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, NewMemoryError("Retrieve", fmt.Errorf("%w: %v", ErrEmbeddingFailed, err))
	}

	s.mu.RLock()
	if s.dimensions != 0 && len(queryVector) != s.dimensions {
		s.mu.RUnlock()
		return nil, NewMemoryError("Retrieve",
			fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(queryVector), s.dimensions))
	}

	results := make([]*Memory, 0, len(s.memories))
	for _, memory := range s.memories {
		if options.MemoryType != "" && memory.MemoryType != options.MemoryType {
			continue
		}
		if memory.Importance < options.MinImportance {
			continue
		}
		candidate := cloneMemory(memory)
		candidate.Score = cosineSimilarity(queryVector, memory.Embedding)
		results = append(results, candidate)
	}
	s.mu.RUnlock()

	// Similarity first, importance as tiebreak, ID last so equal pairs
	// still order deterministically.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Importance != results[j].Importance {
			return results[i].Importance > results[j].Importance
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > options.TopK {
		results = results[:options.TopK]
	}
	return results, nil
}

// UpdateImportance sets a memory's importance, clamped into [0,1].
//
// Long-term membership is re-evaluated atomically with the write: the
// memory joins the protected set when the new value reaches the
// threshold and leaves it when the value drops below. Eviction does
// not run here, so demoting memories can leave the store above its
// capacity until the next Store call.
func (s *Store) UpdateImportance(ctx context.Context, id int64, importance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	memory, ok := s.memories[id]
	if !ok {
		return NewMemoryError("UpdateImportance", ErrNotFound)
	}

	memory.Importance = clamp01(importance)
	memory.UpdatedAt = time.Now()
	if memory.Importance >= s.longTermThreshold {
		s.longTerm[id] = struct{}{}
	} else {
		delete(s.longTerm, id)
	}

	if s.journal != nil {
		if err := s.journal.Update(ctx, toStorageMemory(memory)); err != nil {
			return NewMemoryError("UpdateImportance", fmt.Errorf("%w: %v", ErrStorageOperation, err))
		}
	}
	return nil
}

// Forget removes a memory explicitly, regardless of long-term status.
//
// Returns ErrNotFound (wrapped) if the ID is absent.
func (s *Store) Forget(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memories[id]; !ok {
		return NewMemoryError("Forget", ErrNotFound)
	}
	delete(s.memories, id)
	delete(s.longTerm, id)

	if s.journal != nil {
		if err := s.journal.Delete(ctx, id); err != nil {
			return NewMemoryError("Forget", fmt.Errorf("%w: %v", ErrStorageOperation, err))
		}
	}
	return nil
}

// Get returns a snapshot of a single memory by ID.
func (s *Store) Get(id int64) (*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memory, ok := s.memories[id]
	if !ok {
		return nil, NewMemoryError("Get", ErrNotFound)
	}
	return cloneMemory(memory), nil
}

// Summarize returns aggregate counts over the current memories.
//
// The total, per-type counts, and importance histogram respect the
// optional type filter; the long-term count is always store-wide.
func (s *Store) Summarize(opts ...SummarizeOption) *Summary {
	options := applySummarizeOptions(opts)

	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &Summary{
		LongTerm: len(s.longTerm),
		ByType:   make(map[MemoryType]int),
	}
	for _, memory := range s.memories {
		if options.MemoryType != "" && memory.MemoryType != options.MemoryType {
			continue
		}
		summary.Total++
		summary.ByType[memory.MemoryType]++
		switch {
		case memory.Importance < histogramLowBound:
			summary.Importance.Low++
		case memory.Importance < histogramHighBound:
			summary.Importance.Medium++
		default:
			summary.Importance.High++
		}
	}
	return summary
}

// Len returns the current number of memories.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memories)
}

// LongTermLen returns the current number of long-term memories.
func (s *Store) LongTermLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.longTerm)
}

// load seeds the store from journaled records, then applies the
// capacity bound once. Called by Manager during rehydration, before
// the store is shared.
func (s *Store) load(ctx context.Context, records []*storage.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		memory, err := fromStorageMemory(record)
		if err != nil {
			return NewMemoryError("load", err)
		}
		if err := s.checkDimensionsLocked(memory.Embedding); err != nil {
			return NewMemoryError("load", err)
		}
		s.memories[memory.ID] = memory
		if memory.Importance >= s.longTermThreshold {
			s.longTerm[memory.ID] = struct{}{}
		}
	}

	evicted := s.evictLocked()
	if s.journal != nil {
		for _, id := range evicted {
			if err := s.journal.Delete(ctx, id); err != nil {
				return NewMemoryError("load", fmt.Errorf("%w: %v", ErrStorageOperation, err))
			}
		}
	}
	return nil
}

// checkDimensionsLocked validates a vector against the store's fixed
// dimensionality, pinning it on first use. Caller holds mu.
func (s *Store) checkDimensionsLocked(vector []float64) error {
	if s.dimensions == 0 {
		s.dimensions = len(vector)
		return nil
	}
	if len(vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), s.dimensions)
	}
	return nil
}

// evictLocked removes the least valuable non-long-term memories until
// the store fits its capacity, and returns the removed IDs.
//
// Candidates are ranked ascending by (importance, createdAt, ID).
// Long-term memories are never candidates: when only long-term
// memories remain, the store is allowed to exceed maxMemories.
// Caller holds mu.
func (s *Store) evictLocked() []int64 {
	if len(s.memories) <= s.maxMemories {
		return nil
	}

	candidates := make([]*Memory, 0, len(s.memories))
	for id, memory := range s.memories {
		if _, protected := s.longTerm[id]; !protected {
			candidates = append(candidates, memory)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Importance != candidates[j].Importance {
			return candidates[i].Importance < candidates[j].Importance
		}
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})

	var evicted []int64
	for _, memory := range candidates {
		if len(s.memories) <= s.maxMemories {
			break
		}
		delete(s.memories, memory.ID)
		evicted = append(evicted, memory.ID)
	}
	return evicted
}

// cosineSimilarity computes the cosine similarity of two vectors,
// defined as 0 when either vector has zero norm or lengths differ.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// clamp01 clamps v into [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
