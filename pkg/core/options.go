package core

// StoreOption is a function type for configuring Store operations.
//
// Options follow the functional options pattern so callers only set
// what they need.
type StoreOption func(*StoreOptions)

// StoreOptions contains configuration options for Store operations.
type StoreOptions struct {
	// Importance is the initial importance score. Clamped into [0,1].
	// Default: 0.5
	Importance float64

	// Context is uninterpreted metadata attached to the memory.
	Context map[string]interface{}

	// AssociatedEntities lists free-form tags attached to the memory.
	AssociatedEntities []string
}

// WithImportance sets the initial importance for a stored memory.
//
// Values outside [0,1] are clamped, not rejected.
//
// Example:
//
//	memory, _ := store.Store(ctx, "met the blacksmith", core.MemoryPersonalExperience,
//	    core.WithImportance(0.9))
func WithImportance(importance float64) StoreOption {
	return func(opts *StoreOptions) {
		opts.Importance = importance
	}
}

// WithContext attaches opaque metadata to a stored memory.
//
// The store never interprets the map; it is returned verbatim on
// retrieval.
func WithContext(context map[string]interface{}) StoreOption {
	return func(opts *StoreOptions) {
		opts.Context = context
	}
}

// WithAssociatedEntities attaches free-form entity tags to a stored memory.
//
// Example:
//
//	memory, _ := store.Store(ctx, "argued with Mira", core.MemoryRelationship,
//	    core.WithAssociatedEntities([]string{"mira"}))
func WithAssociatedEntities(entities []string) StoreOption {
	return func(opts *StoreOptions) {
		opts.AssociatedEntities = entities
	}
}

// RetrieveOption is a function type for configuring Retrieve operations.
type RetrieveOption func(*RetrieveOptions)

// RetrieveOptions contains configuration options for Retrieve operations.
type RetrieveOptions struct {
	// TopK is the maximum number of results to return.
	// Default: 5
	TopK int

	// MemoryType restricts results to a single memory type.
	// Empty means no type filter.
	MemoryType MemoryType

	// MinImportance excludes results with importance below this value.
	// Default: 0.0 (no minimum)
	MinImportance float64
}

// WithTopK sets the maximum number of results for Retrieve operations.
//
// Non-positive values fall back to the default of 5.
func WithTopK(topK int) RetrieveOption {
	return func(opts *RetrieveOptions) {
		opts.TopK = topK
	}
}

// WithMemoryTypeFilter restricts Retrieve results to a single memory type.
//
// Example:
//
//	results, _ := store.Retrieve(ctx, "the harvest festival",
//	    core.WithMemoryTypeFilter(core.MemoryDialogue))
func WithMemoryTypeFilter(memoryType MemoryType) RetrieveOption {
	return func(opts *RetrieveOptions) {
		opts.MemoryType = memoryType
	}
}

// WithMinImportance excludes Retrieve results below the given importance.
//
// Example:
//
//	results, _ := store.Retrieve(ctx, "the harvest festival",
//	    core.WithMinImportance(0.6))
func WithMinImportance(minImportance float64) RetrieveOption {
	return func(opts *RetrieveOptions) {
		opts.MinImportance = minImportance
	}
}

// SummarizeOption is a function type for configuring Summarize operations.
type SummarizeOption func(*SummarizeOptions)

// SummarizeOptions contains configuration options for Summarize operations.
type SummarizeOptions struct {
	// MemoryType restricts the summary to a single memory type.
	// Empty means no filter. The long-term count is always store-wide.
	MemoryType MemoryType
}

// WithMemoryTypeForSummarize restricts the summary to a single memory type.
func WithMemoryTypeForSummarize(memoryType MemoryType) SummarizeOption {
	return func(opts *SummarizeOptions) {
		opts.MemoryType = memoryType
	}
}

// applyStoreOptions applies Store options to create StoreOptions.
func applyStoreOptions(opts []StoreOption) *StoreOptions {
	options := &StoreOptions{
		Importance: defaultImportance,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyRetrieveOptions applies Retrieve options to create RetrieveOptions.
func applyRetrieveOptions(opts []RetrieveOption) *RetrieveOptions {
	options := &RetrieveOptions{
		TopK:          defaultTopK,
		MinImportance: 0.0,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.TopK <= 0 {
		options.TopK = defaultTopK
	}
	return options
}

// applySummarizeOptions applies Summarize options to create SummarizeOptions.
func applySummarizeOptions(opts []SummarizeOption) *SummarizeOptions {
	options := &SummarizeOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

const (
	// defaultImportance is the importance assigned when the caller sets none.
	defaultImportance = 0.5

	// defaultTopK is the number of results Retrieve returns by default.
	defaultTopK = 5
)
