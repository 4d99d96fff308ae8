package testutil

// FixedIDGenerator generates the same identifier every time.
//
// Snapshot ids are UUIDv7 in production, which makes every exported
// document differ. Injecting a FixedIDGenerator keeps exports
// byte-identical across runs for golden comparison.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a new fixed identifier generator.
//
// If id is empty, Generate() returns "test-snapshot-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-snapshot-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed identifier.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
