package snapshot

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
	schemaErr   error
)

// compiledSchema compiles the embedded schema once per process.
func compiledSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		root := ctx.CompileString(schemaCUE)
		if err := root.Err(); err != nil {
			schemaErr = fmt.Errorf("compile snapshot schema: %w", err)
			return
		}
		schemaValue = root.LookupPath(cue.ParsePath("#Snapshot"))
		if err := schemaValue.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup snapshot schema: %w", err)
		}
	})
	return schemaValue, schemaErr
}

// ValidateBytes checks raw snapshot JSON against the embedded schema
// before any decoding. Catches missing sections, wrong field types, and
// unknown fields; the format version gate runs separately on the
// decoded snapshot.
func ValidateBytes(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := cuejson.Validate(data, schema); err != nil {
		return fmt.Errorf("snapshot does not match schema: %w", err)
	}
	return nil
}
