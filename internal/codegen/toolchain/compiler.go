package toolchain

import (
	"bytes"
	"context"
)

// Compiler wraps the external schema compiler. Paths are relative to Dir.
type Compiler struct {
	Path   string
	Dir    string
	Runner Runner
}

// Preprocess expands schema and returns the annotated text the compiler
// prints on its diagnostic stream.
func (c *Compiler) Preprocess(ctx context.Context, schema string) ([]byte, error) {
	var out bytes.Buffer
	err := c.Runner.Run(ctx, Invocation{
		Tool:   c.Path,
		Args:   []string{"-E", schema},
		Dir:    c.Dir,
		Stderr: &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Compile serializes schema into the binary form read by the generator.
func (c *Compiler) Compile(ctx context.Context, schema, compiledOut string) error {
	return c.Runner.Run(ctx, Invocation{
		Tool: c.Path,
		Args: []string{"-e", compiledOut, schema},
		Dir:  c.Dir,
	})
}
