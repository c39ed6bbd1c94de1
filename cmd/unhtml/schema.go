package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/unhtml"
	"github.com/fwojciec/unhtml/fs"
)

// Run executes the schema command.
func (c *SchemaCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.Schema)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	schema, err := unhtml.ParseSchema(data)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unhtml.ErrorMessage(err))
		return err
	}
	dec, err := unhtml.NewSchemaDecoder(deps.Parser, schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unhtml.ErrorMessage(err))
		return err
	}

	docs, err := loadDocuments(deps, c.Files, c.Remote)
	if err != nil {
		return err
	}

	results, err := decodeDocuments(deps.Ctx, docs, deps.Concurrency, func(d document) (any, error) {
		return dec.Decode(d.html)
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unhtml.ErrorMessage(err))
		return err
	}

	if c.Out != "" {
		store := fs.NewFileStore(filepath.Dir(c.Out), filepath.Base(c.Out))
		return c.save(deps, store, docs, results)
	}

	enc := json.NewEncoder(deps.Stdout)
	if c.Indent {
		enc.SetIndent("", "  ")
	}
	for _, v := range results {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// save writes every result to store, committing only if all succeed.
func (c *SchemaCmd) save(deps *Dependencies, store ResultStore, docs []document, results []any) (err error) {
	defer func() {
		if err != nil {
			_ = store.Abort()
		}
	}()

	seen := make(map[string]string, len(docs))
	for i, d := range docs {
		path, err := fs.NameToPath(d.name)
		if err != nil {
			return err
		}
		if prev, ok := seen[path]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, d.name, path)
		}
		seen[path] = d.name

		var data []byte
		if c.Indent {
			data, err = json.MarshalIndent(results[i], "", "  ")
		} else {
			data, err = json.Marshal(results[i])
		}
		if err != nil {
			return err
		}
		if err := store.Save(deps.Ctx, d.name, append(data, '\n')); err != nil {
			return err
		}
		deps.Logger.Debug("saved result", "document", d.name, "path", path)
	}
	return store.Commit()
}
