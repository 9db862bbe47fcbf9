package registry

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/shpitdev/deckschema/pkg/config"
	"github.com/shpitdev/deckschema/pkg/keyword"
	"github.com/shpitdev/deckschema/pkg/pipeline/worker"
)

// Load builds every keyword definition in b, a JSON or YAML document holding one definition
// object or a list of them, and adds the schemas. source names b in errors and diagnostics.
func (r *Registry) Load(b []byte, source string, opts ...keyword.Option) (int, error) {
	schemas, err := buildAll(b, source, opts)
	if err != nil {
		return 0, err
	}
	return r.addAll(source, schemas)
}

// LoadFile loads the definitions of one file.
func (r *Registry) LoadFile(file string, opts ...keyword.Option) (int, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return 0, err
	}
	return r.Load(b, file, opts...)
}

// LoadOptions tunes LoadFS.
type LoadOptions struct {
	// Workers bounds how many definition files are read and built at once.
	Workers int
	Keyword []keyword.Option
}

// LoadFS loads every .json, .yaml and .yml file below root. Files are built concurrently and
// added in lexical path order, so duplicate detection does not depend on scheduling.
func (r *Registry) LoadFS(ctx context.Context, fsys fs.FS, root string, opts LoadOptions) (int, error) {
	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch path.Ext(p) {
		case ".json", ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)

	build := func(_ context.Context, file string) ([]*keyword.Schema, error) {
		b, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		return buildAll(b, file, opts.Keyword)
	}
	results, err := worker.ProcessAll(ctx, files, build, worker.Options{
		Workers:       opts.Workers,
		FailurePolicy: worker.FailurePolicyFailFast,
	})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, res := range results {
		n, err := r.addAll(res.Input, res.Output)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func buildAll(b []byte, source string, opts []keyword.Option) ([]*keyword.Schema, error) {
	defs, err := config.ParseList(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	opts = append([]keyword.Option{keyword.WithSource(source)}, opts...)
	out := make([]*keyword.Schema, 0, len(defs))
	for _, def := range defs {
		s, err := keyword.FromConfig(def, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", source, def.Line(), err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Registry) addAll(source string, schemas []*keyword.Schema) (int, error) {
	for i, s := range schemas {
		if err := r.Add(s); err != nil {
			return i, fmt.Errorf("%s: %w", source, err)
		}
	}
	return len(schemas), nil
}
