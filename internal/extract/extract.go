// Package extract collects GraphQL operation and fragment definitions from a
// client source tree.
package extract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	logger "github.com/hanpama/querycost/internal/logger"
	operation "github.com/hanpama/querycost/internal/operation"
)

var (
	// gql`...`, graphql`...` and gql(`...`)
	taggedTemplate = regexp.MustCompile("\\b(?:gql|graphql)\\s*(?:\\(\\s*)?`((?:[^`\\\\]|\\\\[\\s\\S])*)`")
	interpolation  = regexp.MustCompile(`\$\{[^}]*\}`)
	whitespace     = regexp.MustCompile(`\s+`)
)

var scriptExtensions = map[string]bool{".js": true, ".jsx": true, ".ts": true, ".tsx": true}
var documentExtensions = map[string]bool{".graphql": true, ".gql": true}

// Corpus is the de-duplicated set of definitions found in a tree, in
// encounter order (files in lexical order).
type Corpus struct {
	Operations []*operation.Operation
	Fragments  []*operation.Operation
	Skipped    []string
	Files      int
}

func (c *Corpus) OperationsDocument() string { return operation.JoinText(c.Operations) }
func (c *Corpus) FragmentsDocument() string  { return operation.JoinText(c.Fragments) }

type Option func(*options)

type options struct {
	log         *zap.Logger
	concurrency int
}

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

// WithConcurrency bounds the number of files read at once.
func WithConcurrency(n int) Option { return func(o *options) { o.concurrency = n } }

// Dir walks root, skipping node_modules and dot-directories, and extracts
// definitions from script files, GraphQL documents and persisted operation
// JSON files.
func Dir(ctx context.Context, root string, opts ...Option) (*Corpus, error) {
	o := options{concurrency: 8}
	for _, f := range opts {
		f(&o)
	}
	log := logger.OrNop(o.log)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}

	perFile := make([][]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %q: %w", path, err)
			}
			perFile[i] = Source(path, content)
			log.Debug("extracted", zap.String("file", path), zap.Int("blocks", len(perFile[i])))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var blocks []string
	for _, b := range perFile {
		blocks = append(blocks, b...)
	}
	ops, fragments, skipped := operation.Partition(Dedup(blocks))
	for _, text := range skipped {
		log.Info("skipping block", zap.String("signature", operation.Signature(text)))
	}
	return &Corpus{Operations: ops, Fragments: fragments, Skipped: skipped, Files: len(files)}, nil
}

func supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return scriptExtensions[ext] || documentExtensions[ext] || ext == ".json"
}

// Source returns the definition blocks found in one file. The file name
// decides how content is read.
func Source(name string, content []byte) []string {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case documentExtensions[ext]:
		return operation.Split(string(content))
	case scriptExtensions[ext]:
		return operation.SplitAll(Literals(string(content))...)
	case ext == ".json":
		return operation.SplitAll(PersistedBodies(content)...)
	}
	return nil
}

// Literals returns the bodies of gql/graphql tagged templates in script
// source, with ${...} interpolations removed.
func Literals(src string) []string {
	var out []string
	for _, m := range taggedTemplate.FindAllStringSubmatch(src, -1) {
		body := interpolation.ReplaceAllString(m[1], "")
		body = strings.ReplaceAll(body, "\\`", "`")
		if strings.TrimSpace(body) != "" {
			out = append(out, body)
		}
	}
	return out
}

// PersistedBodies reads operation bodies from a persisted operation file
// ({"body": ...}) or an operation manifest ({"operations": [{"body": ...}]}).
// Other JSON yields nothing.
func PersistedBodies(content []byte) []string {
	if !gjson.ValidBytes(content) {
		return nil
	}
	var out []string
	if body := gjson.GetBytes(content, "body"); body.Type == gjson.String {
		out = append(out, body.String())
	}
	gjson.GetBytes(content, "operations.#.body").ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			out = append(out, v.String())
		}
		return true
	})
	return out
}

// Dedup drops blocks that repeat an earlier block up to whitespace.
func Dedup(blocks []string) []string {
	seen := make(map[string]bool, len(blocks))
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		key := whitespace.ReplaceAllString(strings.TrimSpace(b), " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}
