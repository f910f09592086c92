// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package protoschema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protoschema/fdp"
	"github.com/bufbuild/protoschema/parser"
	"github.com/bufbuild/protoschema/reporter"
	"github.com/bufbuild/protoschema/schema"
	"github.com/bufbuild/protoschema/walk"
)

// ErrImportCycle is returned when following imports leads back to a file
// that is already being compiled.
var ErrImportCycle = errors.New("import cycle")

// Compiler handles compilation tasks, to turn proto source files into schema
// trees. Each file is parsed and resolved on its own; files are compiled in
// parallel.
type Compiler struct {
	// Resolves path/file names into source code or already parsed files.
	// This is how the compiler loads the files to be compiled as well as,
	// when FollowImports is set, their imports. This field is the only
	// required field.
	Resolver Resolver
	// The maximum parallelism to use when compiling. If unspecified or set to
	// a non-positive value, then min(runtime.NumCPU(), runtime.GOMAXPROCS(-1))
	// will be used.
	MaxParallelism int
	// A custom error and warning reporter. If unspecified a default reporter
	// is used. A default reporter fails the compilation after encountering any
	// errors and ignores all warnings. If the reporter swallows an error, the
	// file that caused it is dropped but the other files are still compiled,
	// and Compile then returns reporter.ErrInvalidSource.
	Reporter reporter.Reporter
	// Options controls how each file is parsed.
	Options parser.Options
	// If true, the files imported by each compiled file are compiled too and
	// made available in File.Imports. Weak imports are not followed.
	FollowImports bool
	// Optional logger. Progress is logged at debug level.
	Logger logrus.FieldLogger
}

// File is the result of compiling one file.
type File struct {
	*parser.Result
	// Imports holds the compiled imports of the file, in the order of
	// Result.Imports. It is only populated if the compiler follows imports.
	Imports Files
}

// FileDescriptorProto converts the file to a descriptor proto.
func (f *File) FileDescriptorProto() (*descriptorpb.FileDescriptorProto, error) {
	return fdp.ToFileDescriptorProto(f.Result)
}

// Files is a list of compiled files.
type Files []*File

// FindFileByPath returns the file with the given path, searching the list
// and the imports of every file in it. It returns nil if there is no such
// file.
func (f Files) FindFileByPath(path string) *File {
	seen := map[*File]struct{}{}
	var find func(files Files) *File
	find = func(files Files) *File {
		for _, file := range files {
			if _, ok := seen[file]; ok {
				continue
			}
			seen[file] = struct{}{}
			if file.Filename == path {
				return file
			}
			if found := find(file.Imports); found != nil {
				return found
			}
		}
		return nil
	}
	return find(f)
}

// Compile parses the given files. The compiler's resolver is used to locate
// the source of each file. The results are returned in the same order as the
// given names.
func (c *Compiler) Compile(ctx context.Context, files ...string) (Files, error) {
	if len(files) == 0 {
		return nil, nil
	}

	par := c.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if par > cpus {
			par = cpus
		}
	}

	logger := c.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	g, ctx := errgroup.WithContext(ctx)
	e := executor{
		c:       c,
		log:     logger,
		s:       semaphore.NewWeighted(int64(par)),
		results: map[string]*result{},
	}

	var (
		mu      sync.Mutex
		invalid bool
	)
	results := make(Files, len(files))
	for i, f := range files {
		g.Go(func() error {
			r := e.compile(ctx, f)
			select {
			case <-r.ready:
			case <-ctx.Done():
				return ctx.Err()
			}
			if errors.Is(r.err, reporter.ErrInvalidSource) {
				mu.Lock()
				invalid = true
				mu.Unlock()
				return nil
			}
			if r.err != nil {
				return r.err
			}
			results[i] = r.res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if invalid {
		return nil, reporter.ErrInvalidSource
	}
	return results, nil
}

type result struct {
	ready chan struct{}
	res   *File
	err   error
	// deps is set once the file is parsed, before its imports are awaited.
	deps []string
}

func (r *result) fail(err error) {
	r.err = err
	close(r.ready)
}

func (r *result) complete(f *File) {
	r.res = f
	close(r.ready)
}

type executor struct {
	c   *Compiler
	log logrus.FieldLogger
	s   *semaphore.Weighted

	mu      sync.Mutex
	results map[string]*result
}

func (e *executor) compile(ctx context.Context, file string) *result {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.results[file]
	if r != nil {
		return r
	}

	r = &result{
		ready: make(chan struct{}),
	}
	e.results[file] = r
	go func() {
		e.doCompile(ctx, file, r)
	}()
	return r
}

func (e *executor) doCompile(ctx context.Context, file string, r *result) {
	t := task{e: e}
	if err := e.s.Acquire(ctx, 1); err != nil {
		r.fail(err)
		return
	}
	defer t.release()

	sr, err := e.c.Resolver.FindFileByPath(file)
	if err != nil {
		r.fail(err)
		return
	}

	defer func() {
		// if results included a result, don't leave it open if it can be closed
		if sr.Source == nil {
			return
		}
		if c, ok := sr.Source.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	res, err := t.asFile(ctx, file, sr, r)
	if err != nil {
		r.fail(err)
		return
	}
	r.complete(res)
}

// A compilation task. The executor has a semaphore that limits the number
// of concurrent, running tasks.
type task struct {
	e *executor
	// If true, this task needs to acquire a semaphore permit before running.
	// If false, this task needs to release its semaphore permit on completion.
	released bool
}

func (t *task) release() {
	if !t.released {
		t.e.s.Release(1)
		t.released = true
	}
}

func (t *task) asFile(ctx context.Context, name string, sr SearchResult, r *result) (*File, error) {
	log := t.e.log.WithField("file", name)
	res, err := t.asParseResult(name, sr, log)
	if err != nil {
		return nil, err
	}
	file := &File{Result: res}
	if !t.e.c.FollowImports || len(res.Imports) == 0 {
		return file, nil
	}

	if err := t.e.setDeps(name, r, res.Imports); err != nil {
		return nil, err
	}
	results := make([]*result, len(res.Imports))
	for i, dep := range res.Imports {
		results[i] = t.e.compile(ctx, dep)
	}
	file.Imports = make(Files, len(results))

	// release our semaphore so dependencies can be processed w/out risk of deadlock
	t.e.s.Release(1)
	t.released = true

	// now we wait for them all to be computed
	for i, dep := range results {
		select {
		case <-dep.ready:
			if dep.err != nil {
				return nil, fmt.Errorf("%s: import %q: %w", name, res.Imports[i], dep.err)
			}
			file.Imports[i] = dep.res
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// all deps resolved; reacquire semaphore so we can proceed
	if err := t.e.s.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	t.released = false
	return file, nil
}

// setDeps records the imports of a file and fails if waiting on them would
// wait on the file itself.
func (e *executor) setDeps(name string, r *result, deps []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	r.deps = deps
	seen := map[string]struct{}{}
	var path []string
	var visit func(file string) bool
	visit = func(file string) bool {
		path = append(path, file)
		if file == name && len(path) > 1 {
			return true
		}
		if _, ok := seen[file]; ok {
			path = path[:len(path)-1]
			return false
		}
		seen[file] = struct{}{}
		if dep := e.results[file]; dep != nil {
			for _, next := range dep.deps {
				if visit(next) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if visit(name) {
		return fmt.Errorf("%w: %s", ErrImportCycle, strings.Join(path, " -> "))
	}
	return nil
}

func (t *task) asParseResult(name string, sr SearchResult, log logrus.FieldLogger) (*parser.Result, error) {
	if sr.Result != nil {
		if sr.Result.Filename != name {
			return nil, fmt.Errorf("search result for %q returned result for %q", name, sr.Result.Filename)
		}
		log.Debug("using parsed file")
		return sr.Result, nil
	}
	if sr.Source == nil {
		return nil, fmt.Errorf("search result for %q has no source", name)
	}

	log.Debug("parsing")
	h := reporter.NewHandler(t.e.c.Reporter)
	res, err := parser.Parse(name, sr.Source, h, t.e.c.Options)
	if err != nil {
		log.WithError(err).Debug("parse failed")
		return nil, err
	}
	var messages int
	_ = walk.Nodes(res.Root, func(n schema.Node) error {
		if _, ok := n.(*schema.Message); ok {
			messages++
		}
		return nil
	})
	log.WithFields(logrus.Fields{
		"package":  res.Package,
		"messages": messages,
		"warnings": h.WarningCount(),
		"imports":  len(res.Imports),
	}).Debug("parsed")
	return res, nil
}
