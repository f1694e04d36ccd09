// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dario.cat/mergo"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"rivaas.dev/confnode"
	"rivaas.dev/confnode/codec"
	"rivaas.dev/confnode/loader"
	_ "rivaas.dev/confnode/loader/yaml" // registers .yaml and .yml
	"rivaas.dev/confnode/source"
)

// DefaultWatchDebounce is how long [Reference.Watch] waits after the last
// file event before reloading.
const DefaultWatchDebounce = 250 * time.Millisecond

// Source produces one layer of configuration.
//
// Load must be safe to call concurrently.
type Source interface {
	Load(ctx context.Context) (map[string]any, error)
}

// Validator is implemented by bound structs that check their own values.
type Validator = confnode.Validator

// Listener is called after a new snapshot has been published.
type Listener func(previous, current *confnode.Node)

// Option configures a [Reference].
type Option func(r *Reference) error

// Reference holds the current configuration snapshot built from its
// sources.
//
// Reference is safe for concurrent use by multiple goroutines.
type Reference struct {
	sources    []Source
	schema     *jsonschema.Schema
	validators []func(map[string]any) error
	binding    any
	mappers    *confnode.MapperFactory
	saver      *loader.Loader
	nodeOpts   []confnode.Option
	options    *confnode.Options
	logger     *slog.Logger
	debounce   time.Duration

	root      atomic.Pointer[confnode.Node]
	mu        sync.Mutex
	listeners []Listener
}

// WithSource adds a source. Sources are merged in the order they are added.
func WithSource(src Source) Option {
	return func(r *Reference) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		r.sources = append(r.sources, src)
		return nil
	}
}

// WithFile adds a file source read through the loader format its extension
// selects (.yaml, .yml, .json, .toml, .msgpack, .env). A missing file
// contributes nothing. Environment variables in path are expanded.
func WithFile(path string) Option {
	return func(r *Reference) error {
		l, err := loader.NewForPath(path)
		if err != nil {
			return NewError("file-source", "detect-format", err)
		}
		r.sources = append(r.sources, source.NewLoader(l))
		return nil
	}
}

// WithFileAs adds a file source decoded by the codec registered as
// codecType, for files whose extension does not name their format.
func WithFileAs(path string, codecType codec.Type) Option {
	return func(r *Reference) error {
		decoder, err := codec.GetDecoder(codecType)
		if err != nil {
			return NewError("file-source", "get-decoder", err)
		}
		r.sources = append(r.sources, source.NewFile(path, decoder))
		return nil
	}
}

// WithContent adds an in-memory source decoded by the codec registered as
// codecType.
func WithContent(data []byte, codecType codec.Type) Option {
	return func(r *Reference) error {
		decoder, err := codec.GetDecoder(codecType)
		if err != nil {
			return NewError("content-source", "get-decoder", err)
		}
		r.sources = append(r.sources, source.NewFileContent(data, decoder))
		return nil
	}
}

// WithEnv adds the environment variables starting with prefix. APP_SERVER_PORT
// with prefix "APP_" becomes server.port.
func WithEnv(prefix string) Option {
	return func(r *Reference) error {
		r.sources = append(r.sources, source.NewOSEnvVar(prefix))
		return nil
	}
}

// WithConsul adds a Consul key whose format is taken from its extension.
// The option is skipped when CONSUL_HTTP_ADDR is not set.
func WithConsul(path string) Option {
	return func(r *Reference) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		path = os.ExpandEnv(path)
		format, err := loader.ForPath(path)
		if err != nil {
			return NewError("consul-source", "detect-format", err)
		}
		return WithConsulAs(path, codec.Type(format.Name()))(r)
	}
}

// WithConsulAs adds a Consul key decoded by the codec registered as
// codecType. The option is skipped when CONSUL_HTTP_ADDR is not set.
func WithConsulAs(path string, codecType codec.Type) Option {
	return func(r *Reference) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		decoder, err := codec.GetDecoder(codecType)
		if err != nil {
			return NewError("consul-source", "get-decoder", err)
		}
		src, err := source.NewConsul(os.ExpandEnv(path), decoder, nil)
		if err != nil {
			return NewError("consul-source", "create-client", err)
		}
		r.sources = append(r.sources, src)
		return nil
	}
}

// WithBinding decodes every snapshot into the struct v points to.
func WithBinding(v any) Option {
	return func(r *Reference) error {
		if v == nil {
			return errors.New("binding target cannot be nil")
		}
		t := reflect.TypeOf(v)
		if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
			return errors.New("binding target must be a pointer to a struct")
		}
		r.binding = v
		return nil
	}
}

// WithMapperFactory sets the object mapper factory used for binding.
func WithMapperFactory(f *confnode.MapperFactory) Option {
	return func(r *Reference) error {
		if f == nil {
			return errors.New("mapper factory cannot be nil")
		}
		r.mappers = f
		return nil
	}
}

// WithJSONSchema validates every merged map against schema.
func WithJSONSchema(schema []byte) Option {
	return func(r *Reference) error {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
		if err != nil {
			return NewError("json-schema", "parse", err)
		}
		name := "inline_" + uuid.NewString() + ".json"
		compiler := jsonschema.NewCompiler()
		if err = compiler.AddResource(name, doc); err != nil {
			return NewError("json-schema", "compile", err)
		}
		compiled, err := compiler.Compile(name)
		if err != nil {
			return NewError("json-schema", "compile", err)
		}
		r.schema = compiled
		return nil
	}
}

// WithValidator adds a check run on every merged map. A panicking validator
// fails the load.
func WithValidator(fn func(map[string]any) error) Option {
	return func(r *Reference) error {
		if fn == nil {
			return errors.New("validator cannot be nil")
		}
		r.validators = append(r.validators, fn)
		return nil
	}
}

// WithNodeOptions sets the options of snapshot nodes, e.g. their serializers.
func WithNodeOptions(opts ...confnode.Option) Option {
	return func(r *Reference) error {
		r.nodeOpts = append(r.nodeOpts, opts...)
		return nil
	}
}

// WithSaveTo makes [Reference.Save] write to path in the format its
// extension selects.
func WithSaveTo(path string) Option {
	return func(r *Reference) error {
		l, err := loader.NewForPath(path)
		if err != nil {
			return NewError("saver", "detect-format", err)
		}
		r.saver = l
		return nil
	}
}

// WithSaver makes [Reference.Save] write through l.
func WithSaver(l *loader.Loader) Option {
	return func(r *Reference) error {
		if l == nil || !l.CanSave() {
			return errors.New("saver must have a destination")
		}
		r.saver = l
		return nil
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reference) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// WithWatchDebounce sets the delay between the last file event and the
// reload it triggers.
func WithWatchDebounce(d time.Duration) Option {
	return func(r *Reference) error {
		if d < 0 {
			return fmt.Errorf("watch debounce cannot be negative, got %s", d)
		}
		r.debounce = d
		return nil
	}
}

// New creates a Reference. Nothing is loaded until [Reference.Load]; until
// then the snapshot is an empty map. Option errors are joined.
func New(options ...Option) (*Reference, error) {
	r := &Reference{
		mappers:  confnode.DefaultMapperFactory(),
		logger:   slog.New(slog.DiscardHandler),
		debounce: DefaultWatchDebounce,
	}

	var errs error
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(r); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}

	opts, err := confnode.NewOptions(r.nodeOpts...)
	if err != nil {
		return nil, NewError("node-options", "apply", err)
	}
	r.options = opts

	root := confnode.Root(opts)
	root.SetRaw(map[string]any{})
	r.root.Store(root)
	return r, nil
}

// MustNew is like [New] but panics on error.
func MustNew(options ...Option) *Reference {
	r, err := New(options...)
	if err != nil {
		panic(fmt.Sprintf("reference: failed to create reference: %v", err))
	}
	return r
}

// Load reads every source, merges, validates and binds the result, then
// publishes it as the new snapshot and notifies listeners. On error the
// previous snapshot stays in place.
//
// Errors:
//   - Returns [*Error] if a source fails to load or merge
//   - Returns [*Error] if JSON schema or custom validation fails
//   - Returns [*Error] if binding or struct validation fails
func (r *Reference) Load(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context cannot be nil")
	}

	merged, err := r.loadSources(ctx)
	if err != nil {
		return err
	}

	if r.schema != nil {
		if err = r.schema.Validate(merged); err != nil {
			return NewError("json-schema", "validate", err)
		}
	}

	for i, fn := range r.validators {
		if err = runValidator(fn, merged); err != nil {
			return NewError(fmt.Sprintf("custom-validator[%d]", i), "validate", err)
		}
	}

	root := confnode.Root(r.options)
	root.SetRaw(merged)

	r.mu.Lock()
	if r.binding != nil {
		if err = r.bind(root); err != nil {
			r.mu.Unlock()
			return err
		}
	}
	previous := r.root.Swap(root)
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.logger.Debug("configuration loaded", "sources", len(r.sources), "keys", root.Len())
	for _, fn := range listeners {
		fn(previous, root)
	}
	return nil
}

// MustLoad is like [Reference.Load] but panics on error.
func (r *Reference) MustLoad(ctx context.Context) {
	if err := r.Load(ctx); err != nil {
		panic(err)
	}
}

func (r *Reference) loadSources(ctx context.Context) (map[string]any, error) {
	merged := make(map[string]any)
	for i, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conf, err := src.Load(ctx)
		if err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "load", err)
		}
		if conf == nil {
			continue
		}

		if err = mergo.Map(&merged, normalizeMapKeys(conf), mergo.WithOverride); err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "merge", err)
		}
	}
	return merged, nil
}

// bind decodes root into a fresh value, which the mapper validates, and
// copies it over the binding target only on success.
func (r *Reference) bind(root *confnode.Node) error {
	typ := reflect.TypeOf(r.binding).Elem()
	mapper, err := r.mappers.Get(typ)
	if err != nil {
		return NewError("binding", "bind", err)
	}

	fresh := reflect.New(typ)
	if err = mapper.LoadInto(root, fresh.Interface()); err != nil {
		return NewError("binding", "bind", err)
	}

	reflect.ValueOf(r.binding).Elem().Set(fresh.Elem())
	return nil
}

func runValidator(fn func(map[string]any) error, values map[string]any) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("validator panic: %v", p)
		}
	}()
	return fn(values)
}

// normalizeMapKeys lower-cases every key, recursively, so that sources
// merge case-insensitively.
func normalizeMapKeys(m map[string]any) map[string]any {
	normalized := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeMapKeys(nested)
		}
		normalized[strings.ToLower(k)] = v
	}
	return normalized
}

// Node returns the current snapshot. Snapshots are shared between callers
// and must not be modified; use [confnode.Node.Copy] for a private tree.
func (r *Reference) Node() *confnode.Node {
	return r.root.Load()
}

// Values returns a copy of the current snapshot as plain maps.
func (r *Reference) Values() map[string]any {
	values, ok := r.Node().Raw().(map[string]any)
	if !ok {
		return make(map[string]any)
	}
	return values
}

// OnChange registers fn to run after every successful [Reference.Load].
func (r *Reference) OnChange(fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Save writes the current snapshot through the configured saver.
func (r *Reference) Save(ctx context.Context) error {
	if r.saver == nil {
		return NewError("saver", "save", errors.New("no save destination configured"))
	}
	if err := r.saver.Save(ctx, r.Node()); err != nil {
		return NewError("saver", "save", err)
	}
	r.logger.Debug("configuration saved", "path", r.saver.Path())
	return nil
}
