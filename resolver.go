// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// defaultStructuresDir is the schema folder name looked for under the
// resolver's root, rather than under the process's current directory --
// WithSchemaRoot makes that root an explicit parameter instead of ambient
// state.
const defaultStructuresDir = "structures"
const schemaIndexName = "structure.json"

// ResolverOption configures a StructureResolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	logger *slog.Logger
}

// WithResolverLogger sets an optional logger the resolver uses to report a
// missing or malformed schema index or schema file, which it otherwise
// swallows silently. Unknown type strings are demoted to EMPTY without a
// log entry.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(opts *resolverOptions) {
		opts.logger = logger
	}
}

// StructureResolver resolves a Structure for a (file path, table name) pair
// by consulting a schema index rooted at a directory given at construction
// time.
type StructureResolver struct {
	root   string
	logger *slog.Logger

	once        sync.Once
	entries     []indexEntry
	schemaCache map[string]*schemaFile
	cacheMu     sync.Mutex
}

type indexEntry struct {
	pattern    *regexp.Regexp
	schemaFile string
}

// NewStructureResolver returns a resolver that looks for a `structures/`
// folder under schemaRoot. A missing or malformed schema index is not an
// error at construction time -- Resolve degrades to returning empty
// Structures.
func NewStructureResolver(schemaRoot string, opts ...ResolverOption) *StructureResolver {
	var options resolverOptions
	options.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, opt := range opts {
		opt(&options)
	}
	return &StructureResolver{
		root:        schemaRoot,
		logger:      options.logger,
		schemaCache: make(map[string]*schemaFile),
	}
}

// Resolve finds the schema file whose index regex matches filePath, then
// finds the table's field list within it (the 32-bit-dialect lookup path).
// A missing index, missing schema file, or missing table entry all resolve
// to an empty Structure rather than an error.
func (r *StructureResolver) Resolve(filePath, tableName string) Structure {
	r.once.Do(r.loadIndex)

	for _, e := range r.entries {
		if !e.pattern.MatchString(filePath) {
			continue
		}
		sf, err := r.loadSchemaFile(e.schemaFile)
		if err != nil {
			r.logger.Warn("expa: malformed schema file", "file", e.schemaFile, "err", err)
			continue
		}
		if fields, ok := sf.fieldsFor(tableName); ok {
			return r.buildStructure(fields)
		}
	}

	return Structure{}
}

// ReconcileInBand reconciles a file-based Structure (from a schema lookup)
// against the in-band preamble a 64-bit-dialect table carries ahead of its
// rows. The in-band Structure is always trustworthy but anonymous, so the
// file-based one is preferred only when it agrees with the in-band one
// field for field.
func ReconcileInBand(fileBased, inBand Structure) Structure {
	if len(fileBased.Fields) == 0 || len(fileBased.Fields) != len(inBand.Fields) {
		return inBand
	}
	for i := range fileBased.Fields {
		if fileBased.Fields[i].Type != inBand.Fields[i].Type {
			return inBand
		}
	}
	return fileBased
}

func (r *StructureResolver) buildStructure(fields []fieldDecl) Structure {
	out := Structure{Fields: make([]StructureEntry, len(fields))}
	for i, f := range fields {
		t := lookupEntryType(f.typeString)
		out.Fields[i] = StructureEntry{Name: f.name, Type: t}
	}
	return out
}

func (r *StructureResolver) loadIndex() {
	path := filepath.Join(r.root, defaultStructuresDir, schemaIndexName)
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Debug("expa: no schema index found", "path", path, "err", err)
		return
	}

	pairs, err := decodeOrderedObject(data)
	if err != nil {
		r.logger.Warn("expa: malformed schema index", "path", path, "err", err)
		return
	}

	entries := make([]indexEntry, 0, len(pairs))
	for _, p := range pairs {
		var schemaFileName string
		if err := json.Unmarshal(p.value, &schemaFileName); err != nil {
			r.logger.Warn("expa: schema index entry is not a string", "key", p.key, "err", err)
			continue
		}
		re, err := regexp.Compile(p.key)
		if err != nil {
			r.logger.Warn("expa: schema index regex does not compile", "pattern", p.key, "err", err)
			continue
		}
		entries = append(entries, indexEntry{pattern: re, schemaFile: schemaFileName})
	}
	r.entries = entries
}

// schemaFile is one parsed schema file: an ordered list of (table name or
// regex, field list) pairs, matched in declaration order.
type schemaFile struct {
	tables []tableDecl
}

type tableDecl struct {
	nameOrPattern string
	fields        []fieldDecl
}

type fieldDecl struct {
	name       string
	typeString string
}

func (sf *schemaFile) fieldsFor(tableName string) ([]fieldDecl, bool) {
	for _, t := range sf.tables {
		if t.nameOrPattern == tableName {
			return t.fields, true
		}
	}
	for _, t := range sf.tables {
		re, err := regexp.Compile("^(?:" + t.nameOrPattern + ")$")
		if err != nil {
			continue
		}
		if re.MatchString(tableName) {
			return t.fields, true
		}
	}
	return nil, false
}

func (r *StructureResolver) loadSchemaFile(name string) (*schemaFile, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	if sf, ok := r.schemaCache[name]; ok {
		return sf, nil
	}

	path := filepath.Join(r.root, defaultStructuresDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s): %w", path, err)
	}

	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return nil, fmt.Errorf("decodeOrderedObject(%s): %w", path, err)
	}

	sf := &schemaFile{tables: make([]tableDecl, 0, len(pairs))}
	for _, p := range pairs {
		fieldPairs, err := decodeOrderedObject(p.value)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", p.key, err)
		}
		fields := make([]fieldDecl, 0, len(fieldPairs))
		for _, fp := range fieldPairs {
			var typeString string
			if err := json.Unmarshal(fp.value, &typeString); err != nil {
				return nil, fmt.Errorf("field %q: %w", fp.key, err)
			}
			fields = append(fields, fieldDecl{name: fp.key, typeString: typeString})
		}
		sf.tables = append(sf.tables, tableDecl{nameOrPattern: p.key, fields: fields})
	}

	r.schemaCache[name] = sf
	return sf, nil
}

// orderedPair is one key/value pair from a JSON object, in declaration
// order -- encoding/json's map decoding loses order, and both the
// schema-index and schema-file lookups need to walk entries in the order
// they were declared.
type orderedPair struct {
	key   string
	value json.RawMessage
}

func decodeOrderedObject(data []byte) ([]orderedPair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("json.Token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var pairs []orderedPair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json.Token (key): %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("json.Decode (value for %q): %w", key, err)
		}

		pairs = append(pairs, orderedPair{key: key, value: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("json.Token (closing brace): %w", err)
	}

	return pairs, nil
}
