// Package document reads the declarative command catalogue that seeds the
// arsenal database. The catalogue is decoded into a generic tree of
// map[string]any, []any and scalars, together with the file order of each
// table's keys; interpreting that tree is left to the loader.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// ParseError reports a catalogue that could not be decoded. Line and Column
// are zero when the decoder does not expose a position.
type ParseError struct {
	Path   string
	Format Format
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "<input>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("document: parsing %s %s:%d:%d: %v", e.Format, where, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("document: parsing %s %s: %v", e.Format, where, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FormatFromPath picks YAML for .yaml/.yml files and TOML for everything else.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return TOML
}

// Document is a decoded catalogue. Data holds the generic tree; the order in
// which keys of each table appear in the file is kept alongside it, since Go
// maps do not preserve it.
type Document struct {
	Data map[string]any
	keys map[string][]string
}

// Keys returns the keys of the table at path in file order. The root table
// is addressed with no path; Keys("command") lists the command entries.
func (d *Document) Keys(path ...string) []string {
	if d == nil {
		return nil
	}
	return d.keys[keyPath(path)]
}

func keyPath(path []string) string {
	return strings.Join(path, "\x00")
}

// keyOrder records each table's keys the first time they are seen.
type keyOrder struct {
	keys map[string][]string
	seen map[string]struct{}
}

func newKeyOrder() *keyOrder {
	return &keyOrder{keys: map[string][]string{}, seen: map[string]struct{}{}}
}

func (o *keyOrder) add(table []string, key string) {
	parent := keyPath(table)
	id := parent + "\x01" + key
	if _, ok := o.seen[id]; ok {
		return
	}
	o.seen[id] = struct{}{}
	o.keys[parent] = append(o.keys[parent], key)
}

// ReadFile reads and decodes the catalogue at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: reading %s: %w", path, err)
	}
	doc, err := Parse(data, FormatFromPath(path))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse decodes data in the given format. An empty input yields an empty
// document.
func Parse(data []byte, format Format) (*Document, error) {
	switch format {
	case TOML:
		return parseTOML(data)
	case YAML:
		return parseYAML(data)
	}
	return nil, fmt.Errorf("document: unsupported format %q", format)
}

func parseTOML(data []byte) (*Document, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		perr := &ParseError{Format: TOML, Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}

	order := newKeyOrder()
	var table []string
	p := unstable.Parser{}
	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = order.addTOMLKey(nil, expr.Key())
		case unstable.KeyValue:
			order.addTOMLKeyValue(table, expr)
		}
	}
	if err := p.Error(); err != nil {
		return nil, &ParseError{Format: TOML, Err: err}
	}
	return &Document{Data: doc, keys: order.keys}, nil
}

// addTOMLKey records every part of a (possibly dotted) key below base and
// returns the path of the last part.
func (o *keyOrder) addTOMLKey(base []string, key unstable.Iterator) []string {
	path := append([]string(nil), base...)
	for key.Next() {
		name := string(key.Node().Data)
		o.add(path, name)
		path = append(path, name)
	}
	return path
}

func (o *keyOrder) addTOMLKeyValue(table []string, kv *unstable.Node) {
	path := o.addTOMLKey(table, kv.Key())
	if v := kv.Value(); v != nil && v.Kind == unstable.InlineTable {
		children := v.Children()
		for children.Next() {
			o.addTOMLKeyValue(path, children.Node())
		}
	}
}

func parseYAML(data []byte) (*Document, error) {
	doc := map[string]any{}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Format: YAML, Err: err}
	}
	if root.Kind == 0 {
		return &Document{Data: doc}, nil
	}
	if err := root.Decode(&doc); err != nil {
		return nil, &ParseError{Format: YAML, Err: err}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	order := newKeyOrder()
	order.addYAMLNode(nil, &root)
	return &Document{Data: doc, keys: order.keys}, nil
}

func (o *keyOrder) addYAMLNode(path []string, n *yaml.Node) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			o.addYAMLNode(path, c)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if key == "<<" {
				continue
			}
			o.add(path, key)
			o.addYAMLNode(append(append([]string(nil), path...), key), n.Content[i+1])
		}
	}
}
