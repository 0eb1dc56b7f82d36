package setup

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Format is a settings document encoding.
type Format string

// Supported settings formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
	FormatJSON Format = "json"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	switch f {
	case FormatYAML, FormatTOML, FormatINI, FormatJSON:
		return true
	}
	return false
}

// FormatFromPath infers the format from a file extension. Unknown
// extensions yield an invalid Format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".ini", ".cfg", ".conf":
		return FormatINI
	case ".json":
		return FormatJSON
	}
	return Format(strings.TrimPrefix(filepath.Ext(path), "."))
}

// document is a decoded settings file addressed by dotted keys.
type document interface {
	Get(key string) (string, bool)
	Set(key string, value interface{}) error
	Encode() ([]byte, error)
}

// decodeDocument parses data in the given format. Empty data yields an empty
// document.
func decodeDocument(format Format, data []byte) (document, error) {
	switch format {
	case FormatYAML:
		doc, err := decodeYAML(data)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case FormatTOML:
		tree := map[string]interface{}{}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := toml.Unmarshal(data, &tree); err != nil {
				return nil, fmt.Errorf("invalid toml: %w", err)
			}
		}
		return &treeDocument{tree: tree, encode: toml.Marshal}, nil
	case FormatINI:
		cfg, err := ini.Load(data)
		if err != nil {
			return nil, fmt.Errorf("invalid ini: %w", err)
		}
		return &iniDocument{cfg: cfg}, nil
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			data = []byte("{}")
		}
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("invalid json")
		}
		return &jsonDocument{raw: data}, nil
	}
	return nil, fmt.Errorf("unsupported settings format %q", format)
}

// yamlDocument edits the node tree in place, so comments and key order
// survive a Set.
type yamlDocument struct {
	doc *yaml.Node
}

func decodeYAML(data []byte) (*yamlDocument, error) {
	doc := &yaml.Node{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc.Kind = yaml.DocumentNode
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("invalid yaml: root must be a mapping")
	}
	return &yamlDocument{doc: doc}, nil
}

// child returns the value node stored under key in mapping m.
func child(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func (d *yamlDocument) Get(key string) (string, bool) {
	cur := d.doc.Content[0]
	for _, part := range strings.Split(key, ".") {
		if cur.Kind != yaml.MappingNode {
			return "", false
		}
		if cur = child(cur, part); cur == nil {
			return "", false
		}
	}
	if cur.Kind == yaml.ScalarNode {
		return cur.Value, true
	}
	var v interface{}
	if err := cur.Decode(&v); err != nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

func (d *yamlDocument) Set(key string, value interface{}) error {
	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return err
	}

	path := strings.Split(key, ".")
	cur := d.doc.Content[0]
	for i, part := range path {
		last := i == len(path)-1
		next := child(cur, part)
		if next == nil {
			next = &node
			if !last {
				next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			}
			cur.Content = append(cur.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: part}, next)
		} else if last {
			node.HeadComment, node.LineComment, node.FootComment = next.HeadComment, next.LineComment, next.FootComment
			*next = node
		} else if next.Kind != yaml.MappingNode {
			return fmt.Errorf("key %q is not a table", strings.Join(path[:i+1], "."))
		}
		cur = next
	}
	return nil
}

func (d *yamlDocument) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// treeDocument backs TOML, which decodes to nested maps.
type treeDocument struct {
	tree   map[string]interface{}
	encode func(interface{}) ([]byte, error)
}

func (d *treeDocument) Get(key string) (string, bool) {
	v, ok := lookup(d.tree, strings.Split(key, "."))
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}

func (d *treeDocument) Set(key string, value interface{}) error {
	return assign(d.tree, strings.Split(key, "."), value)
}

func (d *treeDocument) Encode() ([]byte, error) {
	return d.encode(d.tree)
}

// iniDocument addresses keys as "section.key"; a key without a dot lives in
// the default section.
type iniDocument struct {
	cfg *ini.File
}

func splitINIKey(key string) (section, name string) {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i], key[i+1:]
	}
	return ini.DefaultSection, key
}

func (d *iniDocument) Get(key string) (string, bool) {
	section, name := splitINIKey(key)
	sec, err := d.cfg.GetSection(section)
	if err != nil || !sec.HasKey(name) {
		return "", false
	}
	return sec.Key(name).String(), true
}

func (d *iniDocument) Set(key string, value interface{}) error {
	section, name := splitINIKey(key)
	d.cfg.Section(section).Key(name).SetValue(fmt.Sprint(value))
	return nil
}

func (d *iniDocument) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.cfg.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// jsonDocument reads with gjson paths and edits the raw bytes with sjson, so
// untouched values keep their exact text.
type jsonDocument struct {
	raw []byte
}

func (d *jsonDocument) Get(key string) (string, bool) {
	res := gjson.GetBytes(d.raw, key)
	if !res.Exists() {
		return "", false
	}
	return res.String(), true
}

func (d *jsonDocument) Set(key string, value interface{}) error {
	if !gjson.ParseBytes(d.raw).IsObject() {
		return errors.New("json root must be an object")
	}
	path := strings.Split(key, ".")
	for i := 1; i < len(path); i++ {
		prefix := strings.Join(path[:i], ".")
		if res := gjson.GetBytes(d.raw, prefix); res.Exists() && !res.IsObject() {
			return fmt.Errorf("key %q is not a table", prefix)
		}
	}
	raw, err := sjson.SetBytes(d.raw, key, value)
	if err != nil {
		return err
	}
	d.raw = raw
	return nil
}

func (d *jsonDocument) Encode() ([]byte, error) {
	return d.raw, nil
}

func lookup(tree map[string]interface{}, path []string) (interface{}, bool) {
	var cur interface{} = tree
	for _, part := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func assign(tree map[string]interface{}, path []string, value interface{}) error {
	cur := tree
	for i, part := range path[:len(path)-1] {
		next, ok := cur[part]
		if !ok {
			child := map[string]interface{}{}
			cur[part] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return fmt.Errorf("key %q is not a table", strings.Join(path[:i+1], "."))
		}
		cur = child
	}
	cur[path[len(path)-1]] = value
	return nil
}
