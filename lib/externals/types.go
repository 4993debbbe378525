package externals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Descriptor is a resolved asset reference ready to become a script, link or
// meta tag.
type Descriptor struct {
	Path       string         `json:"path,omitempty" toml:"path"`
	Attributes map[string]any `json:"attributes,omitempty" toml:"attributes"`
	// SourcePath is a local file registered as an output asset under Path.
	SourcePath string `json:"sourcePath,omitempty" toml:"sourcePath"`
}

func newDescriptor(path string) *Descriptor {
	return &Descriptor{
		Path:       path,
		Attributes: map[string]any{"crossorigin": true},
	}
}

func (d *Descriptor) Integrity() string {
	if d == nil {
		return ""
	}
	v, _ := d.Attributes["integrity"].(string)
	return v
}

// EntryAssets are the descriptors resolved for one build entry. Script order
// is load order.
type EntryAssets struct {
	Scripts []*Descriptor `json:"scripts"`
	CSS     []*Descriptor `json:"css"`
}

// ScriptPaths returns the paths of all scripts in order.
func (a EntryAssets) ScriptPaths() []string {
	return descriptorPaths(a.Scripts)
}

func (a EntryAssets) CSSPaths() []string {
	return descriptorPaths(a.CSS)
}

func descriptorPaths(list []*Descriptor) []string {
	paths := make([]string, 0, len(list))
	for _, d := range list {
		paths = append(paths, d.Path)
	}
	return paths
}

// Chunk is a named part of the main library. Modules lists the exported
// members routed into it; a chunk without members is always loaded.
type Chunk struct {
	Name    string   `json:"name" toml:"name"`
	Modules []string `json:"modules" toml:"modules"`
}

type CacheGroup struct {
	Name string `json:"name" toml:"name"`
}

// ChunkConfig is the chunk metadata shipped with the main library.
type ChunkConfig struct {
	CacheGroups map[string]CacheGroup `json:"cacheGroups" toml:"cacheGroups"`
	Chunks      []*Chunk              `json:"chunkConfig" toml:"chunkConfig"`
}

// SharedChunks returns the cache group chunk names ordered by group key.
func (c *ChunkConfig) SharedChunks() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.CacheGroups))
	for _, key := range slices.Sorted(maps.Keys(c.CacheGroups)) {
		names = append(names, c.CacheGroups[key].Name)
	}
	return names
}

// External maps a library name to the global it is exposed as.
type External struct {
	Name   string `json:"name" toml:"name"`
	Global string `json:"global" toml:"global"`
}

// Externals keeps the order libraries were declared in. It decodes from a JSON
// object (name to global) or from a list of External.
type Externals []External

func (e *Externals) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []External
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*e = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*e = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("externals: expected object or array, got %v", tok)
	}

	var out Externals
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		out = out.Set(name, globalOf(value))
	}
	*e = out
	return nil
}

func (e Externals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ext := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(ext.Name)
		v, _ := json.Marshal(ext.Global)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// globalOf reads the global binding out of an externals value, which is either
// a string or an object with a "root" key.
func globalOf(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if root, ok := v["root"].(string); ok {
			return root
		}
	}
	return ""
}

func (e Externals) Get(name string) (string, bool) {
	for _, ext := range e {
		if ext.Name == name {
			return ext.Global, true
		}
	}
	return "", false
}

func (e Externals) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

func (e Externals) Names() []string {
	names := make([]string, 0, len(e))
	for _, ext := range e {
		names = append(names, ext.Name)
	}
	return names
}

// Set returns e with name bound to global, keeping the position of an existing
// binding.
func (e Externals) Set(name, global string) Externals {
	for i := range e {
		if e[i].Name == name {
			out := slices.Clone(e)
			out[i].Global = global
			return out
		}
	}
	return append(slices.Clone(e), External{Name: name, Global: global})
}

// Merge returns e overlaid with over. Names keep their first position.
func (e Externals) Merge(over Externals) Externals {
	out := slices.Clone(e)
	for _, ext := range over {
		out = out.Set(ext.Name, ext.Global)
	}
	return out
}

// Globals returns the externals as a name to global map.
func (e Externals) Globals() map[string]string {
	m := make(map[string]string, len(e))
	for _, ext := range e {
		m[ext.Name] = ext.Global
	}
	return m
}
