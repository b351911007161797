// Package config defines the file-based configuration model for a CSV load.
// Files are JSON or YAML; field names mirror the document structure:
//
//	{
//	  "job":    "people",
//	  "parser": { "options": { "comma": ";", "trim_space": true } },
//	  "transform": [
//	    { "kind": "infer" },
//	    { "kind": "dedupe", "options": { "keys": ["email"], "policy": "keep-last" } }
//	  ],
//	  "storage": {
//	    "kind": "sqlite",
//	    "db": {
//	      "dsn": "file:people.db",
//	      "columns": [ { "name": "age", "type": "integer" } ]
//	    }
//	  },
//	  "metrics": { "backend": "prometheus", "pushgateway_url": "http://pg:9091" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"csvload/internal/ddl"
)

// Load is the top-level object decoded from a config file. Every section is
// optional; command-line flags and environment variables take precedence.
type Load struct {
	// Job names the load in logs and metrics.
	Job string `json:"job" yaml:"job"`

	// Parser configures CSV reading.
	Parser Parser `json:"parser" yaml:"parser"`

	// Transform lists the optional row transforms, applied in order after
	// fully-null rows are removed.
	Transform []Transform `json:"transform" yaml:"transform"`

	// Storage selects the backing store and declares column types.
	Storage Storage `json:"storage" yaml:"storage"`

	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Parser carries CSV options. Recognized keys: comma (string),
// trim_space (bool), lazy_quotes (bool).
type Parser struct {
	Options Options `json:"options" yaml:"options"`
}

// Transform defines a single optional step. Kinds: "infer", "normalize",
// "dedupe" (options: keys []string, policy string).
type Transform struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Options Options `json:"options" yaml:"options"`
}

// Storage selects the store implementation.
type Storage struct {
	// Kind is a registered storage kind: sqlite, postgres, mssql or mysql.
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the database connection and declared column types.
type DBConfig struct {
	// DSN is the driver-specific connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// Columns declares types for CSV columns by normalized header name.
	// Undeclared columns default to string.
	Columns []Column `json:"columns" yaml:"columns"`
}

// Column declares the type of one destination column.
type Column struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Size      *int   `json:"size,omitempty" yaml:"size,omitempty"`
	Precision *int   `json:"precision,omitempty" yaml:"precision,omitempty"`
}

// Descriptor converts the declaration into a ddl.ColumnDescriptor.
func (c Column) Descriptor() ddl.ColumnDescriptor {
	return ddl.ColumnDescriptor{
		Name:      c.Name,
		Type:      ddl.ParseType(c.Type),
		Size:      c.Size,
		Precision: c.Precision,
	}
}

// Metrics selects the metrics backend: "none" (default), "prometheus" or
// "datadog".
type Metrics struct {
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
}

// LoadFile reads a config file, choosing YAML for .yaml/.yml extensions and
// JSON otherwise.
func LoadFile(path string) (*Load, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var l Load
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &l); err != nil {
			return nil, fmt.Errorf("config: parse yaml %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &l); err != nil {
			return nil, fmt.Errorf("config: parse json %s: %w", path, err)
		}
	}
	return &l, nil
}

// FindTransform returns the first transform of the given kind.
func (l *Load) FindTransform(kind string) (Transform, bool) {
	for _, t := range l.Transform {
		if strings.EqualFold(strings.TrimSpace(t.Kind), kind) {
			return t, true
		}
	}
	return Transform{}, false
}

// HasTransform reports whether a transform of the given kind is configured.
func (l *Load) HasTransform(kind string) bool {
	_, ok := l.FindTransform(kind)
	return ok
}

// Descriptors returns the declared columns as ddl descriptors, in file order.
func (l *Load) Descriptors() []ddl.ColumnDescriptor {
	if len(l.Storage.DB.Columns) == 0 {
		return nil
	}
	out := make([]ddl.ColumnDescriptor, len(l.Storage.DB.Columns))
	for i, c := range l.Storage.DB.Columns {
		out[i] = c.Descriptor()
	}
	return out
}

// Options is a small helper to fetch typed values from option bags whose
// shape varies by parser or transform. It performs minimal coercion and
// returns the provided default when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for the CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON makes a null "options" object decode to an empty, non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
