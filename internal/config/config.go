// Package config loads optional per-project defaults for cargo-dockerize.
//
// A project can commit a defaults file next to Cargo.toml so that release
// jobs do not have to repeat the same flags. The first existing file wins:
//
//	.dockerize.yaml
//	.dockerize.yml
//	.dockerize.json   (JSON with comments, parsed via github.com/tidwall/jsonc)
//
// Example .dockerize.yaml:
//
//	name: ghcr.io/acme/svc
//	dockerfile: docker/Dockerfile
//	tags: [latest]
//	labels:
//	  vendor: Acme
//	  licenses: MIT
//
// Values from the file are defaults only; the CLI overrides any of them
// with an explicitly set flag.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// FileNames lists the recognised defaults files in lookup order.
var FileNames = []string{".dockerize.yaml", ".dockerize.yml", ".dockerize.json"}

// Defaults mirrors the CLI flags. Zero values mean "not set".
type Defaults struct {
	Name       string   `yaml:"name" json:"name"`
	Tag        string   `yaml:"tag" json:"tag"`
	Dockerfile string   `yaml:"dockerfile" json:"dockerfile"`
	Tags       []string `yaml:"tags" json:"tags"`

	// Export is a pointer so an explicit "export: false" is distinguishable
	// from an absent key.
	Export *bool `yaml:"export" json:"export"`

	Labels LabelDefaults `yaml:"labels" json:"labels"`
}

// LabelDefaults holds default provenance label values.
type LabelDefaults struct {
	Title           string `yaml:"title" json:"title"`
	Description     string `yaml:"description" json:"description"`
	Authors         string `yaml:"authors" json:"authors"`
	URL             string `yaml:"url" json:"url"`
	Source          string `yaml:"source" json:"source"`
	Vendor          string `yaml:"vendor" json:"vendor"`
	Licenses        string `yaml:"licenses" json:"licenses"`
	ApplicationName string `yaml:"application-name" json:"application-name"`
}

// Find returns the path of the first defaults file present in root, or ""
// when there is none.
func Find(root string) string {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads the defaults file in root. A project without a defaults file
// yields empty Defaults and an empty path.
//
// Returns a CLIError with ExitIOError if the file cannot be read and
// ExitParseError if it is malformed or contains unknown keys.
func Load(root string) (*Defaults, string, error) {
	path := Find(root)
	if path == "" {
		return &Defaults{}, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, model.WrapCLIError(model.ExitIOError,
			fmt.Sprintf("failed to read %s", path), err)
	}

	var d *Defaults
	if filepath.Ext(path) == ".json" {
		d, err = ParseJSON(data)
	} else {
		d, err = ParseYAML(data)
	}
	if err != nil {
		return nil, path, model.WrapCLIError(model.ExitParseError,
			fmt.Sprintf("failed to parse %s", path), err)
	}
	return d, path, nil
}

// ParseYAML decodes YAML defaults. Unknown keys are rejected so that a
// misspelled option does not silently fall back to the built-in default.
func ParseYAML(data []byte) (*Defaults, error) {
	var d Defaults
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &d, nil
}

// ParseJSON decodes JSON defaults after stripping comments and trailing
// commas. Unknown keys are rejected.
func ParseJSON(data []byte) (*Defaults, error) {
	var d Defaults
	clean := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(clean)) == 0 {
		return &d, nil
	}

	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
