package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package sources contains the upstream source registry, per-kind shapes and fetchers.

// Categories is the fixed vocabulary shared by every source.
var Categories = []string{"business", "technology", "sports", "entertainment", "health", "science", "politics"}

// IsCategory reports whether c belongs to the shared vocabulary.
// Fetchers do not call it; unknown categories are passed upstream unchanged.
func IsCategory(c string) bool {
	c = strings.ToLower(strings.TrimSpace(c))
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Source is one upstream provider entry.
type Source struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Kind          string            `json:"kind" yaml:"kind"`
	Endpoint      string            `json:"endpoint" yaml:"endpoint"`
	Credential    string            `json:"-" yaml:"-"`
	CredentialEnv string            `json:"credential_env" yaml:"credential_env"`
	Params        map[string]string `json:"params" yaml:"params"`
	Headers       map[string]string `json:"headers" yaml:"headers"`
}

type registryFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry is an immutable set of sources keyed by id.
type Registry struct {
	sources []Source
	idx     map[string]Source
}

// DefaultOptions carries the endpoints and credentials of the built-in sources.
type DefaultOptions struct {
	NewsAPIURL  string
	NewsAPIKey  string
	GuardianURL string
	GuardianKey string
	Language    string
}

const (
	HeadlinesSourceID = "newsapi"
	EditorialSourceID = "guardian"
)

// DefaultSources returns the two base sources.
func DefaultSources(opts DefaultOptions) []Source {
	headlineParams := map[string]string{}
	if lang := strings.TrimSpace(opts.Language); lang != "" {
		headlineParams["language"] = lang
	}
	return []Source{
		{
			ID:         HeadlinesSourceID,
			Name:       "NewsAPI",
			Kind:       KindHeadlines,
			Endpoint:   opts.NewsAPIURL,
			Credential: opts.NewsAPIKey,
			Params:     headlineParams,
		},
		{
			ID:         EditorialSourceID,
			Name:       "The Guardian",
			Kind:       KindEditorial,
			Endpoint:   opts.GuardianURL,
			Credential: opts.GuardianKey,
		},
	}
}

// NewRegistry validates the given sources and indexes them by id.
func NewRegistry(srcs ...Source) (*Registry, error) {
	if len(srcs) == 0 {
		return nil, errors.New("registry contains no sources")
	}

	reg := &Registry{
		sources: make([]Source, 0, len(srcs)),
		idx:     make(map[string]Source, len(srcs)),
	}
	for i := range srcs {
		s := sanitizeSource(srcs[i])
		if err := validateSource(s); err != nil {
			return nil, fmt.Errorf("source[%d]: %w", i, err)
		}
		if _, exists := reg.idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", s.ID)
		}
		reg.sources = append(reg.sources, s)
		reg.idx[s.ID] = s
	}
	return reg, nil
}

// LoadRegistry loads sources from a YAML or JSON file. Credentials are never read
// from the file; each entry's credential_env is resolved through lookupEnv.
func LoadRegistry(path string, lookupEnv func(string) string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sources file path is empty")
	}
	if lookupEnv == nil {
		lookupEnv = os.Getenv
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	rf, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(rf.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	for i := range rf.Sources {
		if env := strings.TrimSpace(rf.Sources[i].CredentialEnv); env != "" {
			rf.Sources[i].Credential = lookupEnv(env)
		}
	}
	return NewRegistry(rf.Sources...)
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		rf, err := unmarshalRegistry(d.name, data, d.fn)
		if err == nil {
			return rf, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return registryFile{}, lastErr
	}
	return registryFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registryFile, error) {
	var rf registryFile
	if err := fn(data, &rf); err != nil {
		return registryFile{}, fmt.Errorf("decode %s sources: %w", name, err)
	}
	return rf, nil
}

func sanitizeSource(s Source) Source {
	s.ID = strings.ToLower(strings.TrimSpace(s.ID))
	s.Name = strings.TrimSpace(s.Name)
	s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.Credential = strings.TrimSpace(s.Credential)
	s.CredentialEnv = strings.TrimSpace(s.CredentialEnv)
	s.Params = sanitizeMap(s.Params)
	s.Headers = sanitizeMap(s.Headers)
	return s
}

// sanitizeMap trims keys and values and drops empty entries.
func sanitizeMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	return out
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for source %q", s.ID)
	}
	if _, ok := ShapeFor(s.Kind); !ok {
		return fmt.Errorf("unknown kind %q for source %q (expected one of %v)", s.Kind, s.ID, Kinds())
	}
	if s.Endpoint == "" {
		return fmt.Errorf("endpoint is required for source %q", s.ID)
	}
	u, err := url.Parse(s.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint %q for source %q is not an absolute URL", s.Endpoint, s.ID)
	}
	return nil
}

// All returns a copy of the registered sources in declaration order.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}
	out := make([]Source, len(r.sources))
	for i, s := range r.sources {
		out[i] = s.clone()
	}
	return out
}

// ByID returns the source entry for the given id.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	s, ok := r.idx[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Source{}, false
	}
	return s.clone(), true
}

// Categories returns a copy of the shared category vocabulary.
func (r *Registry) Categories() []string {
	return append([]string(nil), Categories...)
}

func (s Source) clone() Source {
	s.Params = maps.Clone(s.Params)
	s.Headers = maps.Clone(s.Headers)
	return s
}
