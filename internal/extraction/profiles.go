package extraction

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

var ErrInvalidProfile = errors.New("invalid extraction profile")

// Profile adds site-specific selectors. They run before the default
// strategies, which are always appended unchanged.
type Profile struct {
	Name               string   `yaml:"name"`
	Enabled            *bool    `yaml:"enabled"`
	Hosts              []string `yaml:"hosts"`
	ChapterSelectors   []string `yaml:"chapter_selectors"`
	ThumbnailSelectors []string `yaml:"thumbnail_selectors"`
}

func (p *Profile) normalizeAndValidate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}

	hosts := make([]string, 0, len(p.Hosts))
	for _, host := range p.Hosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	if len(hosts) == 0 {
		return fmt.Errorf("%w: %s: hosts is required", ErrInvalidProfile, p.Name)
	}
	p.Hosts = hosts

	var err error
	if p.ChapterSelectors, err = compileAll(p.ChapterSelectors); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, p.Name, err)
	}
	if p.ThumbnailSelectors, err = compileAll(p.ThumbnailSelectors); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, p.Name, err)
	}
	if len(p.ChapterSelectors) == 0 && len(p.ThumbnailSelectors) == 0 {
		return fmt.Errorf("%w: %s: no selectors", ErrInvalidProfile, p.Name)
	}

	return nil
}

func (p *Profile) isEnabled() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

func (p *Profile) matchesHost(host string) bool {
	for _, allowed := range p.Hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func compileAll(selectors []string) ([]string, error) {
	out := make([]string, 0, len(selectors))
	for _, selector := range selectors {
		selector = strings.TrimSpace(selector)
		if selector == "" {
			continue
		}
		if _, err := cascadia.Compile(selector); err != nil {
			return nil, fmt.Errorf("selector %q: %w", selector, err)
		}
		out = append(out, selector)
	}
	return out, nil
}

type Registry struct {
	mu       sync.RWMutex
	profiles []Profile
	defaults Strategies
}

func NewRegistry() *Registry {
	return &Registry{defaults: DefaultStrategies()}
}

func (r *Registry) Register(profile Profile) error {
	if err := profile.normalizeAndValidate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.profiles {
		if existing.Name == profile.Name {
			return fmt.Errorf("profile %q already registered", profile.Name)
		}
	}
	r.profiles = append(r.profiles, profile)
	return nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.profiles))
	for _, profile := range r.profiles {
		names = append(names, profile.Name)
	}
	sort.Strings(names)
	return names
}

// StrategiesFor returns the default strategies, prefixed by the selectors of
// the first profile whose hosts match the page URL.
func (r *Registry) StrategiesFor(pageURL string) Strategies {
	strategies := Strategies{
		Chapter:   append([]string(nil), r.defaults.Chapter...),
		Thumbnail: append([]string(nil), r.defaults.Thumbnail...),
	}

	host := hostOf(pageURL)
	if host == "" {
		return strategies
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, profile := range r.profiles {
		if !profile.matchesHost(host) {
			continue
		}
		strategies.Chapter = append(append([]string(nil), profile.ChapterSelectors...), strategies.Chapter...)
		strategies.Thumbnail = append(append([]string(nil), profile.ThumbnailSelectors...), strategies.Thumbnail...)
		break
	}

	return strategies
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// LoadProfiles reads every .yaml/.yml file in dir. A missing directory is
// not an error. Broken files are skipped and reported together.
func LoadProfiles(dir string) (*Registry, error) {
	registry := NewRegistry()

	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return registry, nil
	}

	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return registry, nil
		}
		return registry, fmt.Errorf("read profiles dir: %w", err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			files = append(files, filepath.Join(trimmed, entry.Name()))
		}
	}
	sort.Strings(files)

	problems := make([]string, 0)
	for _, filePath := range files {
		content, err := os.ReadFile(filePath)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}

		var profile Profile
		if err := yaml.Unmarshal(content, &profile); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		if !profile.isEnabled() {
			continue
		}

		if err := registry.Register(profile); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
		}
	}

	if len(problems) > 0 {
		return registry, fmt.Errorf("extraction profiles failed to load: %s", strings.Join(problems, " | "))
	}
	return registry, nil
}
