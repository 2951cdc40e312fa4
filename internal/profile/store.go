package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shopctl/shopctl/internal/logger"
)

// DefaultProfile is the profile assumed active before any switch.
const DefaultProfile = "personal"

var validate = validator.New()

// ValidateName reports whether name is a legal profile name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("%w: %q (use lowercase letters, digits and hyphens)", ErrInvalidName, name)
		}
	}
	return nil
}

// ProfileInfo is one row of a Store listing.
type ProfileInfo struct {
	Name        string `json:"name"`
	CookieCount int    `json:"cookie_count"`
	Domain      string `json:"domain,omitempty"`
}

// Store reads and writes profile files under a single directory.
// Each profile is one JSON array of cookies at <dir>/<name>.json.
type Store struct {
	dir           string
	legacyPath    string // single-file layout read once for DefaultProfile
	brandToken    string
	defaultDomain string
}

// Config holds store construction options.
type Config struct {
	Dir           string // profiles directory
	LegacyPath    string // pre-profiles single cookie file, may be empty
	BrandToken    string // marketplace token looked for in cookie domains
	DefaultDomain string // fallback when no cookie carries the token
}

// NewStore creates a credential store rooted at cfg.Dir.
func NewStore(cfg Config) *Store {
	if cfg.BrandToken == "" {
		cfg.BrandToken = "amazon"
	}
	if cfg.DefaultDomain == "" {
		cfg.DefaultDomain = "www.amazon.com"
	}
	return &Store{
		dir:           cfg.Dir,
		legacyPath:    cfg.LegacyPath,
		brandToken:    cfg.BrandToken,
		defaultDomain: cfg.DefaultDomain,
	}
}

// Path returns the file path for a profile name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Exists reports whether a profile file is present, accounting for the
// legacy fallback of the default profile.
func (s *Store) Exists(name string) bool {
	if _, err := os.Stat(s.Path(name)); err == nil {
		return true
	}
	if name == DefaultProfile && s.legacyPath != "" {
		if _, err := os.Stat(s.legacyPath); err == nil {
			return true
		}
	}
	return false
}

// Names returns the sorted names of all profile files on disk.
func (s *Store) Names() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if s.Exists(DefaultProfile) {
			return []string{DefaultProfile}
		}
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// List enumerates all profiles. A file that fails to parse is still
// listed, with cookie count 0 and no domain, so a corrupt profile stays
// visible instead of silently disappearing.
func (s *Store) List() []ProfileInfo {
	var infos []ProfileInfo
	for _, name := range s.Names() {
		info := ProfileInfo{Name: name}
		cookies, err := s.readFile(s.Path(name))
		if err != nil {
			logger.Warn("profile file unreadable", "profile", name, "error", err)
		} else {
			info.CookieCount = len(cookies)
			info.Domain = s.DeriveDomain(cookies)
		}
		infos = append(infos, info)
	}
	return infos
}

// Load reads and normalizes the named profile's cookies. A missing file
// yields a *NotFoundError; a present-but-unparseable file yields a parse
// error, so the two are distinguishable with errors.Is.
func (s *Store) Load(name string) ([]Cookie, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	path := s.Path(name)
	if _, err := os.Stat(path); err != nil {
		if name == DefaultProfile && s.legacyPath != "" {
			return s.migrateLegacy()
		}
		return nil, &NotFoundError{Name: name, Available: s.Names()}
	}

	cookies, err := s.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile %q: %w", name, err)
	}
	return cookies, nil
}

// migrateLegacy reads the single-file layout once and copies it into the
// profiles directory so subsequent loads hit the new layout directly.
func (s *Store) migrateLegacy() ([]Cookie, error) {
	if _, err := os.Stat(s.legacyPath); err != nil {
		return nil, &NotFoundError{Name: DefaultProfile, Available: s.Names()}
	}

	cookies, err := s.readFile(s.legacyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse legacy cookie file: %w", err)
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := s.writeAtomic(s.Path(DefaultProfile), data); err != nil {
		// The legacy data still loaded; migration failing is not fatal.
		logger.Warn("failed to migrate legacy cookie file", "error", err)
	} else {
		logger.Info("migrated legacy cookie file", "profile", DefaultProfile)
	}
	return cookies, nil
}

// Save validates and overwrites the named profile's cookie file.
// Validation failures touch no disk and name their specific cause.
func (s *Store) Save(name string, payload []byte) (int, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return 0, fmt.Errorf("%w: payload is not a JSON array", ErrInvalidPayload)
	}
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: cookie array is empty", ErrInvalidPayload)
	}

	cookies := make([]Cookie, 0, len(raw))
	for i, r := range raw {
		var c Cookie
		if err := json.Unmarshal(r, &c); err != nil {
			return 0, fmt.Errorf("%w: element %d is not a cookie object", ErrInvalidPayload, i)
		}
		if err := validate.Struct(struct {
			Name   string `validate:"required"`
			Value  string `validate:"required"`
			Domain string `validate:"required"`
		}{c.Name, c.Value, c.Domain}); err != nil {
			return 0, fmt.Errorf("%w: element %d is missing name, value or domain", ErrInvalidPayload, i)
		}
		cookies = append(cookies, c)
	}
	cookies = NormalizeCookies(cookies)

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := s.writeAtomic(s.Path(name), data); err != nil {
		return 0, fmt.Errorf("failed to write profile %q: %w", name, err)
	}

	logger.Info("profile saved", "profile", name, "cookies", len(cookies))
	return len(cookies), nil
}

// readFile parses one profile file into normalized cookies.
func (s *Store) readFile(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- paths come from the configured profiles dir
	if err != nil {
		return nil, err
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, err
	}
	return NormalizeCookies(cookies), nil
}

// writeAtomic writes data to path via a temp file and rename, so a
// crashed write never leaves a half-written profile behind.
func (s *Store) writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".profile-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// DeriveDomain picks the primary marketplace domain out of a cookie set.
// A dot-prefixed brand domain wins over a www-prefixed one; both are
// stripped to the bare host. With no brand cookie at all, the configured
// default domain is used and the condition logged as low confidence.
func (s *Store) DeriveDomain(cookies []Cookie) string {
	var dotted, www string
	for _, c := range cookies {
		if !strings.Contains(c.Domain, s.brandToken) {
			continue
		}
		switch {
		case strings.HasPrefix(c.Domain, "."):
			if dotted == "" {
				dotted = strings.TrimPrefix(c.Domain, ".")
			}
		case strings.HasPrefix(c.Domain, "www."):
			if www == "" {
				www = strings.TrimPrefix(c.Domain, "www.")
			}
		default:
			if www == "" {
				www = c.Domain
			}
		}
	}
	if dotted != "" {
		return dotted
	}
	if www != "" {
		return www
	}
	logger.Warn("no marketplace cookie found, falling back to default domain",
		"domain", s.defaultDomain)
	return s.defaultDomain
}
