package profile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(Config{Dir: t.TempDir()})
}

func writeProfile(t *testing.T, s *Store, name string, cookies []Cookie) {
	t.Helper()
	data, err := json.Marshal(cookies)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(name), data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "personal", false},
		{"with hyphen", "work-uk", false},
		{"with digits", "account2", false},
		{"empty", "", true},
		{"uppercase", "Work", true},
		{"underscore", "my_profile", true},
		{"spaces", "my profile", true},
		{"path traversal", "../etc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("error should wrap ErrInvalidName, got %v", err)
			}
		})
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	payload := `[
		{"name": "session-id", "value": "abc123", "domain": ".amazon.com", "sameSite": "no_restriction"},
		{"name": "ubid-main", "value": "xyz", "domain": "www.amazon.com", "secure": true}
	]`

	n, err := s.Save("personal", []byte(payload))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Save reported %d cookies, want 2", n)
	}

	cookies, err := s.Load("personal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cookies) != 2 {
		t.Fatalf("loaded %d cookies, want 2", len(cookies))
	}
	if cookies[0].Name != "session-id" || cookies[0].Value != "abc123" || cookies[0].Domain != ".amazon.com" {
		t.Errorf("first cookie mismatch: %+v", cookies[0])
	}
	if cookies[0].SameSite != SameSiteNone {
		t.Errorf("no_restriction should normalize to None, got %q", cookies[0].SameSite)
	}
	if !cookies[1].Secure {
		t.Error("secure flag lost in round trip")
	}
}

func TestSave_ValidationErrors(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"not an array", `{"name": "a"}`},
		{"empty array", `[]`},
		{"missing value", `[{"name": "a", "domain": "d"}]`},
		{"missing domain", `[{"name": "a", "value": "v"}]`},
		{"element not an object", `["just-a-string"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Save("personal", []byte(tt.payload)); !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("Save(%s) error = %v, want ErrInvalidPayload", tt.payload, err)
			}
			// Validation failures must not touch disk.
			if _, err := os.Stat(s.Path("personal")); !os.IsNotExist(err) {
				t.Error("profile file exists after failed validation")
			}
		})
	}
}

func TestSave_InvalidName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("Bad Name", []byte(`[{"name":"a","value":"v","domain":"d"}]`)); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestLoad_NotFoundVsParseError(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing profile: error = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("error should be a *NotFoundError")
	}

	if err := os.WriteFile(s.Path("broken"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = s.Load("broken")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("parse error must not look like not-found")
	}
}

func TestLoad_NotFoundListsAvailable(t *testing.T) {
	s := newTestStore(t)
	writeProfile(t, s, "work", []Cookie{{Name: "a", Value: "v", Domain: ".amazon.co.uk"}})

	_, err := s.Load("missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if len(nf.Available) != 1 || nf.Available[0] != "work" {
		t.Errorf("Available = %v, want [work]", nf.Available)
	}
}

func TestLoad_LegacyMigration(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "cookies.json")
	if err := os.WriteFile(legacy, []byte(`[{"name":"session-id","value":"legacy","domain":".amazon.com"}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewStore(Config{Dir: filepath.Join(dir, "profiles"), LegacyPath: legacy})

	cookies, err := s.Load(DefaultProfile)
	if err != nil {
		t.Fatalf("Load via legacy fallback failed: %v", err)
	}
	if len(cookies) != 1 || cookies[0].Value != "legacy" {
		t.Fatalf("legacy cookies not loaded: %+v", cookies)
	}

	// The fallback copies into the new layout, so it is used at most once.
	if _, err := os.Stat(s.Path(DefaultProfile)); err != nil {
		t.Errorf("legacy file not migrated into profiles dir: %v", err)
	}

	// A second load must come from the new layout.
	cookies, err = s.Load(DefaultProfile)
	if err != nil {
		t.Fatalf("Load after migration failed: %v", err)
	}
	if len(cookies) != 1 {
		t.Errorf("post-migration load returned %d cookies", len(cookies))
	}
}

func TestLoad_LegacyOnlyForDefaultProfile(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "cookies.json")
	if err := os.WriteFile(legacy, []byte(`[{"name":"a","value":"v","domain":"d"}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewStore(Config{Dir: filepath.Join(dir, "profiles"), LegacyPath: legacy})
	if _, err := s.Load("work"); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-default profile must not fall back to legacy file, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	writeProfile(t, s, "personal", []Cookie{
		{Name: "a", Value: "1", Domain: ".amazon.com"},
		{Name: "b", Value: "2", Domain: ".amazon.com"},
	})
	writeProfile(t, s, "work", []Cookie{
		{Name: "c", Value: "3", Domain: ".amazon.co.uk"},
	})

	infos := s.List()
	if len(infos) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(infos))
	}
	// Names() sorts, so personal comes first.
	if infos[0].Name != "personal" || infos[0].CookieCount != 2 || infos[0].Domain != "amazon.com" {
		t.Errorf("personal entry mismatch: %+v", infos[0])
	}
	if infos[1].Name != "work" || infos[1].CookieCount != 1 || infos[1].Domain != "amazon.co.uk" {
		t.Errorf("work entry mismatch: %+v", infos[1])
	}
}

func TestList_CorruptFileStillVisible(t *testing.T) {
	s := newTestStore(t)
	writeProfile(t, s, "good", []Cookie{{Name: "a", Value: "1", Domain: ".amazon.com"}})
	if err := os.WriteFile(s.Path("corrupt"), []byte("{{{"), 0o600); err != nil {
		t.Fatal(err)
	}

	infos := s.List()
	if len(infos) != 2 {
		t.Fatalf("List returned %d entries, want 2 (corrupt file must stay visible)", len(infos))
	}
	for _, info := range infos {
		if info.Name == "corrupt" {
			if info.CookieCount != 0 || info.Domain != "" {
				t.Errorf("corrupt entry should have count 0 and no domain: %+v", info)
			}
		}
	}
}

func TestDeriveDomain(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name    string
		cookies []Cookie
		want    string
	}{
		{
			"dot prefix preferred over www",
			[]Cookie{
				{Name: "a", Value: "1", Domain: "www.amazon.co.uk"},
				{Name: "b", Value: "2", Domain: ".amazon.co.uk"},
			},
			"amazon.co.uk",
		},
		{
			"www prefix stripped",
			[]Cookie{{Name: "a", Value: "1", Domain: "www.amazon.de"}},
			"amazon.de",
		},
		{
			"no brand cookie falls back to default",
			[]Cookie{{Name: "a", Value: "1", Domain: ".example.com"}},
			"www.amazon.com",
		},
		{
			"empty set falls back to default",
			nil,
			"www.amazon.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.DeriveDomain(tt.cookies); got != tt.want {
				t.Errorf("DeriveDomain = %q, want %q", got, tt.want)
			}
		})
	}
}
