package registry

import (
	"testing"

	"github.com/Sveder/awesome-web-dev-baseline/app/profile"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ExampleLint", "examplelint"},
		{"  Example   Lint  ", "example lint"},
		{"EXAMPLELINT", "examplelint"},
		{"Straße", "strasse"},
		{"ＦｕｌｌＷｉｄｔｈ", "fullwidth"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.input); got != tt.want {
			t.Errorf("NormalizeName(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	shared := profile.CommonSharedHosts

	tests := []struct {
		input string
		want  string
	}{
		{"https://www.example.com/x", "example.com"},
		{"http://example.com/", "example.com"},
		{"example.com/docs", "example.com"},
		{"HTTPS://Docs.Example.com:8443/path", "docs.example.com"},
		{"https://github.com/acme/lint", "github.com/acme/lint"},
		{"https://www.github.com/Acme/Lint.git", "github.com/acme/lint"},
		{"https://github.com/acme/lint/tree/main/packages", "github.com/acme/lint"},
		{"https://github.com", "github.com"},
		{"https://marketplace.visualstudio.com/items?itemName=acme.lint", "marketplace.visualstudio.com/items?acme.lint"},
		{"", ""},
		{"://", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDomain(tt.input, shared...); got != tt.want {
			t.Errorf("NormalizeDomain(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}

	if got := NormalizeDomain("https://github.com/acme/lint"); got != "github.com" {
		t.Errorf("Expected bare host without shared hosts, got %q", got)
	}
}

func TestRegistryAdd(t *testing.T) {
	registry := NewRegistry(profile.CommonSharedHosts)

	if !registry.Add("ExampleLint", "https://examplelint.dev", "Lints things") {
		t.Fatal("Expected first add to succeed")
	}
	if registry.Add("examplelint", "https://other.dev", "") {
		t.Error("Expected case variant to be rejected")
	}
	if registry.Add("   ", "https://blank.dev", "") {
		t.Error("Expected blank name to be rejected")
	}
	registry.Add("Second", "https://github.com/acme/second", "")
	registry.Add("Third", "https://github.com/acme/third", "")

	if registry.Len() != 3 {
		t.Fatalf("Expected 3 tools, got %d", registry.Len())
	}
	if !registry.Has("EXAMPLELINT") {
		t.Error("Expected lookup to ignore case")
	}

	tool, ok := registry.LookupDomain("http://www.examplelint.dev/docs")
	if !ok || tool.Name != "ExampleLint" {
		t.Errorf("Expected domain match on ExampleLint, got %+v", tool)
	}
	if _, ok := registry.LookupDomain("https://github.com/acme/fourth"); ok {
		t.Error("Expected distinct projects on a shared host not to match")
	}

	names := registry.Names()
	if len(names) != 3 || names[0] != "ExampleLint" || names[2] != "Third" {
		t.Errorf("Expected insertion order, got %v", names)
	}

	sample := registry.Sample(2)
	if len(sample) != 2 || sample[1].Name != "Second" {
		t.Errorf("Expected first two tools as sample, got %+v", sample)
	}
	if len(registry.Sample(10)) != 3 {
		t.Error("Expected sample to be capped at registry size")
	}
}
