package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sveder/awesome-web-dev-baseline/app/classifier"
	"github.com/Sveder/awesome-web-dev-baseline/app/profile"
)

// Duplicate tiers, in the order they are checked.
const (
	TierName     = "name"
	TierDomain   = "domain"
	TierSemantic = "semantic"
)

// Match describes why a candidate was judged a duplicate.
type Match struct {
	Tier     string
	Existing KnownTool
}

type Resolver struct {
	registry  *Registry
	completer classifier.Completer
	settings  profile.DedupSettings
}

// NewResolver creates a resolver over registry. A nil completer disables the
// semantic tier.
func NewResolver(registry *Registry, completer classifier.Completer, settings profile.DedupSettings) *Resolver {
	return &Resolver{
		registry:  registry,
		completer: completer,
		settings:  settings,
	}
}

// IsDuplicate checks the candidate against the registry by exact normalized
// name, then by domain, then by asking the completer to compare it with a
// sample of the registry. A failed semantic check counts as not a duplicate.
func (r *Resolver) IsDuplicate(ctx context.Context, candidate classifier.Candidate) (Match, bool) {
	if existing, ok := r.registry.Lookup(candidate.Name); ok {
		return Match{Tier: TierName, Existing: existing}, true
	}

	if existing, ok := r.registry.LookupDomain(candidate.URL); ok {
		return Match{Tier: TierDomain, Existing: existing}, true
	}

	if r.completer == nil || !r.settings.SemanticEnabled() || r.registry.Len() == 0 {
		return Match{}, false
	}

	sample := r.registry.Sample(r.settings.Sample)
	existing, duplicate, err := r.askSemantic(ctx, candidate, sample)
	if err != nil {
		slog.Warn("Semantic duplicate check failed", "name", candidate.Name, "error", err)
		return Match{}, false
	}
	if !duplicate {
		return Match{}, false
	}

	return Match{Tier: TierSemantic, Existing: existing}, true
}

type semanticResponse struct {
	Duplicate bool   `json:"duplicate"`
	Match     string `json:"match"`
}

func (r *Resolver) askSemantic(ctx context.Context, candidate classifier.Candidate, sample []KnownTool) (KnownTool, bool, error) {
	response, err := r.completer.Complete(ctx, buildSemanticPrompt(candidate, sample), r.settings.MaxTokens)
	if err != nil {
		return KnownTool{}, false, err
	}

	var parsed semanticResponse
	if err := classifier.DecodeJSON(response, &parsed); err != nil {
		return KnownTool{}, false, fmt.Errorf("unreadable verdict: %w", err)
	}
	if !parsed.Duplicate {
		return KnownTool{}, false, nil
	}

	if existing, ok := r.registry.Lookup(parsed.Match); ok {
		return existing, true, nil
	}
	return KnownTool{Name: parsed.Match}, true, nil
}

func buildSemanticPrompt(candidate classifier.Candidate, sample []KnownTool) string {
	var b strings.Builder

	b.WriteString("Decide whether a newly found developer tool is the same product as one already listed, ")
	b.WriteString("for example under a different name, a rebrand or a different edition.\n\n")
	fmt.Fprintf(&b, "New tool: %s (%s)\n", candidate.Name, candidate.URL)
	if candidate.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", candidate.Description)
	}

	b.WriteString("\nListed tools:\n")
	for _, tool := range sample {
		fmt.Fprintf(&b, "- %s (%s)", tool.Name, tool.URL)
		if tool.Description != "" {
			fmt.Fprintf(&b, ": %s", tool.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with JSON only: {\"duplicate\": true, \"match\": \"Listed tool name\"} or {\"duplicate\": false}.")
	return b.String()
}
