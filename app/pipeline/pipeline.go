package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Sveder/awesome-web-dev-baseline/app/classifier"
	"github.com/Sveder/awesome-web-dev-baseline/app/document"
	"github.com/Sveder/awesome-web-dev-baseline/app/feed"
	"github.com/Sveder/awesome-web-dev-baseline/app/profile"
	"github.com/Sveder/awesome-web-dev-baseline/app/registry"
)

// Pipeline runs discovery end to end: read posts, fetch their bodies,
// classify them in batches, drop duplicates and low-confidence candidates,
// and merge what is left into the document with a single write.
type Pipeline struct {
	posts        PostSource
	content      ContentSource
	completer    classifier.Completer
	profile      *profile.Profile
	documentPath string
	dryRun       bool
	recorder     Recorder
	sleep        func(ctx context.Context, d time.Duration) error
}

type Option func(*Pipeline)

func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) {
		p.dryRun = dryRun
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = recorder
	}
}

// WithSleep replaces the pacing delay, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pipeline) {
		p.sleep = sleep
	}
}

func NewPipeline(posts PostSource, content ContentSource, completer classifier.Completer, prof *profile.Profile, documentPath string, opts ...Option) *Pipeline {
	p := &Pipeline{
		posts:        posts,
		content:      content,
		completer:    completer,
		profile:      prof,
		documentPath: documentPath,
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one pass. The returned summary is non-nil even on error.
// Document read and write failures are returned as errors; everything else
// degrades to fewer candidates.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		DryRun:    p.dryRun,
	}

	err := p.run(ctx, summary)
	summary.FinishedAt = time.Now()
	if err != nil {
		summary.Error = err.Error()
	}

	p.record(summary)

	if err != nil {
		slog.Error("Run failed", "id", summary.ID, "error", err, "duration", summary.Duration())
		return summary, err
	}

	slog.Info("Run completed",
		"id", summary.ID,
		"posts", summary.Posts,
		"batches", summary.Batches,
		"candidates", summary.Candidates,
		"duplicates", summary.Duplicates,
		"low_confidence", summary.LowConfidence,
		"added", len(summary.Added),
		"written", summary.Written,
		"duration", summary.Duration())

	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, summary *Summary) error {
	doc, err := document.ReadFile(p.documentPath)
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", p.documentPath, err)
	}

	known := registry.NewRegistry(p.profile.Dedup.SharedHosts)
	for _, tool := range doc.KnownTools() {
		known.Add(tool.Name, tool.URL, tool.Description)
	}
	slog.Info("Document loaded", "path", p.documentPath, "known_tools", known.Len())

	posts := p.posts.Read(ctx)
	summary.Posts = len(posts)
	if len(posts) == 0 {
		slog.Info("No posts to process")
		return nil
	}

	clf := classifier.NewClassifier(p.completer, p.profile.Classifier, p.profile.Categories)
	resolver := registry.NewResolver(known, p.completer, p.profile.Dedup)

	var accepted []classifier.Candidate
	batchSize := max(p.profile.Classifier.BatchSize, 1)

	for start := 0; start < len(posts); start += batchSize {
		if start > 0 {
			if err := p.sleep(ctx, p.profile.Pacing.GetBatchDelay()); err != nil {
				return err
			}
		}

		end := min(start+batchSize, len(posts))
		batch, err := p.enrich(ctx, posts[start:end])
		if err != nil {
			return err
		}
		summary.Batches++

		for _, post := range batch {
			if post.HasBody() {
				summary.PostsWithContent++
			}
		}

		slog.Info("Classifying batch", "batch", summary.Batches, "posts", len(batch))
		candidates := clf.Classify(ctx, batch, known.Names())
		summary.Candidates += len(candidates)

		for _, candidate := range candidates {
			decision := p.decide(ctx, resolver, known, candidate)
			summary.Decisions = append(summary.Decisions, decision)

			switch decision.Verdict {
			case VerdictDuplicate:
				summary.Duplicates++
			case VerdictLowConfidence:
				summary.LowConfidence++
			case VerdictAccepted:
				accepted = append(accepted, candidate)
			}
		}
	}

	merged, result := document.Merge(doc, groupByCategory(accepted), p.profile.Document.OnMissingSection)
	summary.Added = result.Added
	summary.SkippedSections = result.SkippedCategories()
	markSkipped(summary.Decisions, result.Skipped)

	for _, category := range summary.SkippedSections {
		slog.Warn("No section for category, entries skipped", "category", category)
	}
	for _, category := range result.Created {
		slog.Info("Section created", "category", category)
	}

	if !result.Changed() || merged.String() == doc.String() {
		slog.Info("Document unchanged", "path", p.documentPath)
		return nil
	}

	if p.dryRun {
		slog.Info("Dry run, document not written", "path", p.documentPath, "added", len(result.Added))
		return nil
	}

	if err := WriteFileAtomic(p.documentPath, merged.Bytes()); err != nil {
		return fmt.Errorf("failed to write document %s: %w", p.documentPath, err)
	}
	summary.Written = true
	slog.Info("Document updated", "path", p.documentPath, "added", len(result.Added))

	return nil
}

// enrich returns a copy of batch with bodies attached. The first post of a
// batch follows the batch delay, the others wait for the post delay.
func (p *Pipeline) enrich(ctx context.Context, batch []feed.Post) ([]feed.Post, error) {
	enriched := make([]feed.Post, len(batch))
	for i, post := range batch {
		if i > 0 {
			if err := p.sleep(ctx, p.profile.Pacing.GetPostDelay()); err != nil {
				return nil, err
			}
		}

		post.Body = p.content.Fetch(ctx, post.URL)
		if !post.HasBody() {
			slog.Warn("No content for post", "url", post.URL)
		}
		enriched[i] = post
	}
	return enriched, nil
}

// decide checks for duplicates first and applies the confidence threshold
// after. Accepted candidates are registered before the next check.
func (p *Pipeline) decide(ctx context.Context, resolver *registry.Resolver, known *registry.Registry, candidate classifier.Candidate) Decision {
	if match, duplicate := resolver.IsDuplicate(ctx, candidate); duplicate {
		slog.Info("Candidate is a duplicate", "name", candidate.Name, "tier", match.Tier, "existing", match.Existing.Name)
		return newDecision(candidate, VerdictDuplicate, fmt.Sprintf("%s match: %s", match.Tier, match.Existing.Name))
	}

	threshold := p.profile.Classifier.MinConfidence
	if candidate.Confidence < threshold {
		slog.Info("Candidate below confidence threshold", "name", candidate.Name, "confidence", candidate.Confidence, "threshold", threshold)
		return newDecision(candidate, VerdictLowConfidence, fmt.Sprintf("confidence %.2f below %.2f", candidate.Confidence, threshold))
	}

	known.Add(candidate.Name, candidate.URL, candidate.Description)
	slog.Info("Candidate accepted", "name", candidate.Name, "category", candidate.Category, "url", candidate.URL, "source", candidate.Source)
	return newDecision(candidate, VerdictAccepted, "")
}

func (p *Pipeline) record(summary *Summary) {
	if p.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.recorder.SaveRun(ctx, summary); err != nil {
		slog.Error("Failed to save run", "id", summary.ID, "error", err)
	}
}

// groupByCategory keeps categories in order of first acceptance and entries
// in acceptance order.
func groupByCategory(accepted []classifier.Candidate) []document.Group {
	var groups []document.Group
	index := make(map[string]int)

	for _, candidate := range accepted {
		entry := document.Entry{
			Name:        candidate.Name,
			URL:         candidate.URL,
			Description: candidate.Description,
		}
		i, ok := index[candidate.Category]
		if !ok {
			i = len(groups)
			index[candidate.Category] = i
			groups = append(groups, document.Group{Category: candidate.Category})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}

	return groups
}

func markSkipped(decisions []Decision, skipped []document.Entry) {
	for _, entry := range skipped {
		for i := range decisions {
			d := &decisions[i]
			if d.Verdict == VerdictAccepted && d.Name == entry.Name && d.URL == entry.URL {
				d.Verdict = VerdictNoSection
				d.Reason = "no section for " + entry.Section
				break
			}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
