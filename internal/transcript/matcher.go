package transcript

import (
	"context"
	"fmt"
	"podbrief/internal/core"
	"podbrief/internal/logger"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// MatchMode selects the secondary name filter.
type MatchMode string

const (
	// ModeStrict requires the name to end with the Gemini notes suffix.
	ModeStrict MatchMode = "strict"
	// ModeFlexible requires the name to contain one of the configured patterns.
	ModeFlexible MatchMode = "flexible"
)

const (
	// GeminiNotesSuffix is the generator tag Google Meet appends to transcript documents.
	GeminiNotesSuffix = "notes by gemini"

	DefaultSearchDays   = 7
	DefaultMaxDocuments = 500
	DefaultEarlyExit    = 2 * time.Hour
)

// DocumentLister streams document metadata from the document store.
type DocumentLister interface {
	// CheckAccess fails when the listing capability is not granted.
	CheckAccess(ctx context.Context) error
	// CheckFolder fails when folderID cannot be read.
	CheckFolder(ctx context.Context, folderID string) error
	// ListDocuments calls fn for each document in store order until fn
	// returns false or the collection is exhausted. An empty folderID
	// lists the whole collection.
	ListDocuments(ctx context.Context, folderID string, fn func(core.DocumentSummary) bool) error
}

// ContentResolver turns a document handle into validated text.
type ContentResolver interface {
	Resolve(ctx context.Context, doc core.DocumentSummary) (string, bool)
}

// ScanObserver receives the counters of each completed scan.
type ScanObserver interface {
	ObserveScan(scanned, candidates int, earlyExit, capReached bool)
}

// Options configures a Matcher.
type Options struct {
	SearchDays   int       // Radius of the matching window around the meeting start
	FolderID     string    // Optional listing scope
	Mode         MatchMode // strict or flexible
	Patterns     []string  // Name patterns used in flexible mode
	MaxDocuments int       // Hard cap on documents inspected per scan
	EarlyExit    time.Duration
}

// DefaultOptions returns the strict-mode defaults.
func DefaultOptions() Options {
	return Options{
		SearchDays:   DefaultSearchDays,
		Mode:         ModeStrict,
		Patterns:     []string{GeminiNotesSuffix},
		MaxDocuments: DefaultMaxDocuments,
		EarlyExit:    DefaultEarlyExit,
	}
}

// ScanResult describes one pass over the document collection.
type ScanResult struct {
	Scope        string                // Folder ID scanned, empty for the whole collection
	Scanned      int                   // Documents inspected
	TitleMatches []string              // Names that passed the prefix filter
	Candidates   []core.MatchCandidate // Ordered by (TimeDelta, Position)
	EarlyExit    bool
	CapReached   bool
}

// Best returns the selected candidate, if any.
func (r ScanResult) Best() (core.MatchCandidate, bool) {
	if len(r.Candidates) == 0 {
		return core.MatchCandidate{}, false
	}
	return r.Candidates[0], true
}

// Matcher finds the transcript document belonging to a meeting.
type Matcher struct {
	lister   DocumentLister
	resolver ContentResolver
	opts     Options
	observer ScanObserver
}

// NewMatcher creates a matcher. Zero-valued options fall back to defaults.
func NewMatcher(lister DocumentLister, resolver ContentResolver, opts Options) *Matcher {
	defaults := DefaultOptions()
	if opts.SearchDays <= 0 {
		opts.SearchDays = defaults.SearchDays
	}
	if opts.Mode == "" {
		opts.Mode = defaults.Mode
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = defaults.Patterns
	}
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = defaults.MaxDocuments
	}
	if opts.EarlyExit <= 0 {
		opts.EarlyExit = defaults.EarlyExit
	}

	return &Matcher{lister: lister, resolver: resolver, opts: opts}
}

// WithObserver attaches a scan observer and returns the matcher.
func (m *Matcher) WithObserver(o ScanObserver) *Matcher {
	m.observer = o
	return m
}

// Options returns the effective options.
func (m *Matcher) Options() Options {
	return m.opts
}

// FindTranscript returns the resolved text of the best matching document.
// ok is false when nothing matched, when the winner could not be resolved,
// or when the document store failed mid-scan.
func (m *Matcher) FindTranscript(ctx context.Context, meeting core.Meeting) (string, bool) {
	logger.Info("Searching for transcript", "meeting", meeting.Title, "start_time", meeting.StartTime)

	if err := m.lister.CheckAccess(ctx); err != nil {
		logger.Warn("Document listing not available, trying alternative search methods", "meeting", meeting.Title, "error", err.Error())
		return m.findInDescription(ctx, meeting)
	}

	result, err := m.Scan(ctx, meeting)
	if err != nil {
		logger.Error("Error searching documents", err, "meeting", meeting.Title)
		return "", false
	}

	best, ok := result.Best()
	if !ok {
		logger.Info("No matching documents found",
			"meeting", meeting.Title,
			"mode", string(m.opts.Mode),
			"scanned", result.Scanned,
			"title_matches", len(result.TitleMatches),
		)
		return "", false
	}

	logger.Info("Best match selected",
		"meeting", meeting.Title,
		"document", best.Document.Name,
		"document_id", best.Document.ID,
		"hours_difference", fmt.Sprintf("%.1f", best.TimeDelta.Hours()),
		"candidates", len(result.Candidates),
	)

	return m.resolver.Resolve(ctx, best.Document)
}

// Scan walks the document collection and collects candidates for meeting.
func (m *Matcher) Scan(ctx context.Context, meeting core.Meeting) (ScanResult, error) {
	result := ScanResult{Scope: m.scope(ctx)}

	fold := cases.Fold()
	title := fold.String(meeting.Title)
	patterns := make([]string, 0, len(m.opts.Patterns))
	for _, p := range m.opts.Patterns {
		patterns = append(patterns, fold.String(p))
	}

	radius := time.Duration(m.opts.SearchDays) * 24 * time.Hour
	windowStart := meeting.StartTime.Add(-radius)
	windowEnd := meeting.StartTime.Add(radius)

	logger.Debug("Scanning documents",
		"meeting", meeting.Title,
		"scope", scopeLabel(result.Scope),
		"mode", string(m.opts.Mode),
		"window_start", windowStart,
		"window_end", windowEnd,
	)

	err := m.lister.ListDocuments(ctx, result.Scope, func(doc core.DocumentSummary) bool {
		if result.Scanned >= m.opts.MaxDocuments {
			result.CapReached = true
			return false
		}
		position := result.Scanned
		result.Scanned++

		name := fold.String(doc.Name)
		if !strings.HasPrefix(name, title) {
			return true
		}
		result.TitleMatches = append(result.TitleMatches, doc.Name)

		if !m.matchesPattern(name, patterns) {
			logger.Debug("Title match rejected by pattern filter", "document", doc.Name, "mode", string(m.opts.Mode))
			return true
		}

		if doc.LastModified.Before(windowStart) {
			logger.Debug("Skipping old candidate", "document", doc.Name, "reason", "too old", "modified", doc.LastModified)
			return true
		}
		if doc.LastModified.After(windowEnd) {
			logger.Debug("Skipping future candidate", "document", doc.Name, "reason", "too new", "modified", doc.LastModified)
			return true
		}

		candidate := core.NewMatchCandidate(doc, meeting.StartTime, position)
		result.Candidates = append(result.Candidates, candidate)
		logger.Debug("Found candidate", "document", doc.Name, "modified", doc.LastModified, "delta", candidate.TimeDelta.String())

		if candidate.TimeDelta <= m.opts.EarlyExit {
			logger.Info("Found very close match, stopping search early",
				"document", doc.Name,
				"hours_difference", fmt.Sprintf("%.1f", candidate.TimeDelta.Hours()),
			)
			result.EarlyExit = true
			return false
		}
		return true
	})
	if err != nil {
		return result, fmt.Errorf("failed to list documents: %w", err)
	}

	if result.CapReached {
		logger.Warn("Document cap reached, stopping to prevent excessive processing", "scanned", result.Scanned)
	}

	sortCandidates(result.Candidates)

	if m.observer != nil {
		m.observer.ObserveScan(result.Scanned, len(result.Candidates), result.EarlyExit, result.CapReached)
	}

	return result, nil
}

func (m *Matcher) matchesPattern(foldedName string, foldedPatterns []string) bool {
	if m.opts.Mode == ModeFlexible {
		for _, p := range foldedPatterns {
			if strings.Contains(foldedName, p) {
				return true
			}
		}
		return false
	}
	return strings.HasSuffix(foldedName, GeminiNotesSuffix)
}

// scope returns the folder to list, or "" when the folder is unset or unreadable.
func (m *Matcher) scope(ctx context.Context) string {
	if m.opts.FolderID == "" {
		return ""
	}
	if err := m.lister.CheckFolder(ctx, m.opts.FolderID); err != nil {
		logger.Warn("Could not access folder, falling back to entire collection", "folder_id", m.opts.FolderID, "error", err.Error())
		return ""
	}
	return m.opts.FolderID
}

// sortCandidates orders by time delta; equal deltas keep listing order.
func sortCandidates(candidates []core.MatchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].TimeDelta != candidates[j].TimeDelta {
			return candidates[i].TimeDelta < candidates[j].TimeDelta
		}
		return candidates[i].Position < candidates[j].Position
	})
}

func scopeLabel(folderID string) string {
	if folderID == "" {
		return "all documents"
	}
	return "folder:" + folderID
}
