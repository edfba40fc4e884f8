package content

import (
	"context"
	"errors"
	"fmt"
	"podbrief/internal/core"
	"podbrief/internal/logger"
)

// ExportFormat selects the representation requested from an export endpoint.
type ExportFormat string

const (
	FormatText ExportFormat = "text"
	FormatHTML ExportFormat = "html"
)

// Strategy names, in the order they are attempted.
const (
	StrategyDocument    = "document"
	StrategyExportText  = "export_text"
	StrategyExportHTML  = "export_html"
	StrategyDriveExport = "drive_export"
)

var errInvalidContent = errors.New("content failed validation")

// DocumentReader reads the body text of a rich document natively.
type DocumentReader interface {
	GetDocumentText(ctx context.Context, id string) (string, error)
}

// Exporter downloads a document in an export format.
type Exporter interface {
	FetchExport(ctx context.Context, id string, format ExportFormat) (string, error)
}

// StrategyObserver is notified of the outcome of every extraction attempt.
type StrategyObserver interface {
	ObserveStrategy(strategy string, ok bool)
}

// Strategy is one way of getting text out of a document.
type Strategy struct {
	Name  string
	Fetch func(ctx context.Context, id string) (string, error)
}

// Attempt records the outcome of a single strategy.
type Attempt struct {
	Strategy string
	Length   int
	Err      error
}

// OK reports whether the attempt produced valid text.
func (a Attempt) OK() bool { return a.Err == nil }

// Resolver tries its strategies in order until one yields valid text.
type Resolver struct {
	strategies []Strategy
	observer   StrategyObserver
}

// NewResolver wires the standard strategy chain: native read, text export,
// HTML export and the secondary export endpoint. Nil collaborators are skipped.
func NewResolver(reader DocumentReader, primary, secondary Exporter) *Resolver {
	var strategies []Strategy

	if reader != nil {
		strategies = append(strategies, Strategy{Name: StrategyDocument, Fetch: reader.GetDocumentText})
	}
	if primary != nil {
		strategies = append(strategies,
			Strategy{Name: StrategyExportText, Fetch: func(ctx context.Context, id string) (string, error) {
				return primary.FetchExport(ctx, id, FormatText)
			}},
			Strategy{Name: StrategyExportHTML, Fetch: func(ctx context.Context, id string) (string, error) {
				html, err := primary.FetchExport(ctx, id, FormatHTML)
				if err != nil {
					return "", err
				}
				return ExtractText(html), nil
			}},
		)
	}
	if secondary != nil {
		strategies = append(strategies, Strategy{Name: StrategyDriveExport, Fetch: func(ctx context.Context, id string) (string, error) {
			return secondary.FetchExport(ctx, id, FormatText)
		}})
	}

	return NewResolverWithStrategies(strategies...)
}

// NewResolverWithStrategies builds a resolver over an explicit strategy list.
func NewResolverWithStrategies(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// WithObserver attaches an observer and returns the resolver.
func (r *Resolver) WithObserver(o StrategyObserver) *Resolver {
	r.observer = o
	return r
}

// Strategies returns the names of the configured strategies in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name)
	}
	return names
}

// Resolve returns the first valid text produced for doc. ok is false when
// every strategy failed or returned invalid content.
func (r *Resolver) Resolve(ctx context.Context, doc core.DocumentSummary) (string, bool) {
	logger.Debug("Resolving document content", "document_id", doc.ID, "document", doc.Name, "mime_type", doc.MimeType)

	for _, strategy := range r.strategies {
		if ctx.Err() != nil {
			return "", false
		}
		text, err := r.run(ctx, strategy, doc.ID)
		if err != nil {
			logger.Debug("Extraction strategy failed", "strategy", strategy.Name, "document_id", doc.ID, "error", err.Error())
			continue
		}
		logger.Info("Extraction strategy succeeded",
			"strategy", strategy.Name,
			"document_id", doc.ID,
			"characters", len(text),
			"preview", preview(text, 100),
		)
		return text, true
	}

	logger.Warn("All document access methods failed", "document_id", doc.ID)
	return "", false
}

// Diagnose runs every strategy, without stopping at the first success.
func (r *Resolver) Diagnose(ctx context.Context, id string) []Attempt {
	attempts := make([]Attempt, 0, len(r.strategies))
	for _, strategy := range r.strategies {
		text, err := r.run(ctx, strategy, id)
		attempts = append(attempts, Attempt{Strategy: strategy.Name, Length: len(text), Err: err})
	}
	return attempts
}

func (r *Resolver) run(ctx context.Context, strategy Strategy, id string) (text string, err error) {
	defer func() {
		if r.observer != nil {
			r.observer.ObserveStrategy(strategy.Name, err == nil)
		}
	}()

	text, err = strategy.Fetch(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", strategy.Name, err)
	}
	if !IsValid(text) {
		return text, fmt.Errorf("%s: %w", strategy.Name, errInvalidContent)
	}
	return text, nil
}

func preview(text string, n int) string {
	p := runePrefix(text, n)
	if len(p) < len(text) {
		return p + "..."
	}
	return p
}
