// Package sorter validates a folder of service reports and sorts them into
// category folders.
package sorter

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eykd/svcrpt/internal/domain"
)

// ErrNoDocuments is returned when discovery finds nothing to validate.
var ErrNoDocuments = errors.New("no report files found")

// Source lists the documents of one run.
type Source interface {
	Discover(ctx context.Context) (domain.Listing, error)
}

// Loader reads a document's text.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// Placer copies or moves a document into its category folder and returns
// the destination path.
type Placer interface {
	Place(ctx context.Context, doc domain.Document, category domain.Category) (string, error)
}

// Locker guards the output directory.
type Locker interface {
	TryLock(ctx context.Context) error
	Unlock() error
}

// Classifier decides a document's category.
type Classifier interface {
	Classify(doc domain.Document, text string) (domain.Category, domain.Result)
}

// ValidatorClassifier classifies with a domain validator.
type ValidatorClassifier struct {
	Validator *domain.Validator
}

// Classify validates text.
func (c ValidatorClassifier) Classify(_ domain.Document, text string) (domain.Category, domain.Result) {
	r := c.Validator.Validate(text)
	return domain.Classify(r), r
}

// PMBypass routes preventive-maintenance reports to the pm category without
// validating them; everything else goes to Next.
type PMBypass struct {
	Next     Classifier
	Dirs     []string
	Prefixes []string
}

// Classify implements Classifier.
func (p PMBypass) Classify(doc domain.Document, text string) (domain.Category, domain.Result) {
	if p.Matches(doc) {
		return domain.CategoryPM, domain.Result{}
	}
	return p.Next.Classify(doc, text)
}

// Matches reports whether doc sits under a PM directory or carries a PM
// file name prefix. Both comparisons ignore case.
func (p PMBypass) Matches(doc domain.Document) bool {
	for _, prefix := range p.Prefixes {
		if prefix != "" && strings.HasPrefix(strings.ToLower(doc.Name), strings.ToLower(prefix)) {
			return true
		}
	}
	if doc.Dir == "" || doc.Dir == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(doc.Dir), "/") {
		for _, d := range p.Dirs {
			if strings.EqualFold(part, d) {
				return true
			}
		}
	}
	return false
}

// Options controls one run.
type Options struct {
	// ReportOnly skips placement.
	ReportOnly bool
	// Move records that the placer moves rather than copies.
	Move bool
	// Workers bounds concurrent loads. Values below one mean one.
	Workers int
}

// Outcome is the result for one document.
type Outcome struct {
	Document domain.Document `json:"document"`
	Category domain.Category `json:"category"`
	Codes    []string        `json:"codes"`
	Words    int             `json:"words"`
	Dest     string          `json:"dest,omitempty"`
	// PlaceError is set when the document could not be copied or moved.
	PlaceError string `json:"place_error,omitempty"`
	// Validation is the result the codes were rendered from.
	Validation domain.Result `json:"-"`
}

// Service runs validation batches.
type Service struct {
	source     Source
	loader     Loader
	classifier Classifier
	placer     Placer
	locker     Locker
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService creates a Service. placer and locker may be nil for runs that
// never write.
func NewService(source Source, loader Loader, classifier Classifier, placer Placer, locker Locker, logger zerolog.Logger) *Service {
	return &Service{
		source:     source,
		loader:     loader,
		classifier: classifier,
		placer:     placer,
		locker:     locker,
		logger:     logger,
		now:        time.Now,
	}
}

// Run discovers, validates and, unless opts.ReportOnly, places every
// document. Per-file failures are recorded in the outcomes; only discovery,
// locking and cancellation abort the run.
func (s *Service) Run(ctx context.Context, opts Options) (*Run, error) {
	if s.locker != nil && !opts.ReportOnly {
		if err := s.locker.TryLock(ctx); err != nil {
			return nil, err
		}
		defer s.locker.Unlock()
	}

	run := &Run{ReportOnly: opts.ReportOnly, Move: opts.Move, Started: s.now()}

	listing, err := s.source.Discover(ctx)
	if err != nil {
		return nil, err
	}
	run.Skipped = listing.Skipped
	if listing.Skipped > 0 {
		s.logger.Info().Int("skipped", listing.Skipped).Msg("files in ignored directories were not processed")
	}
	if len(listing.Documents) == 0 {
		return nil, ErrNoDocuments
	}

	outcomes, err := s.classifyAll(ctx, listing.Documents, opts.Workers)
	if err != nil {
		return nil, err
	}

	for i := range outcomes {
		o := &outcomes[i]
		s.logOutcome(o)
		if opts.ReportOnly || s.placer == nil {
			continue
		}
		dest, err := s.placer.Place(ctx, o.Document, o.Category)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.PlaceError = err.Error()
			s.logger.Warn().Err(err).Str("file", o.Document.RelPath).Msg("could not place report")
			continue
		}
		o.Dest = dest
	}

	run.Outcomes = outcomes
	run.Finished = s.now()
	return run, nil
}

// classifyAll loads and classifies docs concurrently. Outcomes keep the
// order of docs.
func (s *Service) classifyAll(ctx context.Context, docs []domain.Document, workers int) ([]Outcome, error) {
	if workers < 1 {
		workers = 1
	}
	outcomes := make([]Outcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.classify(gctx, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (s *Service) classify(ctx context.Context, doc domain.Document) Outcome {
	text, err := s.loader.Load(ctx, doc.Path)
	if err != nil {
		r := domain.Failed(err)
		return Outcome{Document: doc, Category: domain.Classify(r), Codes: r.Strings(), Validation: r}
	}
	cat, r := s.classifier.Classify(doc, text)
	return Outcome{
		Document:   doc,
		Category:   cat,
		Codes:      r.Strings(),
		Words:      domain.WordCount(text),
		Validation: r,
	}
}

func (s *Service) logOutcome(o *Outcome) {
	switch o.Category {
	case domain.CategoryValid:
		s.logger.Debug().Str("file", o.Document.RelPath).Int("words", o.Words).Msg("valid report")
	case domain.CategoryPM:
		s.logger.Debug().Str("file", o.Document.RelPath).Msg("preventive maintenance report skipped")
	default:
		s.logger.Info().
			Str("file", o.Document.RelPath).
			Str("category", string(o.Category)).
			Strs("codes", o.Codes).
			Msg("report needs attention")
	}
}
