// Package stack concatenates service reports into one file per group so a
// whole site or job can be read, or fed to a language model, in one piece.
package stack

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eykd/svcrpt/internal/domain"
)

// LogFile is the hierarchy log written next to the stacks.
const LogFile = "concat_log.txt"

// ErrNoStacks is returned when no group resolves to any report.
var ErrNoStacks = errors.New("no stacks to build")

// Source lists the reports available for stacking.
type Source interface {
	Discover(ctx context.Context) (domain.Listing, error)
}

// Loader reads a report's text.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// Writer writes one output file.
type Writer interface {
	WriteFile(ctx context.Context, name, content string) error
}

// Locker guards the output directory.
type Locker interface {
	TryLock(ctx context.Context) error
	Unlock() error
}

// Count is the size of a stack.
type Count struct {
	Tokens int  `json:"tokens"`
	Words  int  `json:"words"`
	Exact  bool `json:"exact"`
}

// Counter measures stack text and renders the one-line stack summary.
type Counter interface {
	Count(text string) Count
	Summary(name string, files int, c Count) string
}

// Namer turns stack names into file name stems and identifiers.
type Namer interface {
	Filename(name string) string
	Slug(name string) string
}

// Header is the metadata placed at the top of every stack file.
type Header struct {
	Name      string
	ID        string
	Generated time.Time
	Reports   []string
	Count     Count
}

// Frontmatter strips metadata from reports and renders stack headers.
type Frontmatter interface {
	Strip(doc string) string
	Render(h Header, body string) (string, error)
}

// Definition is a named list of report file names from a manifest.
type Definition struct {
	Name  string
	Files []string
}

// Request describes one stacking run.
type Request struct {
	// Definitions selects manifest mode. When empty, every directory that
	// directly holds reports becomes a stack.
	Definitions []Definition
	// Titles maps a folder's slash-separated relative path to a readable
	// stack name in folder mode.
	Titles map[string]string
	// RootName names the stack of reports at the top of the source.
	RootName   string
	Separator  string
	Ext        string
	DatePrefix string
	DryRun     bool
}

// Stack is one built stack.
type Stack struct {
	Name    string   `json:"name"`
	File    string   `json:"file"`
	Reports []string `json:"reports"`
	Missing []string `json:"missing,omitempty"`
	Failed  []string `json:"failed,omitempty"`
	Count   Count    `json:"count"`
	Summary string   `json:"summary"`
}

// Result is the outcome of a stacking run.
type Result struct {
	Stacks []Stack `json:"stacks"`
	// Empty lists manifest stacks none of whose files were found.
	Empty     []string  `json:"empty,omitempty"`
	Files     int       `json:"files"`
	Generated time.Time `json:"generated"`
	DryRun    bool      `json:"dry_run"`
	Log       string    `json:"-"`
}

// Service builds stacks.
type Service struct {
	source  Source
	loader  Loader
	writer  Writer
	locker  Locker
	counter Counter
	namer   Namer
	fm      Frontmatter
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService wires a Service.
func NewService(source Source, loader Loader, writer Writer, locker Locker, counter Counter, namer Namer, fm Frontmatter, logger zerolog.Logger) *Service {
	return &Service{
		source:  source,
		loader:  loader,
		writer:  writer,
		locker:  locker,
		counter: counter,
		namer:   namer,
		fm:      fm,
		logger:  logger,
		now:     time.Now,
	}
}

// group is a stack before its reports are read.
type group struct {
	name    string
	docs    []domain.Document
	missing []string
}

// Build groups, reads and writes the stacks described by req.
func (s *Service) Build(ctx context.Context, req Request) (*Result, error) {
	if !req.DryRun && s.locker != nil {
		if err := s.locker.TryLock(ctx); err != nil {
			return nil, err
		}
		defer s.locker.Unlock()
	}

	listing, err := s.source.Discover(ctx)
	if err != nil {
		return nil, err
	}

	var groups []group
	res := &Result{Generated: s.now(), DryRun: req.DryRun}
	if len(req.Definitions) > 0 {
		groups, res.Empty = s.fromManifest(listing.Documents, req.Definitions)
	} else {
		groups = fromFolders(listing.Documents, req.Titles, req.RootName)
	}
	if len(groups) == 0 {
		return nil, ErrNoStacks
	}

	used := map[string]bool{}
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, content, err := s.render(ctx, g, req, res.Generated)
		if err != nil {
			return nil, err
		}
		if len(st.Reports) == 0 {
			s.logger.Warn().Str("stack", st.Name).Msg("no readable reports; stack skipped")
			res.Empty = append(res.Empty, st.Name)
			continue
		}
		st.File = uniqueName(used, st.File)
		if !req.DryRun {
			if err := s.writer.WriteFile(ctx, st.File, content); err != nil {
				return nil, fmt.Errorf("writing stack %s: %w", st.File, err)
			}
		}
		s.logger.Info().Str("stack", st.Name).Str("file", st.File).Int("reports", len(st.Reports)).Msg("stack created")
		res.Files += len(st.Reports)
		res.Stacks = append(res.Stacks, st)
	}
	if len(res.Stacks) == 0 {
		return nil, ErrNoStacks
	}

	res.Log = renderLog(res)
	if !req.DryRun {
		if err := s.writer.WriteFile(ctx, LogFile, res.Log); err != nil {
			return nil, fmt.Errorf("writing %s: %w", LogFile, err)
		}
	}
	return res, nil
}

// fromManifest resolves definition file names against discovered documents
// by base name. The first document in path order wins a name clash.
func (s *Service) fromManifest(docs []domain.Document, defs []Definition) ([]group, []string) {
	byName := make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		if prev, ok := byName[d.Name]; ok {
			s.logger.Warn().Str("file", d.RelPath).Str("kept", prev.RelPath).Msg("duplicate report name")
			continue
		}
		byName[d.Name] = d
	}

	var (
		groups []group
		empty  []string
	)
	for _, def := range defs {
		g := group{name: def.Name}
		for _, f := range def.Files {
			d, ok := byName[f]
			if !ok {
				s.logger.Warn().Str("stack", def.Name).Str("file", f).Msg("file not found")
				g.missing = append(g.missing, f)
				continue
			}
			g.docs = append(g.docs, d)
		}
		if len(g.docs) == 0 {
			s.logger.Warn().Str("stack", def.Name).Msg("no matching files found")
			empty = append(empty, def.Name)
			continue
		}
		groups = append(groups, g)
	}
	return groups, empty
}

// fromFolders makes one group per directory that directly holds documents,
// ordered by directory path.
func fromFolders(docs []domain.Document, titles map[string]string, rootName string) []group {
	byDir := map[string]*group{}
	var dirs []string
	for _, d := range docs {
		key := filepath.ToSlash(d.Dir)
		g, ok := byDir[key]
		if !ok {
			name := key
			if key == "." || key == "" {
				name = rootName
			}
			if t, ok := titles[key]; ok {
				name = t
			}
			g = &group{name: name}
			byDir[key] = g
			dirs = append(dirs, key)
		}
		g.docs = append(g.docs, d)
	}
	sort.Strings(dirs)

	groups := make([]group, 0, len(dirs))
	for _, dir := range dirs {
		groups = append(groups, *byDir[dir])
	}
	return groups
}

// render reads a group's reports and returns the stack and its file content.
func (s *Service) render(ctx context.Context, g group, req Request, now time.Time) (Stack, string, error) {
	st := Stack{
		Name:    g.name,
		File:    now.Format(req.DatePrefix) + "_" + s.namer.Filename(g.name) + req.Ext,
		Missing: g.missing,
	}

	type part struct {
		name string
		body string
	}
	var parts []part
	for _, d := range g.docs {
		text, err := s.loader.Load(ctx, d.Path)
		if err != nil {
			if ctx.Err() != nil {
				return Stack{}, "", ctx.Err()
			}
			s.logger.Error().Err(err).Str("file", d.RelPath).Msg("could not read report")
			st.Failed = append(st.Failed, d.RelPath)
			continue
		}
		parts = append(parts, part{name: d.Name, body: s.fm.Strip(text)})
		st.Reports = append(st.Reports, d.RelPath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Reports\n\n", g.name)
	fmt.Fprintf(&b, "*Generated on %s*\n\n", now.Format("2006-01-02 15:04"))
	for i, p := range parts {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, p.name)
		b.WriteString(p.body)
		if i < len(parts)-1 {
			b.WriteString(req.Separator)
		}
	}
	body := b.String()

	st.Count = s.counter.Count(body)
	st.Summary = s.counter.Summary(st.Name, len(st.Reports), st.Count)

	content, err := s.fm.Render(Header{
		Name:      g.name,
		ID:        s.namer.Slug(g.name),
		Generated: now,
		Reports:   st.Reports,
		Count:     st.Count,
	}, body)
	if err != nil {
		return Stack{}, "", fmt.Errorf("rendering header for %s: %w", g.name, err)
	}
	return st, content, nil
}

// uniqueName returns name, or name with _2, _3, ... before the extension
// when an earlier stack already took it.
func uniqueName(used map[string]bool, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	used[candidate] = true
	return candidate
}
