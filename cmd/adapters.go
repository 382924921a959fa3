package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/eykd/svcrpt/internal/config"
	"github.com/eykd/svcrpt/internal/domain"
	"github.com/eykd/svcrpt/internal/fs"
	"github.com/eykd/svcrpt/internal/lock"
	"github.com/eykd/svcrpt/internal/manifest"
	"github.com/eykd/svcrpt/internal/report"
	"github.com/eykd/svcrpt/internal/sorter"
	"github.com/eykd/svcrpt/internal/stack"
	"github.com/eykd/svcrpt/internal/tokens"
)

// --- validateAdapter ---

type validateAdapter struct {
	env *environment
}

func (a *validateAdapter) Validate(ctx context.Context, flags ValidateFlags) (*ValidateResult, error) {
	sess, err := a.env.open(flags.Apply)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	cfg := sess.cfg

	reportDir := filepath.Join(cfg.Output, cfg.ValidatedDir)
	var placer sorter.Placer
	var locker sorter.Locker
	if !cfg.ReportOnly {
		placer = &fs.OSPlacer{Base: reportDir, Move: cfg.Move}
		lk, err := lock.ForDir(cfg.Output)
		if err != nil {
			return nil, &ContextError{Op: "validate", Path: cfg.Output, Err: err}
		}
		locker = lk
	}

	svc := sorter.NewService(discoverer(cfg, cfg.Source, cfg.IgnoredDirs), fs.OSLoader{}, classifierFor(cfg), placer, locker, sess.logger)
	run, err := svc.Run(ctx, sorter.Options{ReportOnly: cfg.ReportOnly, Move: cfg.Move, Workers: cfg.Workers})
	if err != nil {
		return nil, &ContextError{Op: "validate", Path: cfg.Source, Err: err}
	}

	if err := report.Artifacts(ctx, &fs.OSWriter{Root: reportDir}, run, cfg.RareLimit); err != nil {
		return nil, &ContextError{Op: "validate", Path: reportDir, Err: err}
	}
	sess.logger.Info().
		Int("valid", run.Count(domain.CategoryValid)).
		Int("invalid", run.Count(domain.CategoryInvalid)).
		Int("unstructured", run.Count(domain.CategoryUnstructured)).
		Int("pm", run.Count(domain.CategoryPM)).
		Dur("elapsed", run.Finished.Sub(run.Started)).
		Msg("validation finished")

	return &ValidateResult{Run: run, ReportDir: reportDir, ShowValid: cfg.ShowValid}, nil
}

func discoverer(cfg *config.Config, root string, ignored []string) *fs.Discoverer {
	return &fs.Discoverer{
		Root:        root,
		Recursive:   cfg.Recursive,
		Extensions:  cfg.Extensions,
		IgnoredDirs: ignored,
	}
}

func classifierFor(cfg *config.Config) sorter.Classifier {
	var c sorter.Classifier = sorter.ValidatorClassifier{
		Validator: domain.NewValidator(domain.DefaultCatalog(), domain.WithStrict(cfg.Strict)),
	}
	if cfg.PM.Enabled {
		c = sorter.PMBypass{Next: c, Dirs: cfg.PM.Dirs, Prefixes: cfg.PM.Prefixes}
	}
	return c
}

// --- checkAdapter ---

type checkAdapter struct {
	env *environment
}

func (a *checkAdapter) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	sess, err := a.env.open(func(cfg *config.Config) { setBool(&cfg.Strict, req.Strict) })
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	cfg := sess.cfg

	paths := req.Paths
	if len(paths) == 0 {
		paths = []string{cfg.Source}
	}

	classifier := classifierFor(cfg)
	loader := fs.OSLoader{}
	result := &CheckResult{}
	for _, p := range paths {
		docs, err := collect(ctx, cfg, p)
		if err != nil {
			return nil, &ContextError{Op: "check", Path: p, Err: err}
		}
		for _, doc := range docs {
			var r domain.Result
			text, err := loader.Load(ctx, doc.Path)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				r = domain.Failed(err)
			} else {
				_, r = classifier.Classify(doc, text)
			}
			result.Files++
			for _, f := range domain.Findings(doc.Path, r) {
				result.Findings = append(result.Findings, convertFinding(f))
			}
		}
	}
	sess.logger.Debug().Int("files", result.Files).Int("findings", len(result.Findings)).Msg("check finished")
	return result, nil
}

// collect returns the report at path, or every report under it when it is
// a directory.
func collect(ctx context.Context, cfg *config.Config, path string) ([]domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		listing, err := discoverer(cfg, path, cfg.IgnoredDirs).Discover(ctx)
		if err != nil {
			return nil, err
		}
		return listing.Documents, nil
	}
	name := filepath.Base(path)
	return []domain.Document{{Path: path, RelPath: name, Name: name, Dir: "."}}, nil
}

func convertFinding(f domain.Finding) CheckFinding {
	return CheckFinding{
		Type:     FindingType(f.Type),
		Severity: Severity(f.Severity),
		Code:     f.Code,
		Message:  f.Message,
		Path:     f.Path,
	}
}

// --- normalizeAdapter ---

type normalizeAdapter struct {
	env *environment
}

func (a *normalizeAdapter) Normalize(ctx context.Context, path string, apply bool) (*NormalizeResult, error) {
	sess, err := a.env.open(nil)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	text, err := fs.OSLoader{}.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	normalized := domain.Normalize(text)
	validator := domain.NewValidator(domain.DefaultCatalog(), domain.WithStrict(sess.cfg.Strict))
	result := &NormalizeResult{
		Path:       path,
		Normalized: normalized,
		Changed:    normalized != text,
		Codes:      validator.Validate(text).Strings(),
	}
	if apply && result.Changed {
		if err := fs.ReplaceFile(path, normalized); err != nil {
			return nil, err
		}
		result.Applied = true
		sess.logger.Info().Str("file", path).Msg("report normalized")
	}
	return result, nil
}

// --- stackAdapter ---

type stackAdapter struct {
	env *environment
}

func (a *stackAdapter) Stack(ctx context.Context, flags StackFlags) (*StackResult, error) {
	sess, err := a.env.open(flags.Apply)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	cfg := sess.cfg
	logger := sess.logger

	var defs []stack.Definition
	if flags.UsesManifest() {
		defs, err = loadDefinitions(cfg.Stack.Manifest)
		if err != nil {
			return nil, &ContextError{Op: "stack", Path: cfg.Stack.Manifest, Err: err}
		}
	}

	titles, err := loadTitles(cfg.Stack.TitlesFile)
	if err != nil {
		return nil, &ContextError{Op: "stack", Path: cfg.Stack.TitlesFile, Err: err}
	}

	counter, err := tokens.NewCounter(cfg.Stack.Model)
	if err != nil {
		logger.Warn().Err(err).Str("model", cfg.Stack.Model).Msg("token counts are estimates")
	}

	var locker stack.Locker
	if !flags.DryRun {
		lk, err := lock.ForDir(cfg.Stack.Output)
		if err != nil {
			return nil, &ContextError{Op: "stack", Path: cfg.Stack.Output, Err: err}
		}
		locker = lk
	}

	ignored := make([]string, 0, len(cfg.IgnoredDirs)+len(cfg.Stack.IgnoredDirs))
	ignored = append(ignored, cfg.IgnoredDirs...)
	ignored = append(ignored, cfg.Stack.IgnoredDirs...)
	src := discoverer(cfg, cfg.Source, ignored)
	src.Recursive = true

	svc := stack.NewService(
		src,
		fs.OSLoader{},
		&fs.OSWriter{Root: cfg.Stack.Output},
		locker,
		fs.TokenAdapter{Counter: counter},
		fs.SlugAdapter{},
		fs.FMAdapter{},
		logger,
	)
	res, err := svc.Build(ctx, stack.Request{
		Definitions: defs,
		Titles:      titles,
		RootName:    filepath.Base(cfg.Source),
		Separator:   cfg.Stack.Separator,
		Ext:         cfg.Stack.OutputExt,
		DatePrefix:  cfg.Stack.DatePrefix,
		DryRun:      flags.DryRun,
	})
	if err != nil {
		return nil, &ContextError{Op: "stack", Path: cfg.Source, Err: err}
	}
	return &StackResult{Result: res, OutputDir: cfg.Stack.Output}, nil
}

var errNoManifest = errors.New("no manifest configured: set stack.manifest or pass --manifest")

func loadDefinitions(path string) ([]stack.Definition, error) {
	if path == "" {
		return nil, errNoManifest
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stacks, err := manifest.Parse(filepath.Base(path), string(data))
	if err != nil {
		return nil, err
	}
	defs := make([]stack.Definition, len(stacks))
	for i, s := range stacks {
		defs[i] = stack.Definition{Name: s.Name, Files: s.Files}
	}
	return defs, nil
}

// loadTitles reads the readable-titles CSV. A missing file means no titles.
func loadTitles(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return manifest.ParseTitles(f)
}

// --- offloadAdapter ---

type offloadAdapter struct {
	env *environment
}

func (a *offloadAdapter) Offload(ctx context.Context, req OffloadRequest) (*OffloadResult, error) {
	sess, err := a.env.open(func(cfg *config.Config) {
		if req.Input != "" {
			cfg.Source = req.Input
		}
	})
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	cfg := sess.cfg

	o := &fs.Offloader{
		Input:        cfg.Source,
		Unstructured: orDefault(req.Unstructured, filepath.Join(cfg.Output, cfg.ValidatedDir, string(domain.CategoryUnstructured))),
		Offload:      orDefault(req.Offload, filepath.Join(cfg.Output, "offload")),
		Extension:    cfg.Extensions[0],
	}
	res, err := o.Run(ctx)
	if err != nil {
		return nil, err
	}

	out := &OffloadResult{
		Moved:     res.Moved,
		Missing:   res.Missing,
		Failed:    make(map[string]string, len(res.Failed)),
		Remaining: res.Remaining,
		Target:    o.Offload,
	}
	for name, err := range res.Failed {
		out.Failed[name] = err.Error()
		sess.logger.Warn().Err(err).Str("file", name).Msg("could not offload report")
	}
	sess.logger.Info().Int("moved", len(res.Moved)).Int("missing", len(res.Missing)).Msg("offload finished")
	return out, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// ensure the adapters satisfy the command ports.
var (
	_ ValidateRunner  = (*validateAdapter)(nil)
	_ CheckRunner     = (*checkAdapter)(nil)
	_ NormalizeRunner = (*normalizeAdapter)(nil)
	_ StackRunner     = (*stackAdapter)(nil)
	_ OffloadRunner   = (*offloadAdapter)(nil)
)
