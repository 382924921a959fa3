package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/svcrpt/internal/config"
	"github.com/eykd/svcrpt/internal/domain"
	"github.com/eykd/svcrpt/internal/lock"
	"github.com/eykd/svcrpt/internal/report"
	"github.com/eykd/svcrpt/internal/stack"
)

const validReport = "**Date of service:** 3/1\n" +
	"**Technician name:** Sam\n" +
	"**Customer point of contact:** Lee\n" +
	"**Description of problem:** leak under the sink\n" +
	"**Description of work performed:** replaced the trap\n" +
	"**Issue resolved?** yes\n" +
	"**Next steps?** none\n"

const partialReport = "**Date of service:** 3/2\n" +
	"**Technician name:** Sam\n" +
	"**Customer point of contact:** Lee\n" +
	"**Description of problem:** noise\n" +
	"**Description of work performed:** tightened the belt\n" +
	"**Issue resolved?** yes\n"

// project lays out files under a temp working directory and returns an
// environment rooted there plus its stderr buffer.
func project(t *testing.T, files map[string]string) (string, *environment, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	stderr := new(bytes.Buffer)
	return dir, newEnvironment(func() (string, error) { return dir, nil }, stderr), stderr
}

func sortFixture() map[string]string {
	return map[string]string{
		"_in/a.md":             validReport,
		"_in/b.md":             partialReport,
		"_in/c.md":             "Just some notes from the visit.\n",
		"_in/_PM Reports/p.md": validReport,
	}
}

func TestValidateAdapter_ReportOnly(t *testing.T) {
	dir, env, stderr := project(t, sortFixture())

	res, err := (&validateAdapter{env: env}).Validate(context.Background(), ValidateFlags{})

	require.NoError(t, err)
	run := res.Run
	assert.Equal(t, 3, run.Total())
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 1, run.Count(domain.CategoryValid))
	assert.Equal(t, 1, run.Count(domain.CategoryInvalid))
	assert.Equal(t, 1, run.Count(domain.CategoryUnstructured))
	assert.Equal(t, filepath.Join(dir, "_out", "validated"), res.ReportDir)

	for _, name := range []string{report.SummaryFile, report.ErrorSummaryFile, report.RareErrorsFile, report.WordCountsFile} {
		assert.FileExists(t, filepath.Join(res.ReportDir, name))
	}
	assert.NoDirExists(t, filepath.Join(res.ReportDir, "valid"), "report-only must not sort files")
	assert.NoFileExists(t, filepath.Join(dir, "_out", lock.FileName), "report-only must not lock")
	assert.Contains(t, stderr.String(), "validation finished")
}

func TestValidateAdapter_MoveSortsFiles(t *testing.T) {
	dir, env, _ := project(t, sortFixture())
	move := true

	res, err := (&validateAdapter{env: env}).Validate(context.Background(), ValidateFlags{Move: &move})

	require.NoError(t, err)
	assert.False(t, res.Run.ReportOnly)
	assert.FileExists(t, filepath.Join(res.ReportDir, "valid", "a.md"))
	assert.FileExists(t, filepath.Join(res.ReportDir, "invalid", "b.md"))
	assert.FileExists(t, filepath.Join(res.ReportDir, "unstructured", "c.md"))
	assert.NoFileExists(t, filepath.Join(dir, "_in", "a.md"))
	assert.FileExists(t, filepath.Join(dir, "_in", "_PM Reports", "p.md"), "ignored folders are left alone")
	for _, o := range res.Run.Outcomes {
		assert.Empty(t, o.PlaceError, o.Document.RelPath)
	}
}

func TestValidateAdapter_PMBypass(t *testing.T) {
	files := sortFixture()
	files["_in/PM_visit.md"] = "Quarterly filter change.\n"
	files["svcrpt.yaml"] = "pm:\n  enabled: true\n"
	_, env, _ := project(t, files)

	res, err := (&validateAdapter{env: env}).Validate(context.Background(), ValidateFlags{})

	require.NoError(t, err)
	assert.Equal(t, 4, res.Run.Total())
	assert.Equal(t, 1, res.Run.Count(domain.CategoryPM))
}

func TestValidateAdapter_NoReports(t *testing.T) {
	_, env, _ := project(t, map[string]string{"_in/notes.txt": "x"})

	_, err := (&validateAdapter{env: env}).Validate(context.Background(), ValidateFlags{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no report files found")
}

func TestValidateAdapter_ConflictingFlags(t *testing.T) {
	_, env, _ := project(t, sortFixture())
	yes := true

	_, err := (&validateAdapter{env: env}).Validate(context.Background(), ValidateFlags{Move: &yes, ReportOnly: &yes})

	require.Error(t, err)
}

func TestValidateAdapter_OutputInsideInput(t *testing.T) {
	dir, env, _ := project(t, sortFixture())
	input := filepath.Join(dir, "_in")
	output := filepath.Join(input, "_out")

	_, err := (&validateAdapter{env: env}).Validate(context.Background(), ValidateFlags{Input: &input, Output: &output})

	require.ErrorIs(t, err, config.ErrSameDirs)
	assert.NoDirExists(t, output)
}

func TestCheckAdapter(t *testing.T) {
	dir, env, _ := project(t, sortFixture())
	a := &checkAdapter{env: env}

	t.Run("configured input", func(t *testing.T) {
		res, err := a.Check(context.Background(), CheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Files)
		require.Len(t, res.Findings, 2)
		assert.Equal(t, "MISSING_FIELD:Next steps", res.Findings[0].Code)
		assert.Equal(t, SeverityError, res.Findings[0].Severity)
		assert.Equal(t, FindingType(domain.FindingUnstructured), res.Findings[1].Type)
	})

	t.Run("single file", func(t *testing.T) {
		path := filepath.Join(dir, "_in", "a.md")
		res, err := a.Check(context.Background(), CheckRequest{Paths: []string{path}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Files)
		assert.Empty(t, res.Findings)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := a.Check(context.Background(), CheckRequest{Paths: []string{filepath.Join(dir, "absent.md")}})
		var ce *ContextError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "check", ce.Op)
	})
}

func TestNormalizeAdapter(t *testing.T) {
	raw := "**Date**: 3/1\n**Tech name**: Sam\n"
	dir, env, _ := project(t, map[string]string{"r.md": raw})
	path := filepath.Join(dir, "r.md")
	a := &normalizeAdapter{env: env}

	res, err := a.Normalize(context.Background(), path, false)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.Applied)
	assert.Equal(t, "**Date of service:** 3/1\n**Technician name:** Sam\n", res.Normalized)
	assert.Contains(t, res.Codes, "MISSING_FIELD:Next steps")
	data, _ := os.ReadFile(path)
	assert.Equal(t, raw, string(data), "preview must not write")

	res, err = a.Normalize(context.Background(), path, true)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	data, _ = os.ReadFile(path)
	assert.Equal(t, res.Normalized, string(data))

	res, err = a.Normalize(context.Background(), path, true)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.False(t, res.Applied)
}

func TestNormalizeAdapter_CodesMatchValidate(t *testing.T) {
	raw := strings.Replace(validReport, "**Date of service:**", "**Date**:", 1)

	tests := []struct {
		name      string
		config    string
		wantCodes []string
	}{
		{"lenient", "strict: false\n", []string{}},
		{"strict", "strict: true\n", []string{"MISSING_FIELD:Date of service"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, env, _ := project(t, map[string]string{"r.md": raw, "svcrpt.yaml": tt.config})

			res, err := (&normalizeAdapter{env: env}).Normalize(context.Background(), filepath.Join(dir, "r.md"), false)

			require.NoError(t, err)
			assert.ElementsMatch(t, tt.wantCodes, res.Codes)
			assert.True(t, res.Changed)
		})
	}
}

func TestStackAdapter_FolderMode(t *testing.T) {
	dir, env, _ := project(t, map[string]string{
		"_in/north/a.md": validReport,
		"_in/north/b.md": partialReport,
		"_in/south/c.md": validReport,
	})

	res, err := (&stackAdapter{env: env}).Stack(context.Background(), StackFlags{})

	require.NoError(t, err)
	require.Len(t, res.Stacks, 2)
	assert.Equal(t, "north", res.Stacks[0].Name)
	assert.Equal(t, []string{"north/a.md", "north/b.md"}, res.Stacks[0].Reports)
	assert.Equal(t, 3, res.Files)
	assert.Equal(t, filepath.Join(dir, "_out", "stacks"), res.OutputDir)

	for _, s := range res.Stacks {
		data, err := os.ReadFile(filepath.Join(res.OutputDir, s.File))
		require.NoError(t, err)
		assert.Contains(t, string(data), "# "+s.Name+" Reports")
	}
	assert.FileExists(t, filepath.Join(res.OutputDir, stack.LogFile))
}

func TestStackAdapter_ManifestDryRun(t *testing.T) {
	dir, env, _ := project(t, map[string]string{
		"_in/north/a.md": validReport,
		"_in/south/c.md": validReport,
		"stacks.md":      "### Priority\n- c.md\n- gone.md\n\n### Nothing\n- absent.md\n",
	})
	manifestPath := filepath.Join(dir, "stacks.md")

	res, err := (&stackAdapter{env: env}).Stack(context.Background(), StackFlags{Manifest: &manifestPath, DryRun: true})

	require.NoError(t, err)
	require.Len(t, res.Stacks, 1)
	assert.Equal(t, "Priority", res.Stacks[0].Name)
	assert.Equal(t, []string{"gone.md"}, res.Stacks[0].Missing)
	assert.Equal(t, []string{"Nothing"}, res.Empty)
	assert.NoDirExists(t, filepath.Join(dir, "_out", "stacks"), "dry run must not write")
}

func TestStackAdapter_ConfigBasedWithoutManifest(t *testing.T) {
	_, env, _ := project(t, map[string]string{"_in/a.md": validReport})

	_, err := (&stackAdapter{env: env}).Stack(context.Background(), StackFlags{ConfigBased: true})

	require.ErrorIs(t, err, errNoManifest)
}

func TestStackAdapter_Titles(t *testing.T) {
	_, env, _ := project(t, map[string]string{
		"_in/north/a.md":               validReport,
		"__config/readable_titles.csv": "folder,title\nnorth,North Campus\n",
	})

	res, err := (&stackAdapter{env: env}).Stack(context.Background(), StackFlags{DryRun: true})

	require.NoError(t, err)
	require.Len(t, res.Stacks, 1)
	assert.Equal(t, "North Campus", res.Stacks[0].Name)
}

func TestOffloadAdapter(t *testing.T) {
	dir, env, _ := project(t, sortFixture())
	copyFiles := false
	_, err := (&validateAdapter{env: env}).Validate(context.Background(), ValidateFlags{ReportOnly: &copyFiles})
	require.NoError(t, err)

	res, err := (&offloadAdapter{env: env}).Offload(context.Background(), OffloadRequest{})

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "_out", "offload", "c.md")}, res.Moved)
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.Failed)
	assert.Equal(t, 2, res.Remaining)
	assert.NoFileExists(t, filepath.Join(dir, "_in", "c.md"))
}

func TestEnvironment_ConfigDiscovery(t *testing.T) {
	dir, _, _ := project(t, map[string]string{
		"svcrpt.yaml":  "source: reports\noutput: out\nworkers: 2\n",
		"sub/keep.txt": "",
	})
	env := newEnvironment(func() (string, error) { return filepath.Join(dir, "sub"), nil }, new(bytes.Buffer))

	sess, err := env.open(nil)
	require.NoError(t, err)
	defer sess.Close()

	assert.Equal(t, filepath.Join(dir, "reports"), sess.cfg.Source)
	assert.Equal(t, filepath.Join(dir, "out"), sess.cfg.Output)
	assert.Equal(t, 2, sess.cfg.Workers)
}

func TestEnvironment_ExplicitConfigAndOverride(t *testing.T) {
	dir, env, _ := project(t, map[string]string{"conf/custom.yaml": "source: reports\n"})
	configPath = "conf/custom.yaml"
	t.Cleanup(func() { configPath = "" })

	sess, err := env.open(func(cfg *config.Config) { cfg.Output = "elsewhere" })
	require.NoError(t, err)
	defer sess.Close()

	assert.Equal(t, filepath.Join(dir, "conf", "reports"), sess.cfg.Source)
	assert.Equal(t, "elsewhere", sess.cfg.Output, "flag values stay as given")
}

func TestEnvironment_BadConfig(t *testing.T) {
	_, env, _ := project(t, map[string]string{"svcrpt.yaml": "stack:\n  output_ext: .pdf\n"})

	_, err := env.open(nil)

	require.Error(t, err)
}
