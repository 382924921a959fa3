package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// mockOffloadRunner is a test double for OffloadRunner.
type mockOffloadRunner struct {
	result *OffloadResult
	err    error
	gotReq OffloadRequest
}

func (m *mockOffloadRunner) Offload(ctx context.Context, req OffloadRequest) (*OffloadResult, error) {
	m.gotReq = req
	return m.result, m.err
}

func runOffload(runner OffloadRunner, args ...string) (string, error) {
	cmd := NewOffloadCmd(runner)
	cmd.SetArgs(args)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	err := cmd.Execute()
	return buf.String(), err
}

func sampleOffloadResult() *OffloadResult {
	return &OffloadResult{
		Moved:     []string{"off/a.md", "off/b.md"},
		Missing:   []string{"gone.md"},
		Failed:    map[string]string{"z.md": "permission denied", "y.md": "busy"},
		Remaining: 7,
		Target:    "off",
	}
}

func TestOffloadCmd_HumanOutput(t *testing.T) {
	got, err := runOffload(&mockOffloadRunner{result: sampleOffloadResult()})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "not in input folder: gone.md\n" +
		"could not move y.md: busy\n" +
		"could not move z.md: permission denied\n" +
		"Moved 2 reports to off; 7 reports remain in the input folder\n"
	if got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestOffloadCmd_JSON(t *testing.T) {
	got, err := runOffload(&mockOffloadRunner{result: sampleOffloadResult()}, "--json")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed OffloadResult
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\nraw: %s", err, got)
	}
	if len(parsed.Moved) != 2 || parsed.Remaining != 7 || parsed.Failed["z.md"] != "permission denied" {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestOffloadCmd_PassesFolders(t *testing.T) {
	runner := &mockOffloadRunner{result: &OffloadResult{}}

	_, err := runOffload(runner, "--input", "in", "--unstructured", "u", "--offload", "o")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := OffloadRequest{Input: "in", Unstructured: "u", Offload: "o"}
	if runner.gotReq != want {
		t.Errorf("request = %+v, want %+v", runner.gotReq, want)
	}
}

func TestOffloadCmd_ServiceError(t *testing.T) {
	boom := errors.New("offload: stat _out/validated/unstructured: no such file or directory")

	_, err := runOffload(&mockOffloadRunner{err: boom})

	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
