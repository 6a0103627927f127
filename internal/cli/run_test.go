package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fmax/internal/synth"
)

// synthServer is a scripted synthesis server for end-to-end command tests.
type synthServer struct {
	trueFmaxHz int64
	anomalous  bool
	noFmax     bool // always fail with no estimate

	compileCalls int
	generatedOps []string
}

func (s *synthServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		var req synth.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		s.generatedOps = append(s.generatedOps, req.OpName)
		json.NewEncoder(w).Encode(synth.GenerateResponse{ModuleText: "module top; endmodule"})
	})
	mux.HandleFunc("/compile", func(w http.ResponseWriter, r *http.Request) {
		s.compileCalls++
		var req synth.CompileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var resp synth.CompileResponse
		switch {
		case s.anomalous:
			resp = synth.CompileResponse{SlackPs: 0, MaxFrequencyHz: 0}
		case s.noFmax:
			resp = synth.CompileResponse{SlackPs: -1, MaxFrequencyHz: 0}
		case req.TargetFrequencyHz <= s.trueFmaxHz:
			resp = synth.CompileResponse{
				SlackPs:        s.trueFmaxHz - req.TargetFrequencyHz,
				MaxFrequencyHz: s.trueFmaxHz,
				Netlist:        "netlist",
			}
		default:
			resp = synth.CompileResponse{
				SlackPs:        -(req.TargetFrequencyHz - s.trueFmaxHz),
				MaxFrequencyHz: s.trueFmaxHz,
			}
		}
		json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeSamples(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const addCatalog = `
samples: [{
	op: "kAdd"
	points: [
		{result_width: 8, operand_widths: [8, 8]},
		{result_width: 16, operand_widths: [16, 16]},
	]
}]
`

func TestRun_EndToEnd(t *testing.T) {
	server := &synthServer{trueFmaxHz: 1000e6}
	srv := server.start(t)
	samples := writeSamples(t, addCatalog)
	checkpoint := filepath.Join(t.TempDir(), "checkpoint.yaml")

	stdout, _, err := execute(t,
		"run", "--samples", samples, "--synth-server", srv.URL, "--checkpoint", checkpoint)
	require.NoError(t, err)

	assert.Contains(t, stdout, "# file-format: fmax/data-points")
	assert.Contains(t, stdout, "# schema-version: 1")
	assert.Contains(t, stdout, "op: kAdd")
	assert.Equal(t, []string{"add", "add"}, server.generatedOps)
	assert.Positive(t, server.compileCalls)

	// Checkpoint was written along the way.
	data, err := os.ReadFile(checkpoint)
	require.NoError(t, err)
	assert.Contains(t, string(data), "op: kAdd")
}

func TestRun_ResumeSkipsRecordedSignatures(t *testing.T) {
	checkpoint := filepath.Join(t.TempDir(), "checkpoint.yaml")

	first := &synthServer{trueFmaxHz: 1000e6}
	srv := first.start(t)
	samples := writeSamples(t, `
samples: [{
	op: "kAdd"
	points: [{result_width: 8, operand_widths: [8, 8]}]
}]
`)
	_, _, err := execute(t,
		"run", "--samples", samples, "--synth-server", srv.URL, "--checkpoint", checkpoint)
	require.NoError(t, err)

	// Re-run with a catalog that adds one new group: only the new
	// signature may reach the generator or the oracle.
	second := &synthServer{trueFmaxHz: 1000e6}
	srv2 := second.start(t)
	samples2 := writeSamples(t, `
samples: [
	{op: "kAdd", points: [{result_width: 8, operand_widths: [8, 8]}]},
	{op: "kSub", points: [{result_width: 8, operand_widths: [8, 8]}]},
]
`)
	stdout, _, err := execute(t,
		"run", "--samples", samples2, "--synth-server", srv2.URL, "--checkpoint", checkpoint)
	require.NoError(t, err)

	assert.Equal(t, []string{"sub"}, second.generatedOps, "recorded signature skipped")
	assert.Contains(t, stdout, "op: kAdd", "dataset still holds the checkpointed point")
	assert.Contains(t, stdout, "op: kSub")
}

func TestRun_NoConvergence(t *testing.T) {
	server := &synthServer{noFmax: true}
	srv := server.start(t)
	samples := writeSamples(t, addCatalog)
	checkpoint := filepath.Join(t.TempDir(), "checkpoint.yaml")

	_, stderr, err := execute(t,
		"run", "--samples", samples, "--synth-server", srv.URL, "--checkpoint", checkpoint)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "no passing frequency")

	_, statErr := os.Stat(checkpoint)
	assert.True(t, os.IsNotExist(statErr), "no data point may be recorded")
}

func TestRun_AnomalousPass(t *testing.T) {
	server := &synthServer{anomalous: true}
	srv := server.start(t)
	samples := writeSamples(t, addCatalog)

	_, stderr, err := execute(t, "run", "--samples", samples, "--synth-server", srv.URL)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "offending module")
	assert.Contains(t, stderr, "// op: kAdd")
	assert.Equal(t, 1, server.compileCalls, "aborts on the first anomalous pass")
}

func TestRun_UnreachableServer(t *testing.T) {
	samples := writeSamples(t, addCatalog)
	_, _, err := execute(t,
		"run", "--samples", samples, "--synth-server", "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRun_BadBounds(t *testing.T) {
	_, _, err := execute(t,
		"run", "--samples", "whatever.cue", "--min-freq-mhz", "800", "--max-freq-mhz", "700")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_MissingCatalog(t *testing.T) {
	server := &synthServer{trueFmaxHz: 1000e6}
	srv := server.start(t)

	_, _, err := execute(t,
		"run", "--samples", filepath.Join(t.TempDir(), "nope.cue"), "--synth-server", srv.URL)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_WithRunLog(t *testing.T) {
	server := &synthServer{trueFmaxHz: 1000e6}
	srv := server.start(t)
	samples := writeSamples(t, addCatalog)
	runlogPath := filepath.Join(t.TempDir(), "runlog.db")

	_, _, err := execute(t,
		"run", "--samples", samples, "--synth-server", srv.URL, "--runlog", runlogPath)
	require.NoError(t, err)

	info, statErr := os.Stat(runlogPath)
	require.NoError(t, statErr)
	assert.Positive(t, info.Size())
}
