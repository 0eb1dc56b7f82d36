package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/domain/setup"
)

func TestApply_Yes(t *testing.T) {
	w := newWorkspace(t, testPlan)

	out, err := w.run(t, "", "apply", "--yes")
	require.NoError(t, err)

	assert.Contains(t, out, markDone+" ignore")
	assert.Contains(t, out, markDone+" tabs")
	assert.Contains(t, out, "All steps complete.")
	assert.Equal(t, "bin/\n", w.read(t, ".gitignore"))
	assert.Contains(t, w.read(t, "settings.yaml"), "tabSize: 2")
}

func TestApply_Prompt(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		w := newWorkspace(t, testPlan)

		out, err := w.run(t, "n\n", "apply")
		require.NoError(t, err)

		assert.Contains(t, out, "  - ignore")
		assert.Contains(t, out, "Proceed? [y/N]: ")
		assert.Contains(t, out, "Cancelled.")
		assert.False(t, w.exists(".gitignore"))
	})

	t.Run("no answer declines", func(t *testing.T) {
		w := newWorkspace(t, testPlan)

		out, err := w.run(t, "", "apply")
		require.NoError(t, err)
		assert.Contains(t, out, "Cancelled.")
	})

	t.Run("confirmed", func(t *testing.T) {
		w := newWorkspace(t, testPlan)

		out, err := w.run(t, "yes\n", "apply")
		require.NoError(t, err)
		assert.Contains(t, out, "All steps complete.")
		assert.True(t, w.exists(".gitignore"))
	})
}

func TestApply_NothingToDo(t *testing.T) {
	w := newWorkspace(t, testPlan)
	_, err := w.run(t, "", "apply", "--yes")
	require.NoError(t, err)

	out, err := w.run(t, "", "apply")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to do.")
}

func TestApply_Abort(t *testing.T) {
	w := newWorkspace(t, `steps:
  - name: tabs
    kind: setting
    file: missing/settings.yaml
    key: k
    value: 1
`)

	_, err := w.run(t, "", "apply", "--yes")
	require.ErrorIs(t, err, sequence.ErrCannotExecute)
	assert.Contains(t, formatError(err), "Suggestion:")
}

func TestApply_MissingPlan(t *testing.T) {
	w := newWorkspace(t, testPlan)

	_, err := executeCommand(t, "", "--config", w.config, "--plan", w.path("nope.yaml"), "apply", "--yes")
	require.ErrorIs(t, err, setup.ErrPlanNotFound)
}

func TestStatus_JSON(t *testing.T) {
	w := newWorkspace(t, testPlan)

	out, err := w.run(t, "", "status", "--json")
	require.NoError(t, err)

	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "demo", report.Namespace)
	assert.Equal(t, "yaml", report.Store)
	assert.Equal(t, sequence.StateIdle, report.Run.State)
	assert.Equal(t, []string{"ignore"}, report.RequiredIncomplete)
	require.Len(t, report.Run.Steps, 2)
	assert.False(t, report.Run.Steps[0].Complete)
}

func TestStatus_Table(t *testing.T) {
	w := newWorkspace(t, testPlan)
	w.setState(t, "demo.cursor", 1)

	out, err := w.run(t, "", "status")
	require.NoError(t, err)

	assert.Contains(t, out, "STEP")
	assert.Contains(t, out, "Running at step 2 (tabs)")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "0 of 2 steps complete.")
}

func TestCheck(t *testing.T) {
	w := newWorkspace(t, testPlan)

	out, err := w.run(t, "", "check")
	require.ErrorIs(t, err, errRequiredIncomplete)
	assert.Contains(t, out, markFailed+" ignore")

	_, err = w.run(t, "", "apply", "--yes")
	require.NoError(t, err)

	out, err = w.run(t, "", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "All required steps complete.")
}

func TestStop(t *testing.T) {
	w := newWorkspace(t, testPlan)

	out, err := w.run(t, "", "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "No active run.")

	w.setState(t, "demo.cursor", 1)
	out, err = w.run(t, "", "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "Stopped run at step 2 (tabs).")

	out, err = w.run(t, "", "resume")
	require.NoError(t, err)
	assert.Contains(t, out, "No active run.")
}

func TestResume(t *testing.T) {
	w := newWorkspace(t, testPlan)
	w.setState(t, "demo.cursor", 1)

	out, err := w.run(t, "", "resume")
	require.NoError(t, err)

	assert.Contains(t, out, "Resuming at step 2 (tabs).")
	assert.True(t, w.exists("settings.yaml"))
	assert.False(t, w.exists(".gitignore"), "steps before the cursor are not revisited")
}

func TestResume_AfterStop(t *testing.T) {
	w := newWorkspace(t, testPlan)
	w.setState(t, "demo.started", 1)
	w.setState(t, "demo.cursor", 1)

	out, err := w.run(t, "", "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "Stopped run at step 2 (tabs).")

	out, err = w.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Run:   Idle")

	out, err = w.run(t, "", "resume")
	require.NoError(t, err)
	assert.Contains(t, out, "Resuming at step 2 (tabs).")
	assert.True(t, w.exists("settings.yaml"))
	assert.False(t, w.exists(".gitignore"), "steps before the stopped step are not revisited")
}

func TestApply_DeclinedIsNotResumed(t *testing.T) {
	w := newWorkspace(t, testPlan)

	out, err := w.run(t, "n\n", "apply")
	require.NoError(t, err)
	require.Contains(t, out, "Cancelled.")

	out, err = w.run(t, "", "resume")
	require.NoError(t, err)
	assert.Contains(t, out, "No active run.")
	assert.False(t, w.exists(".gitignore"))
}
