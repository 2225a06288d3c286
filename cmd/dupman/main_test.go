package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// testEnv is an isolated configuration with its own index and history.
type testEnv struct {
	configPath string
	stateDir   string
	dataDir    string
}

// newTestEnv writes a configuration keeping every file below t.TempDir().
func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	root := t.TempDir()
	env := testEnv{
		configPath: filepath.Join(root, "config.yaml"),
		stateDir:   filepath.Join(root, "state"),
		dataDir:    filepath.Join(root, "data"),
	}
	if err := os.MkdirAll(env.dataDir, 0750); err != nil {
		t.Fatal(err)
	}

	content := "index_path: " + filepath.Join(env.stateDir, "index.json") + "\n" +
		"history_dir: " + filepath.Join(env.stateDir, "history") + "\n" +
		"workers: 2\n"
	if err := os.WriteFile(env.configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return env
}

// writeFile creates name below the data directory.
func (e testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(e.dataDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with the environment's configuration.
func (e testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun is run failing the test on error.
func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()

	stdout, stderr, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("dupman %v failed: %v\nstderr:\n%s", args, err, stderr)
	}
	return stdout
}
