package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSplitPair(t *testing.T) {
	role, name, err := splitPair("fetcher=http")
	require.NoError(t, err)
	assert.Equal(t, "fetcher", role)
	assert.Equal(t, "http", name)

	_, _, err = splitPair("no-equals")
	require.Error(t, err)

	_, _, err = splitPair("=value")
	require.Error(t, err)

	_, _, err = splitPair("key=")
	require.Error(t, err)
}

func TestLoadRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
source = "corpus/manifest.txt"
destination = "out/graph.json"
pool_size = 4
max_items = 100
max_retries = 2
retry_delay = "250ms"

[strategies]
seeder = "manifest"
fetcher = "http"

[options]
base_dir = "corpus"
chunk_size = 256
`), 0o644))

	cfg, err := loadRunConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "corpus/manifest.txt", cfg.Source)
	assert.Equal(t, "out/graph.json", cfg.Destination)
	assert.Equal(t, 4, cfg.PoolSize)
	assert.Equal(t, 100, cfg.MaxItems)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, "250ms", cfg.RetryDelay)
	assert.Equal(t, "manifest", cfg.Strategies["seeder"])
	assert.Equal(t, "http", cfg.Strategies["fetcher"])
	assert.Equal(t, "corpus", cfg.Options["base_dir"])
	assert.Equal(t, int64(256), cfg.Options["chunk_size"])
}

func TestIngestMinimalConfigFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(src, []byte("A short document body."), 0o644))
	out := filepath.Join(dir, "graph.json")

	// Only source and destination: retry settings and the run ID must
	// fall back to the flag defaults.
	cfgPath := filepath.Join(dir, "run.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"source = \""+src+"\"\n"+
			"destination = \""+out+"\"\n"), 0o644))

	err := newApp().Run([]string{"sift", "ingest", "--config", cfgPath})
	require.NoError(t, err)

	_, err = os.Stat(out)
	assert.NoError(t, err, "graph written from a minimal config file")
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	_, err := loadRunConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	run := func(level string) error {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		return setupLogger(cli.NewContext(cli.NewApp(), set, nil))
	}

	for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
		assert.NoError(t, run(level), level)
	}
	assert.Error(t, run("verbose"))
}
