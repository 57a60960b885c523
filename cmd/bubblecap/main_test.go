package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/bubblecap/pkg/config"
	"github.com/vanderheijden86/bubblecap/pkg/loader"
	"github.com/vanderheijden86/bubblecap/pkg/logger"
	"github.com/vanderheijden86/bubblecap/pkg/model"
	"github.com/vanderheijden86/bubblecap/pkg/server"
	"github.com/vanderheijden86/bubblecap/pkg/stats"
)

const fixture = `{
	"Reliance Industries Ltd": {"mcap": 1700000, "companyname": "Reliance Industries Ltd", "sectorname": "Oil & Gas", "nsesymbol": "RELIANCE", "bsecode": 500325, "isin": "INE002A01018"},
	"HDFC Bank Ltd": {"mcap": 1200000, "companyname": "HDFC Bank Ltd", "sectorname": "Finance", "nsesymbol": "HDFCBANK"},
	"Infosys Ltd": {"mcap": 650000, "companyname": "Infosys Ltd", "sectorname": "Technology", "nsesymbol": "INFY"}
}`

// setup writes the fixture dataset and returns the flags that point at it.
func setup(t *testing.T) (dir string, flags []string) {
	t.Helper()
	dir = t.TempDir()
	data := filepath.Join(dir, "companies.json")
	require.NoError(t, os.WriteFile(data, []byte(fixture), 0o644))
	return dir, []string{
		"--config", filepath.Join(dir, "bubblecap.yaml"),
		"--dataset", data,
		"--log-level", "error",
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "bubblecap dev\n", out)
}

func TestExportSVG(t *testing.T) {
	dir, flags := setup(t)
	target := filepath.Join(dir, "chart.svg")

	out, err := run(t, append([]string{"export", "svg", "--out", target}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "3 bubbles")

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(b)), "<?xml"))
	assert.Contains(t, string(b), "Reliance Industries Ltd")
}

func TestExportPNGWithFocus(t *testing.T) {
	dir, flags := setup(t)
	target := filepath.Join(dir, "chart.png")

	_, err := run(t, append([]string{"export", "png", "--out", target, "--focus", "infosys ltd", "--width", "400", "--height", "300"}, flags...)...)
	require.NoError(t, err)

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(b[:4]))
}

func TestExportErrors(t *testing.T) {
	dir, flags := setup(t)

	_, err := run(t, append([]string{"export", "gif"}, flags...)...)
	assert.Error(t, err)

	_, err = run(t, append([]string{"export", "svg", "--out", filepath.Join(dir, "x.svg"), "--focus", "Nobody"}, flags...)...)
	assert.Error(t, err)

	_, err = run(t, "export", "svg", "--config", filepath.Join(dir, "c.yaml"), "--dataset", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestStatsJSON(t *testing.T) {
	_, flags := setup(t)

	out, err := run(t, append([]string{"stats", "--json", "--top", "2"}, flags...)...)
	require.NoError(t, err)

	var s stats.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 3550000, s.Total, 1e-6)
	require.Len(t, s.Largest, 2)
}

func TestStatsRaw(t *testing.T) {
	_, flags := setup(t)

	out, err := run(t, append([]string{"stats", "--raw"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "# Market caps: companies.json")
	assert.Contains(t, out, "Technology")
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bubblecap.yaml")

	out, err := run(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Padding, cfg.Padding)

	_, err = run(t, "config", "init", "--config", path)
	assert.Error(t, err, "refuses to overwrite")

	_, err = run(t, "config", "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestConfigShowAppliesFlags(t *testing.T) {
	_, flags := setup(t)

	out, err := run(t, append([]string{"config", "show"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "companies.json")
	assert.Contains(t, out, "log.level:        error")
}

func TestInvalidLogLevel(t *testing.T) {
	_, flags := setup(t)
	_, err := run(t, append([]string{"stats", "--raw"}, append(flags, "--log-level", "loud")...)...)
	assert.Error(t, err)
}

func TestForwardReloads(t *testing.T) {
	srv := server.New(server.Config{Addr: "127.0.0.1:0"}, model.NewDataset(), logger.Nop())
	events := make(chan loader.Reload, 2)
	out := make(chan loader.Reload, 2)

	next := model.DatasetOf(model.Company{Name: "Infosys Ltd", MarketCap: model.NewMarketCap(650000)})
	events <- loader.Reload{Err: &loader.ReloadError{Phase: "load", Cause: errors.New("bad json")}}
	events <- loader.Reload{Result: &loader.Result{Dataset: next}, Hash: "abc"}
	close(events)

	forwardReloads(context.Background(), events, out, srv)

	assert.Same(t, next, srv.Dataset(), "successful reload swaps the server dataset")
	require.Len(t, out, 2, "the UI sees failures too")
	assert.NotNil(t, (<-out).Err)
	assert.Equal(t, "abc", (<-out).Hash)
}

func TestForwardReloads_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	forwardReloads(ctx, make(chan loader.Reload), nil, nil)
}
