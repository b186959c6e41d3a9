package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const residentsJSON = `[
  {"id": "r1", "full_name": "João Pereira", "block": "A", "apartment": "101"},
  {"id": "r2", "full_name": "Maria da Silva", "block": "B", "apartment": "12"}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunMatch(t *testing.T) {
	dir := t.TempDir()
	opts := &matchOptions{
		suggestionPath: writeFile(t, dir, "s.json", `{"resident_name":"MARIA DA SILVA","unit":"B12","carrier":"Correios"}`),
		residentsPath:  writeFile(t, dir, "r.json", residentsJSON),
		trace:          true,
	}

	var out bytes.Buffer
	require.NoError(t, runMatch(&out, opts))

	text := out.String()
	assert.Contains(t, text, "match: Maria da Silva (bloco B, apto 12)")
	assert.Contains(t, text, "carrier: Correios")
	assert.Contains(t, text, "SCORE")
	assert.Contains(t, text, "João Pereira")
}

func TestRunMatch_NoMatch(t *testing.T) {
	dir := t.TempDir()
	opts := &matchOptions{
		suggestionPath: writeFile(t, dir, "s.json", `{"resident_name":"Fulano"}`),
		residentsPath:  writeFile(t, dir, "r.json", residentsJSON),
	}

	var out bytes.Buffer
	require.NoError(t, runMatch(&out, opts))
	assert.Contains(t, out.String(), "match: none")
	assert.NotContains(t, out.String(), "SCORE")
}

func TestRunMatch_BadInput(t *testing.T) {
	dir := t.TempDir()
	opts := &matchOptions{
		suggestionPath: writeFile(t, dir, "s.json", `not json`),
		residentsPath:  writeFile(t, dir, "r.json", residentsJSON),
	}
	err := runMatch(&bytes.Buffer{}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suggestion")

	opts.suggestionPath = filepath.Join(dir, "missing.json")
	assert.Error(t, runMatch(&bytes.Buffer{}, opts))
}

func TestMatchCmd_RequiresFlags(t *testing.T) {
	cmd := newMatchCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
