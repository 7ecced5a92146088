package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArgsPrependsCompileWhenEmpty(t *testing.T) {
	got := normalizeArgs(nil)
	assert.Equal(t, []string{"compile"}, got)
}

func TestNormalizeArgsPrependsCompileForModelFile(t *testing.T) {
	got := normalizeArgs([]string{"model.tml", "-v"})
	assert.Equal(t, []string{"compile", "model.tml", "-v"}, got)
}

func TestNormalizeArgsLeavesExplicitCompileAlone(t *testing.T) {
	got := normalizeArgs([]string{"compile", "model.tml"})
	assert.Equal(t, []string{"compile", "model.tml"}, got)
}

func TestNormalizeArgsLeavesVersionAndHelpAlone(t *testing.T) {
	assert.Equal(t, []string{"--version"}, normalizeArgs([]string{"--version"}))
	assert.Equal(t, []string{"--help"}, normalizeArgs([]string{"--help"}))
}
