package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elespike/dfdone/pkg/tml"
)

func TestStringSliceFlagAccumulatesInOrder(t *testing.T) {
	var s stringSliceFlag
	assert.NoError(t, s.Set("data"))
	assert.NoError(t, s.Set("threats"))
	assert.NoError(t, s.Set("measures"))

	assert.Equal(t, []string{"data", "threats", "measures"}, []string(s))
	assert.Equal(t, "data,threats,measures", s.String())
}

func TestStringSliceFlagStartsEmpty(t *testing.T) {
	var s stringSliceFlag
	assert.Equal(t, "", s.String())
	assert.Empty(t, []string(s))
}

func TestSplitKVParsesKeyValue(t *testing.T) {
	k, v, ok := splitKV("rankdir=LR")
	assert.True(t, ok)
	assert.Equal(t, "rankdir", k)
	assert.Equal(t, "LR", v)
}

func TestSplitKVRejectsMissingEquals(t *testing.T) {
	_, _, ok := splitKV("rankdir")
	assert.False(t, ok)
}

func TestSplitKVKeepsFirstEqualsOnly(t *testing.T) {
	k, v, ok := splitKV("label=a=b")
	assert.True(t, ok)
	assert.Equal(t, "label", k)
	assert.Equal(t, "a=b", v)
}

func TestApplyAttrFlagsSetsEachKeyValue(t *testing.T) {
	cfg := tml.DefaultConfig()
	target := map[string]string{}
	flags := stringSliceFlag{"rankdir=LR", "splines=ortho"}

	applyAttrFlags(cfg, flags, target)

	assert.Equal(t, "LR", target["rankdir"])
	assert.Equal(t, "ortho", target["splines"])
}

func TestApplyAttrFlagsSkipsMalformedEntries(t *testing.T) {
	cfg := tml.DefaultConfig()
	target := map[string]string{}
	flags := stringSliceFlag{"no-equals-sign"}

	applyAttrFlags(cfg, flags, target)
	assert.Empty(t, target)
}

func TestResolveSectionsDefaultsWhenNoIncludeGiven(t *testing.T) {
	got := resolveSections(nil, nil)
	assert.NotEmpty(t, got)
}

func TestResolveSectionsHonorsExplicitInclude(t *testing.T) {
	include := stringSliceFlag{"data", "threats"}
	got := resolveSections(include, nil)
	assert.Equal(t, []string{"data", "threats"}, got)
}

func TestResolveSectionsExcludeWinsOverInclude(t *testing.T) {
	include := stringSliceFlag{"data", "threats", "measures"}
	exclude := stringSliceFlag{"threats"}
	got := resolveSections(include, exclude)
	assert.Equal(t, []string{"data", "measures"}, got)
}

func TestNewLoggerDefaultsToWarnLevel(t *testing.T) {
	logger := newLogger(false, false)
	assert.Equal(t, "warn", logger.GetLevel().String())
}

func TestNewLoggerVerboseRaisesToInfo(t *testing.T) {
	logger := newLogger(true, false)
	assert.Equal(t, "info", logger.GetLevel().String())
}

func TestNewLoggerVeryVerboseRaisesToDebug(t *testing.T) {
	logger := newLogger(false, true)
	assert.Equal(t, "debug", logger.GetLevel().String())
}
