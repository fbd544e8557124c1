package prerequisites

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tests in this file replace lookPath and therefore do not run in parallel.

func withPath(t *testing.T, present ...string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	set := map[string]bool{}
	for _, p := range present {
		set[p] = true
	}
	lookPath = func(name string) (string, error) {
		if set[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
}

func TestCheck_AllPresent(t *testing.T) {
	withPath(t, "getent", "groupadd", "useradd")

	results := Check(AccountTools())

	assert.Len(t, results.Results, 3)
	assert.Empty(t, results.Missing)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
	assert.Equal(t, "/usr/bin/useradd", results.Results[2].Path)
}

func TestCheck_MissingRequired(t *testing.T) {
	withPath(t, "getent")

	results := Check(AccountTools())

	assert.True(t, results.HasErrors())
	assert.EqualError(t, results.Error(), "missing required tools: groupadd, useradd")
}

func TestCheck_MissingOptionalOnly(t *testing.T) {
	withPath(t, "egosh")

	results := Check(EgoTools())

	assert.Len(t, results.Missing, 1)
	assert.Equal(t, "soamview", results.Missing[0].Name)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}
