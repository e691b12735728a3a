package cmd

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/credex/internal/regcode"
	"github.com/MeKo-Tech/credex/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyCommand_WithoutRegistry(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, nil, "verify", "PMD-12O45-D")
	require.NoError(t, err)

	var got verifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "PMD-12O45-D", got.Input)
	assert.Equal(t, "12045-D", got.Canonical)
	assert.Equal(t, []string{"12045-D", "12045-O"}, got.Variants)
	assert.Nil(t, got.Verification)
}

func TestVerifyCommand_Registry(t *testing.T) {
	reg := testutil.FixturePath(t, "registry.yaml")
	isolate(t)

	out, _, err := execute(t, nil, "verify", "77I23-0", "--registry", reg, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "canonical: 77123-D\n")
	assert.Contains(t, out, "variants: 77123-D, 77123-O\n")
	assert.Contains(t, out, "registry: found 77123-O\n")
	assert.Contains(t, out, "name: Sara Khan\n")
	assert.Contains(t, out, "licence: valid\n")

	out, _, err = execute(t, nil, "verify", "99999-K", "--registry", reg, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "registry: not found (tried 99999-K)")
}

func TestVerifyCommand_InvalidCode(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, nil, "verify", "12345")
	require.ErrorIs(t, err, regcode.ErrMalformedCode)

	_, _, err = execute(t, nil, "verify", "12345-D", "--format", "xml")
	require.Error(t, err)
}

func TestVerifyCommand_ExpiredLicence(t *testing.T) {
	reg := testutil.FixturePath(t, "registry.yaml")
	isolate(t)

	out, _, err := execute(t, nil, "verify", "40404-K", "--registry", reg, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "registry: found 40404-K\n")
	assert.Contains(t, out, "valid_date: 2001-01-01\n")
	assert.Contains(t, out, "licence: expired\n")

	out, _, err = execute(t, nil, "verify", "40404-K", "--registry", reg)
	require.NoError(t, err)
	var got verifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Verification)
	assert.True(t, got.Verification.Expired)
}
