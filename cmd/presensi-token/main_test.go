package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presensi-app/presensi/internal/auth"
)

func TestRun_MintsVerifiableToken(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"--id", "7", "--name", "Sari", "--role", "admin", "--secret", "s", "--issuer", "dev"}, &out)
	require.NoError(t, err)

	id, err := auth.NewVerifier("s", auth.WithIssuer("dev")).Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.UserID)
	assert.Equal(t, "Sari", id.DisplayName)
	assert.Equal(t, "admin", id.Role)
}

func TestRun_RequiresID(t *testing.T) {
	assert.Error(t, run([]string{"--name", "nobody"}, &bytes.Buffer{}))
}
