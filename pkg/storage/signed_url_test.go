package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("doc-1", "documents/doc-1.pdf")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	documentID, relPath, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", documentID)
	assert.Equal(t, "documents/doc-1.pdf", relPath)
	assert.Equal(t, expiresAt.Unix(), parsedExpiry.Unix())
}

func TestSignedURLRejectsTamperedSignature(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, _, err := signer.Generate("doc-1", "documents/doc-1.pdf")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "ff"
	_, _, _, err = signer.Parse(tampered)
	require.Error(t, err)
}

func TestSignedURLRejectsSwappedPath(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, _, err := signer.Generate("doc-1", "documents/doc-1.pdf")
	require.NoError(t, err)

	// Replacing the embedded path without re-signing must fail.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 4)
	other, _, err := signer.Generate("doc-1", "documents/other.pdf")
	require.NoError(t, err)
	otherParts := strings.Split(other, ".")
	parts[2] = otherParts[2]

	_, _, _, err = signer.Parse(strings.Join(parts, "."))
	require.Error(t, err)
}

func TestSignedURLRejectsExpiredToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Nanosecond)

	token, _, err := signer.Generate("doc-1", "documents/doc-1.pdf")
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	_, _, _, err = signer.Parse(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestSignedURLRejectsOtherSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	other := NewSignedURLSigner("different", time.Minute)

	token, _, err := signer.Generate("doc-1", "documents/doc-1.pdf")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token)
	require.Error(t, err)
}

func TestSignedURLRequiresInputs(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	_, _, err := signer.Generate("", "documents/doc-1.pdf")
	require.Error(t, err)
	_, _, err = signer.Generate("doc-1", "")
	require.Error(t, err)

	_, _, _, err = signer.Parse("not.a.token")
	require.Error(t, err)
}
