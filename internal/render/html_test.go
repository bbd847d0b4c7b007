package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML_WrapsBody(t *testing.T) {
	got, err := HTMLString("Yeezus", "line one\nline two")
	require.NoError(t, err)

	assert.Contains(t, got, "<!DOCTYPE html>")
	assert.Contains(t, got, "<title>Yeezus</title>")
	assert.Contains(t, got, "line one\nline two")
}

func TestHTML_EscapesModelOutput(t *testing.T) {
	got, err := HTMLString("t", `<script>alert("x")</script> & more`)
	require.NoError(t, err)

	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;")
	assert.Contains(t, got, "&amp; more")
}

func TestHTML_EmptyBody(t *testing.T) {
	got, err := HTMLString("", "")
	require.NoError(t, err)
	assert.Contains(t, got, `<div class="content"></div>`)
}
