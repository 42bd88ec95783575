package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrv0/svmgen/internal/export"
)

func TestToyExportable(t *testing.T) {
	for _, dim := range []int{1, 3, 7} {
		m, in, out := toy(8, dim)
		require.NoError(t, m.Validate())
		assert.Equal(t, dim, export.InferDim(m.SV))
		f, err := export.NewFormula(m, in, out, 0)
		require.NoError(t, err, "dim %d", dim)
		assert.Equal(t, 8, f.NSV())
	}
}
