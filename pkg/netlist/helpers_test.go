package netlist_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
)

func mustParse(t *testing.T, expr string) boolfunc.Function {
	t.Helper()
	f, err := boolfunc.Parse(expr)
	require.NoError(t, err)
	return f
}
