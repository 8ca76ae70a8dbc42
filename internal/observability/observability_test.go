package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.RecordsExported.WithLabelValues("xlsx").Add(5)

	assert.InDelta(t, 5, testutil.ToFloat64(a.RecordsExported.WithLabelValues("xlsx")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.RecordsExported.WithLabelValues("xlsx")), 0)
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sustainability.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "go_goroutines")
}
