package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPanel(t *testing.T) {
	before := testutil.ToFloat64(PanelsRendered.WithLabelValues("generic"))

	RecordPanel("generic")
	RecordPanel("generic")

	assert.Equal(t, before+2, testutil.ToFloat64(PanelsRendered.WithLabelValues("generic")))
}

func TestRecordPrint(t *testing.T) {
	success := testutil.ToFloat64(PrintsRecorded.WithLabelValues("success"))
	failure := testutil.ToFloat64(PrintsRecorded.WithLabelValues("failure"))

	RecordPrint(true)
	RecordPrint(false)
	RecordPrint(false)

	assert.Equal(t, success+1, testutil.ToFloat64(PrintsRecorded.WithLabelValues("success")))
	assert.Equal(t, failure+2, testutil.ToFloat64(PrintsRecorded.WithLabelValues("failure")))
}

func TestHandler(t *testing.T) {
	RecordIngest("api")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `printshelf_records_ingested_total{source="api"}`)
}
