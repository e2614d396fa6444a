package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	ingestStartedTotal   atomic.Uint64
	ingestCompletedTotal atomic.Uint64
	ingestFailedTotal    atomic.Uint64

	queryStartedTotal   atomic.Uint64
	queryCompletedTotal atomic.Uint64
	queryFailedTotal    atomic.Uint64
)

// IncIngestStarted increments the ingestion-started counter.
func IncIngestStarted() { ingestStartedTotal.Add(1) }

// IncIngestCompleted increments the ingestion-completed counter.
func IncIngestCompleted() { ingestCompletedTotal.Add(1) }

// IncIngestFailed increments the ingestion-failed counter.
func IncIngestFailed() { ingestFailedTotal.Add(1) }

// IncQueryStarted increments the query-started counter.
func IncQueryStarted() { queryStartedTotal.Add(1) }

// IncQueryCompleted increments the query-completed counter.
func IncQueryCompleted() { queryCompletedTotal.Add(1) }

// IncQueryFailed increments the query-failed counter.
func IncQueryFailed() { queryFailedTotal.Add(1) }

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "ingest_started_total", "Total document ingestions started", ingestStartedTotal.Load())
	writeCounter(&buf, "ingest_completed_total", "Total document ingestions completed", ingestCompletedTotal.Load())
	writeCounter(&buf, "ingest_failed_total", "Total document ingestions failed", ingestFailedTotal.Load())
	writeCounter(&buf, "query_started_total", "Total document queries started", queryStartedTotal.Load())
	writeCounter(&buf, "query_completed_total", "Total document queries completed", queryCompletedTotal.Load())
	writeCounter(&buf, "query_failed_total", "Total document queries failed", queryFailedTotal.Load())
	return buf.String()
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}
