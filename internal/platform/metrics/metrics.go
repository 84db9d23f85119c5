package metrics

import (
	"sync/atomic"
	"time"
)

// Collector is an injected counter set. Components receive it explicitly;
// there is no package-level instance.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64
	gatewayCalls    uint64
	gatewayBlocked  uint64
	piiDetections   uint64
	exportDownloads uint64
	purgedRecords   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordGatewayCall(blocked bool) {
	atomic.AddUint64(&c.gatewayCalls, 1)
	if blocked {
		atomic.AddUint64(&c.gatewayBlocked, 1)
	}
}

func (c *Collector) RecordPIIDetections(count int) {
	if count > 0 {
		atomic.AddUint64(&c.piiDetections, uint64(count))
	}
}

func (c *Collector) RecordExportDownload() {
	atomic.AddUint64(&c.exportDownloads, 1)
}

func (c *Collector) RecordPurged(count int64) {
	if count > 0 {
		atomic.AddUint64(&c.purgedRecords, uint64(count))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":   total,
		"errorsTotal":     atomic.LoadUint64(&c.errorRequests),
		"avgDurationMs":   avg,
		"gatewayCalls":    atomic.LoadUint64(&c.gatewayCalls),
		"gatewayBlocked":  atomic.LoadUint64(&c.gatewayBlocked),
		"piiDetections":   atomic.LoadUint64(&c.piiDetections),
		"exportDownloads": atomic.LoadUint64(&c.exportDownloads),
		"purgedRecords":   atomic.LoadUint64(&c.purgedRecords),
		"totalDurationMs": totalMs,
	}
}
