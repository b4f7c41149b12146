// Package source provides MetricSource implementations for each backing
// platform. The variant is chosen once at startup and injected.
package source

import "runready/internal/health"

var (
	_ health.MetricSource = (*Store)(nil)
	_ health.MetricSource = (*Bridge)(nil)
)
