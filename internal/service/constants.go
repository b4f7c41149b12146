package service

import "time"

const (
	// DefaultUploadTimeout bounds each fire-and-forget health upload
	DefaultUploadTimeout = 10 * time.Second

	// FallbackInsight is used when no insight could be generated
	FallbackInsight = "Nice work getting out there! Recover well and keep the streak going."

	// Import source label when none is given
	DefaultImportSource = "import"
)
