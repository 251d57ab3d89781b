package storage

import "media-etl/models"

// InteractionWriter is the interface any storage backend must satisfy.
type InteractionWriter interface {
	EnsureSchema() error
	Write(interactions []*models.Interaction) (models.InsertSummary, error)
	Close() error
}

// RawRecordWriter is the interface for persisting raw interaction records
// as pipeline input files.
type RawRecordWriter interface {
	WriteFiles(records []models.RawRecord, numFiles int) error
}
