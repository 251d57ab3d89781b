package pipeline

import (
	"media-etl/extractor"
	"media-etl/models"
	"media-etl/services"
	"media-etl/storage"
	"media-etl/utils"
)

// State tracks pipeline progress. A run advances through the states in
// order; Failed is terminal and reachable from any step.
type State int

const (
	StateInit State = iota
	StateSchemaReady
	StateExtracted
	StateTransformed
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateSchemaReady:
		return "SCHEMA_READY"
	case StateExtracted:
		return "EXTRACTED"
	case StateTransformed:
		return "TRANSFORMED"
	case StateLoaded:
		return "LOADED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Pipeline sequences extract → transform → load against a storage backend.
type Pipeline struct {
	logger      *utils.Logger
	extractor   *extractor.Extractor
	transformer *services.Transformer
	writer      storage.InteractionWriter
}

// New creates a Pipeline writing to the given backend.
func New(logger *utils.Logger, writer storage.InteractionWriter) *Pipeline {
	return &Pipeline{
		logger:      logger,
		extractor:   extractor.New(logger),
		transformer: services.NewTransformer(logger),
		writer:      writer,
	}
}

// Run executes the full pipeline over dataDir. It is fault-contained: every
// failure is logged and reported as the Failed state instead of propagating.
// An empty input directory is a successful run that stops after extraction.
// There are no retries.
func (p *Pipeline) Run(dataDir string) (State, models.InsertSummary) {
	p.logger.Info("[pipeline] Starting ETL pipeline")
	state := StateInit

	if err := p.writer.EnsureSchema(); err != nil {
		return p.fail(state, err)
	}
	state = StateSchemaReady

	raw, err := p.extractor.Extract(dataDir)
	if err != nil {
		return p.fail(state, err)
	}
	state = StateExtracted

	if len(raw) == 0 {
		p.logger.Warn("[pipeline] ETL pipeline completed with no data processed")
		return state, models.InsertSummary{}
	}

	enriched, err := p.transformer.Transform(raw)
	if err != nil {
		return p.fail(state, err)
	}
	state = StateTransformed

	summary, err := p.writer.Write(enriched)
	if err != nil {
		return p.fail(state, err)
	}
	state = StateLoaded

	p.logger.Info("[pipeline] ETL pipeline completed successfully")
	return state, summary
}

func (p *Pipeline) fail(from State, err error) (State, models.InsertSummary) {
	p.logger.Error("[pipeline] ETL pipeline failed at %s: %v", from, err)
	return StateFailed, models.InsertSummary{}
}
