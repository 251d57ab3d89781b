package generator

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"media-etl/models"
	"media-etl/storage"
	"media-etl/utils"
)

var (
	contentCategories = []string{
		"politics", "sports", "technology", "business",
		"entertainment", "health", "science", "travel",
	}
	deviceTypes = []string{"mobile", "desktop", "tablet"}
	actions     = []string{"read", "video_play", "comment", "share", "like", "bookmark"}
	referrers   = []string{
		"https://google.com",
		"https://facebook.com",
		"https://twitter.com",
		"https://instagram.com",
		"https://news.example.com",
		"https://email.newsletter.com",
		"", // direct traffic
	}
)

const numArticles = 200

// Options controls the shape of the generated dataset.
type Options struct {
	Users                  int
	SessionsPerUser        int
	InteractionsPerSession int
	Start                  time.Time
	End                    time.Time
}

// Generator produces synthetic interaction records matching the pipeline's
// input contract.
type Generator struct {
	opts   Options
	logger *utils.Logger
	rng    *rand.Rand
}

// New creates a Generator. Zero-valued date bounds default to March 2025.
func New(opts Options, logger *utils.Logger) *Generator {
	if opts.Start.IsZero() {
		opts.Start = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	}
	if opts.End.IsZero() {
		opts.End = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	}
	return &Generator{
		opts:   opts,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate builds Users × SessionsPerUser × InteractionsPerSession records.
// Each session starts at a random point in the date range with 1–60 seconds
// between consecutive interactions.
func (g *Generator) Generate() []models.RawRecord {
	total := g.opts.Users * g.opts.SessionsPerUser * g.opts.InteractionsPerSession
	records := make([]models.RawRecord, 0, total)

	for u := 0; u < g.opts.Users; u++ {
		userID := "user_" + g.shortID(8)

		for s := 0; s < g.opts.SessionsPerUser; s++ {
			sessionID := "session_" + g.shortID(10)
			sessionStart := g.randomDateBetween(g.opts.Start, g.opts.End)

			for i := 0; i < g.opts.InteractionsPerSession; i++ {
				ts := sessionStart.Add(time.Duration(i*(1+g.rng.Intn(60))) * time.Second)
				records = append(records, g.interaction(userID, sessionID, ts))
			}
		}
	}

	g.logger.Info("[generator] Generated %d interactions for %d users", len(records), g.opts.Users)
	return records
}

// WriteFiles shuffles the records and distributes them across files via the
// given writer.
func (g *Generator) WriteFiles(records []models.RawRecord, w storage.RawRecordWriter, numFiles int) error {
	g.rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	if err := w.WriteFiles(records, numFiles); err != nil {
		return err
	}
	g.logger.Info("[generator] Wrote %d interactions across %d files", len(records), numFiles)
	return nil
}

func (g *Generator) interaction(userID, sessionID string, ts time.Time) models.RawRecord {
	category := contentCategories[g.rng.Intn(len(contentCategories))]
	articleID := 1 + g.rng.Intn(numArticles)
	action := actions[g.rng.Intn(len(actions))]

	var timeSpent any
	if action == "read" {
		timeSpent = 5 + g.rng.Intn(296)
	}
	var scrollDepth any
	if action == "read" || action == "video_play" {
		scrollDepth = 0.1 + g.rng.Float64()*0.9
	}

	return models.RawRecord{
		"user_id":            userID,
		"timestamp":          ts.UTC().Format("2006-01-02T15:04:05Z"),
		"page_url":           fmt.Sprintf("https://news.example.com/%s/article-%d", category, articleID),
		"action":             action,
		"device_type":        deviceTypes[g.rng.Intn(len(deviceTypes))],
		"referrer":           referrers[g.rng.Intn(len(referrers))],
		"session_id":         sessionID,
		"time_spent_seconds": timeSpent,
		"scroll_depth":       scrollDepth,
	}
}

func (g *Generator) shortID(n int) string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:n]
}

func (g *Generator) randomDateBetween(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours()/24) + 1
	return start.AddDate(0, 0, g.rng.Intn(days)).
		Add(time.Duration(g.rng.Intn(86400)) * time.Second)
}
