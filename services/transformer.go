package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"media-etl/models"
	"media-etl/utils"
)

var (
	// categoryRegexp captures the path segment after the news host
	categoryRegexp = regexp.MustCompile(`news\.example\.com/([^/]+)`)
	// articleRegexp captures the numeric article suffix
	articleRegexp = regexp.MustCompile(`article-(\d+)`)
)

// timestampLayouts are tried in order when parsing the timestamp field.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Transformer enriches raw interaction records into typed Interactions.
// It is a pure function of its input: no I/O, no retained state.
type Transformer struct {
	logger *utils.Logger
}

// NewTransformer creates a Transformer with the given logger.
func NewTransformer(logger *utils.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform enriches every record: timestamp decomposition, URL-derived
// fields, referrer classification, string normalization and identity-key
// synthesis. Output count always equals input count. A record with a
// missing required field or an unparseable timestamp aborts the whole
// transform; the pipeline never partially enriches.
func (t *Transformer) Transform(raw []models.RawRecord) ([]*models.Interaction, error) {
	if len(raw) == 0 {
		t.logger.Warn("[transformer] No data to transform")
		return nil, nil
	}

	t.logger.Info("[transformer] Starting data transformation")

	// Identity synthesis is a column-wide decision: ids are synthesized only
	// when no input record carries the field at all.
	synthesizeID := !anyRecordHas(raw, "interaction_id")
	if synthesizeID {
		t.logger.Info("[transformer] No interaction_id field present — synthesizing identifiers")
	}

	out := make([]*models.Interaction, 0, len(raw))
	for i, rec := range raw {
		enriched, err := t.enrich(rec, synthesizeID)
		if err != nil {
			return nil, fmt.Errorf("transformer: record %d: %w", i, err)
		}
		out = append(out, enriched)
	}

	t.logger.Info("[transformer] Transformation complete: %d records enriched", len(out))
	return out, nil
}

func (t *Transformer) enrich(rec models.RawRecord, synthesizeID bool) (*models.Interaction, error) {
	userID, err := requiredString(rec, "user_id")
	if err != nil {
		return nil, err
	}
	sessionID, err := requiredString(rec, "session_id")
	if err != nil {
		return nil, err
	}
	pageURL, err := requiredString(rec, "page_url")
	if err != nil {
		return nil, err
	}
	action, err := requiredString(rec, "action")
	if err != nil {
		return nil, err
	}

	tsRaw, ok := rec["timestamp"]
	if !ok || tsRaw == nil {
		return nil, fmt.Errorf("missing required field %q", "timestamp")
	}
	ts, err := parseTimestamp(tsRaw)
	if err != nil {
		return nil, err
	}

	// URL-derived fields are extracted before normalization: the patterns are
	// case-sensitive and run against the URL as read.
	category := extractCategory(pageURL)
	articleID := extractArticleID(pageURL)

	referrer := optionalString(rec, "referrer")
	refCategory := classifyReferrer(referrer)

	dayOfWeek := mondayIndexed(ts.Weekday())

	interaction := &models.Interaction{
		UserID:           strings.ToLower(userID),
		SessionID:        strings.ToLower(sessionID),
		Timestamp:        ts,
		PageURL:          strings.ToLower(pageURL),
		Action:           strings.ToLower(action),
		DeviceType:       optionalString(rec, "device_type"),
		Referrer:         referrer,
		EventDate:        time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
		EventTime:        ts.Format("15:04:05"),
		EventHour:        ts.Hour(),
		EventDay:         ts.Day(),
		EventMonth:       int(ts.Month()),
		EventYear:        ts.Year(),
		EventDayOfWeek:   dayOfWeek,
		IsWeekend:        dayOfWeek >= 5,
		ContentCategory:  strings.ToLower(category),
		ArticleID:        strings.ToLower(articleID),
		ReferrerCategory: refCategory,
		TimeSpentSeconds: optionalNumber(rec, "time_spent_seconds"),
		ScrollDepth:      optionalNumber(rec, "scroll_depth"),
	}

	if synthesizeID {
		interaction.InteractionID = fmt.Sprintf("%s_%s_%d",
			interaction.UserID, interaction.SessionID, ts.Unix())
	} else if id := optionalString(rec, "interaction_id"); id != nil {
		interaction.InteractionID = *id
	}

	return interaction, nil
}

// anyRecordHas reports whether any record in the set carries a non-null
// value for the given field.
func anyRecordHas(records []models.RawRecord, key string) bool {
	for _, rec := range records {
		if v, ok := rec[key]; ok && v != nil {
			return true
		}
	}
	return false
}

// extractCategory pulls the content category out of a page URL, e.g.
// "https://news.example.com/sports/article-42" → "sports".
func extractCategory(url string) string {
	match := categoryRegexp.FindStringSubmatch(url)
	if len(match) < 2 {
		return "unknown"
	}
	return match[1]
}

// extractArticleID pulls the numeric article id out of a page URL, e.g.
// "https://news.example.com/sports/article-42" → "42".
func extractArticleID(url string) string {
	match := articleRegexp.FindStringSubmatch(url)
	if len(match) < 2 {
		return "unknown"
	}
	return match[1]
}

// classifyReferrer buckets a referrer into a coarse traffic source.
// Rules run in priority order; first match wins.
func classifyReferrer(referrer *string) string {
	if referrer == nil || *referrer == "" {
		return "direct"
	}
	ref := strings.ToLower(*referrer)

	switch {
	case strings.Contains(ref, "google"):
		return "search"
	case containsAny(ref, "facebook", "twitter", "instagram", "social"):
		return "social"
	case containsAny(ref, "news", "nytimes", "cnn"):
		return "news"
	case containsAny(ref, "email", "newsletter"):
		return "email"
	default:
		return "other"
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// mondayIndexed converts Go's Sunday-first weekday to Monday=0..Sunday=6,
// the encoding the store and the weekend flag are defined against.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func parseTimestamp(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("unparseable timestamp %v (%T)", v, v)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func requiredString(rec models.RawRecord, key string) (string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required field %q", key)
	}
	return stringify(v), nil
}

// optionalString returns the lower-cased string form of a field, or nil when
// the field is absent or null. Absent values stay null; they are never
// coerced to an empty string.
func optionalString(rec models.RawRecord, key string) *string {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	s := strings.ToLower(stringify(v))
	return &s
}

// optionalNumber converts a numeric field to its string form for a TEXT
// column. NaN and null become nil.
func optionalNumber(rec models.RawRecord, key string) *string {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return nil
		}
		s := strconv.FormatFloat(n, 'g', -1, 64)
		return &s
	case int:
		s := strconv.Itoa(n)
		return &s
	default:
		s := strings.ToLower(stringify(v))
		return &s
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}
