// Package models defines the domain records that flow through the
// extract, sample, enrich, and load stages.
package models

import "time"

// JobRecord is one row per job posting, a flat mapping of the source
// table's fields keyed by JobID, unique within the source table.
// Optional source columns are pointers so a missing value stays
// distinguishable from a zero value all the way to the upsert call.
type JobRecord struct {
	JobID           string
	Title           string
	CompanyName     string
	CompanyIndustry *string
	CompanySize     *string
	City            *string
	Country         *string
	WorkType        *string // Remote, Hybrid, Onsite
	EmploymentType  *string // Full-time, Part-time, Contract
	SeniorityLevel  *string
	RoleCategory    *string
	MinSalary       *float64
	MaxSalary       *float64
	SalaryCurrency  *string
	Description     string
	Requirements    *string
	Benefits        *string
	SkillsRaw       *string // comma-separated skills as listed in the posting
	ExperienceYears *int
	EducationLevel  *string
	PostedDate      *time.Time
	SourcePlatform  *string
	JobURL          *string
}

// SentimentLabel is the categorical sentiment assigned to a description.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
	SentimentMixed    SentimentLabel = "mixed"
)

// EnrichedJob is a JobRecord with its derived sentiment columns appended.
// Sentiment fields stay nil when the analysis failed or the description
// was blank; the loader maps nil to SQL NULL.
type EnrichedJob struct {
	JobRecord
	SentimentScore *float64
	SentimentLabel *SentimentLabel
}

// KeyPhraseRecord is one extracted key phrase. Many-to-one with JobRecord,
// produced only by the key-phrase extraction step, immutable once produced.
type KeyPhraseRecord struct {
	JobID       string
	Phrase      string
	SourceField string // which text column the phrase came from
}

// EntityRecord is one recognized named entity. Many-to-one with JobRecord.
// Confidence is nil when the service did not report one.
type EntityRecord struct {
	JobID      string
	Name       string
	Category   string
	Confidence *float64
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	RunID           string
	Extracted       int
	Sampled         int
	SentimentOK     int
	SentimentFailed int
	KeyPhrases      int
	Entities        int
	RowsUpserted    int
	RowsFailed      int
	StartedAt       time.Time
	FinishedAt      time.Time
}
