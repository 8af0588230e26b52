package loader

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/marketlens-ai/marketlens/pkg/models"
)

// keyPhraseJSON is the blob element shape the stored procedure parses
// with OPENJSON.
type keyPhraseJSON struct {
	Phrase string `json:"phrase"`
	Source string `json:"source"`
}

// entityJSON is the blob element shape for entities. Confidence is a
// pointer so a missing score serializes as an explicit null, never as a
// default number.
type entityJSON struct {
	Entity     string   `json:"entity"`
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence"`
}

// marshalKeyPhrases serializes the phrases belonging to one job. A job
// with no phrases produces the literal empty array "[]", never null.
func marshalKeyPhrases(phrases []models.KeyPhraseRecord) (string, error) {
	blob := make([]keyPhraseJSON, 0, len(phrases))
	for _, p := range phrases {
		blob = append(blob, keyPhraseJSON{Phrase: p.Phrase, Source: p.SourceField})
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return "", fmt.Errorf("marshal key phrases: %w", err)
	}
	return string(data), nil
}

// marshalEntities serializes the entities belonging to one job, with the
// same empty-array guarantee as marshalKeyPhrases.
func marshalEntities(entities []models.EntityRecord) (string, error) {
	blob := make([]entityJSON, 0, len(entities))
	for _, e := range entities {
		blob = append(blob, entityJSON{Entity: e.Name, Type: e.Category, Confidence: e.Confidence})
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return "", fmt.Errorf("marshal entities: %w", err)
	}
	return string(data), nil
}

// buildParams maps one enriched job to the stored procedure's ordered
// parameter list: 25 scalars followed by the two JSON blobs. The mapping
// is explicit per field; optional values become nil (SQL NULL), never a
// default. The order here must match dbo.usp_UpsertJobPosting's parameter
// declaration exactly.
func buildParams(job models.EnrichedJob, keyPhrasesJSON, entitiesJSON string) []any {
	return []any{
		job.JobID,                          // @p1  JobID
		job.Title,                          // @p2  Title
		job.CompanyName,                    // @p3  CompanyName
		nullString(job.CompanyIndustry),    // @p4  CompanyIndustry
		nullString(job.CompanySize),        // @p5  CompanySize
		nullString(job.City),               // @p6  City
		nullString(job.Country),            // @p7  Country
		nullString(job.WorkType),           // @p8  WorkType
		nullString(job.EmploymentType),     // @p9  EmploymentType
		nullString(job.SeniorityLevel),     // @p10 SeniorityLevel
		nullString(job.RoleCategory),       // @p11 RoleCategory
		nullFloat(job.MinSalary),           // @p12 MinSalary
		nullFloat(job.MaxSalary),           // @p13 MaxSalary
		nullString(job.SalaryCurrency),     // @p14 SalaryCurrency
		job.Description,                    // @p15 Description
		nullString(job.Requirements),       // @p16 Requirements
		nullString(job.Benefits),           // @p17 Benefits
		nullString(job.SkillsRaw),          // @p18 SkillsRaw
		nullInt(job.ExperienceYears),       // @p19 ExperienceYears
		nullString(job.EducationLevel),     // @p20 EducationLevel
		nullTime(job.PostedDate),           // @p21 PostedDate
		nullString(job.SourcePlatform),     // @p22 SourcePlatform
		nullString(job.JobURL),             // @p23 JobURL
		nullFloat(job.SentimentScore),      // @p24 SentimentScore
		nullSentiment(job.SentimentLabel),  // @p25 SentimentLabel
		keyPhrasesJSON,                     // @p26 KeyPhrasesJSON
		entitiesJSON,                       // @p27 EntitiesJSON
	}
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullSentiment(p *models.SentimentLabel) any {
	if p == nil {
		return nil
	}
	return string(*p)
}
