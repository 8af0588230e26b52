package loader

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/marketlens-ai/marketlens/pkg/models"
)

// mockProcCaller records calls and optionally fails per job id.
type mockProcCaller struct {
	calls    []capturedCall
	failFunc func(params []any) error
}

type capturedCall struct {
	proc   string
	params []any
}

func (m *mockProcCaller) Call(ctx context.Context, procName string, params []any) error {
	m.calls = append(m.calls, capturedCall{proc: procName, params: params})
	if m.failFunc != nil {
		return m.failFunc(params)
	}
	return nil
}

func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64   { return &f }
func labelPtr(l models.SentimentLabel) *models.SentimentLabel { return &l }

func sampleJob() models.EnrichedJob {
	return models.EnrichedJob{
		JobRecord: models.JobRecord{
			JobID:       "job-1",
			Title:       "Data Engineer",
			CompanyName: "Acme",
			City:        strPtr("Berlin"),
			MinSalary:   floatPtr(70000),
			Description: "build pipelines",
		},
		SentimentScore: floatPtr(0.8),
		SentimentLabel: labelPtr(models.SentimentPositive),
	}
}

func TestUpsertJob_ParamCountAndOrder(t *testing.T) {
	mock := &mockProcCaller{}
	w := NewWriter(mock, zap.NewNop())

	err := w.UpsertJob(context.Background(), sampleJob(), nil, nil)
	if err != nil {
		t.Fatalf("UpsertJob() error = %v", err)
	}

	if len(mock.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(mock.calls))
	}
	call := mock.calls[0]
	if call.proc != UpsertProc {
		t.Errorf("proc = %q, want %q", call.proc, UpsertProc)
	}
	if len(call.params) != 27 {
		t.Fatalf("param count = %d, want 27 (25 scalars + 2 blobs)", len(call.params))
	}
	if call.params[0] != "job-1" {
		t.Errorf("params[0] = %v, want job id first", call.params[0])
	}
	if call.params[5] != "Berlin" {
		t.Errorf("params[5] = %v, want City", call.params[5])
	}
	if call.params[24] != "positive" {
		t.Errorf("params[24] = %v, want sentiment label", call.params[24])
	}
}

func TestUpsertJob_MissingValuesBecomeNil(t *testing.T) {
	mock := &mockProcCaller{}
	w := NewWriter(mock, zap.NewNop())

	job := models.EnrichedJob{
		JobRecord: models.JobRecord{JobID: "job-2", Title: "QA", CompanyName: "Acme", Description: "test"},
	}
	if err := w.UpsertJob(context.Background(), job, nil, nil); err != nil {
		t.Fatalf("UpsertJob() error = %v", err)
	}

	params := mock.calls[0].params
	// Optional scalars with no value must be nil, not zero values.
	for _, idx := range []int{3, 4, 5, 6, 11, 12, 18, 20, 23, 24} {
		if params[idx] != nil {
			t.Errorf("params[%d] = %v (%T), want nil", idx, params[idx], params[idx])
		}
	}
}

func TestUpsertJob_EmptyCollectionsSerializeAsEmptyArray(t *testing.T) {
	mock := &mockProcCaller{}
	w := NewWriter(mock, zap.NewNop())

	if err := w.UpsertJob(context.Background(), sampleJob(), nil, nil); err != nil {
		t.Fatalf("UpsertJob() error = %v", err)
	}

	params := mock.calls[0].params
	if params[25] != "[]" {
		t.Errorf("key phrases blob = %v, want literal []", params[25])
	}
	if params[26] != "[]" {
		t.Errorf("entities blob = %v, want literal []", params[26])
	}
}

func TestUpsertJob_FiltersCollectionsByJobID(t *testing.T) {
	mock := &mockProcCaller{}
	w := NewWriter(mock, zap.NewNop())

	phrases := []models.KeyPhraseRecord{
		{JobID: "job-1", Phrase: "remote work", SourceField: "description"},
		{JobID: "job-other", Phrase: "must not appear", SourceField: "description"},
	}
	conf := 0.9
	entities := []models.EntityRecord{
		{JobID: "job-1", Name: "Acme", Category: "Organization", Confidence: &conf},
		{JobID: "job-other", Name: "Globex", Category: "Organization"},
	}

	if err := w.UpsertJob(context.Background(), sampleJob(), phrases, entities); err != nil {
		t.Fatalf("UpsertJob() error = %v", err)
	}

	var gotPhrases []map[string]any
	if err := json.Unmarshal([]byte(mock.calls[0].params[25].(string)), &gotPhrases); err != nil {
		t.Fatalf("phrases blob not valid JSON: %v", err)
	}
	if len(gotPhrases) != 1 || gotPhrases[0]["phrase"] != "remote work" {
		t.Errorf("phrases blob = %v", gotPhrases)
	}

	var gotEntities []map[string]any
	if err := json.Unmarshal([]byte(mock.calls[0].params[26].(string)), &gotEntities); err != nil {
		t.Fatalf("entities blob not valid JSON: %v", err)
	}
	if len(gotEntities) != 1 || gotEntities[0]["entity"] != "Acme" {
		t.Errorf("entities blob = %v", gotEntities)
	}
}

func TestUpsertJob_MissingConfidenceSerializesAsNull(t *testing.T) {
	mock := &mockProcCaller{}
	w := NewWriter(mock, zap.NewNop())

	entities := []models.EntityRecord{
		{JobID: "job-1", Name: "Berlin", Category: "Location", Confidence: nil},
	}
	if err := w.UpsertJob(context.Background(), sampleJob(), nil, entities); err != nil {
		t.Fatalf("UpsertJob() error = %v", err)
	}

	blob := mock.calls[0].params[26].(string)
	var parsed []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
		t.Fatalf("entities blob not valid JSON: %v", err)
	}
	if string(parsed[0]["confidence"]) != "null" {
		t.Errorf("confidence = %s, want explicit null", parsed[0]["confidence"])
	}
}

func TestUpsertAll_ContinuesPastRowFailures(t *testing.T) {
	mock := &mockProcCaller{
		failFunc: func(params []any) error {
			if params[0] == "job-2" {
				return errors.New("deadlock victim")
			}
			return nil
		},
	}
	w := NewWriter(mock, zap.NewNop())

	jobs := []models.EnrichedJob{
		{JobRecord: models.JobRecord{JobID: "job-1", Title: "A", CompanyName: "X", Description: "d"}},
		{JobRecord: models.JobRecord{JobID: "job-2", Title: "B", CompanyName: "X", Description: "d"}},
		{JobRecord: models.JobRecord{JobID: "job-3", Title: "C", CompanyName: "X", Description: "d"}},
	}
	upserted, failed, err := w.UpsertAll(context.Background(), jobs, nil, nil)
	if err != nil {
		t.Fatalf("UpsertAll() error = %v", err)
	}
	if upserted != 2 || failed != 1 {
		t.Errorf("upserted=%d failed=%d, want 2/1", upserted, failed)
	}
	if len(mock.calls) != 3 {
		t.Errorf("calls = %d, want 3; later rows must still run", len(mock.calls))
	}
}

func TestBuildParams_PostedDatePassedAsTime(t *testing.T) {
	posted := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	job := sampleJob()
	job.PostedDate = &posted

	params := buildParams(job, "[]", "[]")
	got, ok := params[20].(time.Time)
	if !ok || !got.Equal(posted) {
		t.Errorf("params[20] = %v (%T), want time.Time %v", params[20], params[20], posted)
	}
}
