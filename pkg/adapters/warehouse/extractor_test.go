package warehouse

import (
	"database/sql"
	"testing"
	"time"
)

func TestQuoteQualifiedTable(t *testing.T) {
	tests := []struct {
		name    string
		catalog string
		schema  string
		table   string
		want    string
	}{
		{
			name:    "full three-part name",
			catalog: "hive_metastore",
			schema:  "jobs",
			table:   "job_postings",
			want:    `"hive_metastore"."jobs"."job_postings"`,
		},
		{
			name:   "no catalog",
			schema: "jobs",
			table:  "job_postings",
			want:   `"jobs"."job_postings"`,
		},
		{
			name:   "embedded quote is doubled",
			schema: "jobs",
			table:  `odd"name`,
			want:   `"jobs"."odd""name"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quoteQualifiedTable(tt.catalog, tt.schema, tt.table); got != tt.want {
				t.Errorf("quoteQualifiedTable() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNullableHelpers(t *testing.T) {
	if got := nullableString(sql.NullString{}); got != nil {
		t.Errorf("nullableString(invalid) = %v, want nil", got)
	}
	if got := nullableString(sql.NullString{String: "x", Valid: true}); got == nil || *got != "x" {
		t.Errorf("nullableString(valid) = %v", got)
	}

	if got := nullableFloat(sql.NullFloat64{}); got != nil {
		t.Errorf("nullableFloat(invalid) = %v, want nil", got)
	}
	if got := nullableFloat(sql.NullFloat64{Float64: 1.5, Valid: true}); got == nil || *got != 1.5 {
		t.Errorf("nullableFloat(valid) = %v", got)
	}

	if got := nullableInt(sql.NullInt64{}); got != nil {
		t.Errorf("nullableInt(invalid) = %v, want nil", got)
	}
	if got := nullableInt(sql.NullInt64{Int64: 7, Valid: true}); got == nil || *got != 7 {
		t.Errorf("nullableInt(valid) = %v", got)
	}

	if got := nullableTime(sql.NullTime{}); got != nil {
		t.Errorf("nullableTime(invalid) = %v, want nil", got)
	}
	now := time.Now()
	if got := nullableTime(sql.NullTime{Time: now, Valid: true}); got == nil || !got.Equal(now) {
		t.Errorf("nullableTime(valid) = %v", got)
	}
}
