package mart

import "testing"

func TestQuoteName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Job_Fact_Table", "[Job_Fact_Table]"},
		{"weird]name", "[weird]]name]"},
		{"dbo", "[dbo]"},
	}
	for _, tt := range tests {
		if got := quoteName(tt.input); got != tt.want {
			t.Errorf("quoteName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseSchemaTable(t *testing.T) {
	tests := []struct {
		input      string
		wantSchema string
		wantTable  string
	}{
		{"Job_Fact_Table", "dbo", "Job_Fact_Table"},
		{"dbo.Job_Fact_Table", "dbo", "Job_Fact_Table"},
		{"[dbo].[Job_Fact_Table]", "dbo", "Job_Fact_Table"},
		{"analytics.vw_SkillDemand", "analytics", "vw_SkillDemand"},
	}
	for _, tt := range tests {
		schema, table := parseSchemaTable(tt.input)
		if schema != tt.wantSchema || table != tt.wantTable {
			t.Errorf("parseSchemaTable(%q) = (%q, %q), want (%q, %q)",
				tt.input, schema, table, tt.wantSchema, tt.wantTable)
		}
	}
}

func TestMapSQLServerType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"INT", "INTEGER"},
		{"NVARCHAR", "VARCHAR"},
		{"DECIMAL", "NUMERIC"},
		{"FLOAT", "DOUBLE PRECISION"},
		{"DATETIME2", "TIMESTAMP"},
		{"BIT", "BOOLEAN"},
		{"UNIQUEIDENTIFIER", "UUID"},
		{"GEOGRAPHY", "GEOGRAPHY"}, // unknown passes through
	}
	for _, tt := range tests {
		if got := mapSQLServerType(tt.input); got != tt.want {
			t.Errorf("mapSQLServerType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsStringType(t *testing.T) {
	for _, typ := range []string{"VARCHAR", "NVARCHAR", "CHAR", "NCHAR", "TEXT", "NTEXT", "XML"} {
		if !isStringType(typ) {
			t.Errorf("isStringType(%q) = false, want true", typ)
		}
	}
	for _, typ := range []string{"INT", "VARBINARY", "DATETIME"} {
		if isStringType(typ) {
			t.Errorf("isStringType(%q) = true, want false", typ)
		}
	}
}
