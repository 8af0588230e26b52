package mart

import (
	"fmt"
	"strings"
)

// quoteName returns a bracket-quoted SQL Server identifier with embedded
// closing brackets escaped as ]].
func quoteName(identifier string) string {
	escaped := strings.ReplaceAll(identifier, "]", "]]")
	return fmt.Sprintf("[%s]", escaped)
}

// parseSchemaTable splits an optionally schema-qualified, optionally
// bracket-quoted table name. Defaults to the dbo schema.
func parseSchemaTable(tableName string) (string, string) {
	cleaned := strings.ReplaceAll(tableName, "[", "")
	cleaned = strings.ReplaceAll(cleaned, "]", "")

	parts := strings.Split(cleaned, ".")
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	return "dbo", cleaned
}

// mapSQLServerType maps SQL Server type names to the generic names shown
// to the agent and in query results.
func mapSQLServerType(sqlServerType string) string {
	switch strings.ToUpper(sqlServerType) {
	case "TINYINT":
		return "TINYINT"
	case "SMALLINT":
		return "SMALLINT"
	case "INT":
		return "INTEGER"
	case "BIGINT":
		return "BIGINT"
	case "DECIMAL", "NUMERIC":
		return "NUMERIC"
	case "MONEY", "SMALLMONEY":
		return "MONEY"
	case "FLOAT":
		return "DOUBLE PRECISION"
	case "REAL":
		return "REAL"
	case "BIT":
		return "BOOLEAN"
	case "CHAR", "NCHAR":
		return "CHAR"
	case "VARCHAR", "NVARCHAR":
		return "VARCHAR"
	case "TEXT", "NTEXT":
		return "TEXT"
	case "DATE":
		return "DATE"
	case "TIME":
		return "TIME"
	case "DATETIME", "DATETIME2", "SMALLDATETIME":
		return "TIMESTAMP"
	case "DATETIMEOFFSET":
		return "TIMESTAMPTZ"
	case "UNIQUEIDENTIFIER":
		return "UUID"
	case "VARBINARY", "BINARY", "IMAGE":
		return "BYTEA"
	default:
		return strings.ToUpper(sqlServerType)
	}
}

// isStringType reports whether a SQL Server column type scans as []byte
// but should be surfaced as a string.
func isStringType(sqlServerType string) bool {
	switch strings.ToUpper(sqlServerType) {
	case "CHAR", "NCHAR", "VARCHAR", "NVARCHAR", "TEXT", "NTEXT", "XML":
		return true
	default:
		return false
	}
}
