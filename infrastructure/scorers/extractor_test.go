package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireo/scoring-engine/internal/domain"
)

func TestNewPatternTable(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		patterns  []Pattern
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid patterns",
			tableName: "document",
			patterns: []Pattern{
				{Name: "markup", Expr: `<table|<img`},
				{Name: "quant", Expr: `\d+%`},
			},
		},
		{
			name:      "empty table name",
			tableName: "",
			patterns:  []Pattern{{Name: "a", Expr: `x`}},
			wantError: true,
			errorMsg:  "name cannot be empty",
		},
		{
			name:      "duplicate pattern name",
			tableName: "dup",
			patterns: []Pattern{
				{Name: "a", Expr: `x`},
				{Name: "a", Expr: `y`},
			},
			wantError: true,
			errorMsg:  "duplicate pattern",
		},
		{
			name:      "invalid expression",
			tableName: "bad",
			patterns:  []Pattern{{Name: "a", Expr: `[unclosed`}},
			wantError: true,
		},
		{
			name:      "missing pattern name",
			tableName: "unnamed",
			patterns:  []Pattern{{Expr: `x`}},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewPatternTable(tt.tableName, tt.patterns)
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tableName, table.Name())
			assert.Equal(t, len(tt.patterns), table.Len())
		})
	}
}

func TestPatternTableExtract(t *testing.T) {
	table, err := NewPatternTable("test", []Pattern{
		{Name: "quant", Expr: `(\d+)%`},
		{Name: "markup", Expr: `<table`},
		{Name: "exact", Expr: `CaseSensitive`, CaseSensitive: true},
	})
	require.NoError(t, err)

	signals := table.Extract("Improved throughput by 40% and cut costs 15%. casesensitive")

	assert.True(t, signals.Fired("quant"))
	assert.Equal(t, 2, signals.Count("quant"))
	assert.Equal(t, []string{"40%", "15%"}, signals.Values("quant"))
	assert.Equal(t, "40", signals["quant"][0].Groups[0])

	assert.False(t, signals.Fired("markup"))
	assert.False(t, signals.Fired("exact"), "case-sensitive pattern must not match folded text")
}

func TestPatternTableExtractCaseInsensitiveDefault(t *testing.T) {
	table, err := NewPatternTable("test", []Pattern{
		{Name: "heading", Expr: `experience|education`},
	})
	require.NoError(t, err)

	assert.True(t, table.Extract("EXPERIENCE").Fired("heading"))
	assert.True(t, table.Extract("Education").Fired("heading"))
}
