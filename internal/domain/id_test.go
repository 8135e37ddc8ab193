package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/straye-as/crm-console/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.ID
	}{
		{name: "string", input: `{"id":"c-1"}`, want: "c-1"},
		{name: "integer", input: `{"id":42}`, want: "42"},
		{name: "null", input: `{"id":null}`, want: ""},
		{name: "missing", input: `{}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				ID domain.ID `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.input), &out))
			assert.Equal(t, tt.want, out.ID)
		})
	}

	t.Run("rejects objects", func(t *testing.T) {
		var out struct {
			ID domain.ID `json:"id"`
		}
		assert.Error(t, json.Unmarshal([]byte(`{"id":{"x":1}}`), &out))
	})
}

func TestLead_DecodesNumericTenant(t *testing.T) {
	var lead domain.Lead
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"title":"Acme","status":"won","value":1500,"tenantId":3}`), &lead))

	assert.Equal(t, domain.ID("7"), lead.ID)
	assert.Equal(t, domain.ID("3"), lead.Tenant())
	assert.Equal(t, domain.LeadStatusWon, lead.Status)
	assert.True(t, lead.Status.IsTerminal())
}
