package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_UnmarshalJSON(t *testing.T) {
	type body struct {
		Value Field[int] `json:"value"`
	}

	tests := []struct {
		name     string
		json     string
		absent   bool
		null     bool
		hasValue bool
		value    int
	}{
		{name: "absent", json: `{}`, absent: true},
		{name: "null", json: `{"value":null}`, null: true},
		{name: "value", json: `{"value":7}`, hasValue: true, value: 7},
		{name: "zero value", json: `{"value":0}`, hasValue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b body
			require.NoError(t, json.Unmarshal([]byte(tt.json), &b))

			assert.Equal(t, tt.absent, b.Value.IsAbsent())
			assert.Equal(t, tt.null, b.Value.IsNull())
			assert.Equal(t, tt.hasValue, b.Value.HasValue())
			v, _ := b.Value.Get()
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestField_InvalidValue(t *testing.T) {
	var f Field[int]

	err := json.Unmarshal([]byte(`"seven"`), &f)

	assert.Error(t, err)
}

func TestField_Constructors(t *testing.T) {
	assert.True(t, Set("x").HasValue())
	assert.True(t, Null[string]().IsNull())
	assert.True(t, Field[string]{}.IsAbsent())
}
