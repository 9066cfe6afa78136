package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTagArgument(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr bool
	}{
		{"custom element", "x-card", false},
		{"multi hyphen", "my-user-card", false},
		{"empty", "", true},
		{"no hyphen", "card", true},
		{"uppercase", "X-Card", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTagArgument(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAttributeName(t *testing.T) {
	tests := []struct {
		name    string
		attr    string
		wantErr bool
	}{
		{"plain", "title", false},
		{"data attribute", "data-id", false},
		{"toggle", "?disabled", false},
		{"property binding", ".items", false},
		{"empty", "", true},
		{"prefix only", "?", true},
		{"space", "my attr", true},
		{"quote", `a"b`, true},
		{"angle bracket", "a<b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAttributeName(tt.attr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseAttributes(t *testing.T) {
	base := map[string]interface{}{"heading": "From JSON", "count": float64(2)}

	attrs, err := parseAttributes(base, []string{"heading=From flag", "disabled", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"heading":  "From flag",
		"count":    float64(2),
		"disabled": true,
		"note":     "a=b",
	}, attrs)
	assert.Equal(t, "From JSON", base["heading"])

	_, err = parseAttributes(nil, []string{"bad name=1"})
	assert.Error(t, err)
}
