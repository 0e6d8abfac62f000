package entity

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString(t *testing.T) {
	assert.Nil(t, OptionalString(""))
	assert.Nil(t, OptionalString("   \n"))

	got := OptionalString("  Beth Mole ")
	require.NotNil(t, got)
	assert.Equal(t, "Beth Mole", *got)
}

func TestIngestResult_JSONKeepsNulls(t *testing.T) {
	res := IngestResult{Title: OptionalString("Title")}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"title":"Title","body":null,"author":null,"published_at":null,"og_image_url":null}`,
		string(data))
}

func TestValidateURLSyntax(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https URL", url: "https://example.com/article", wantErr: false},
		{name: "ftp URL passes syntax check", url: "ftp://example.com/file", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "relative", url: "/just/a/path", wantErr: true},
		{name: "no scheme", url: "example.com/article", wantErr: true},
		{name: "control character", url: "http://exa\x7fmple.com", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", maxURLLength), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURLSyntax(tt.url)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr))
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.Equal(t, "url", vErr.Field)
		})
	}
}
