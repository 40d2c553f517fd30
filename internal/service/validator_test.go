package service

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"imagefetcher/internal/core/domain"
)

func TestValidateHeaders(t *testing.T) {
	mb := func(n int) string { return strconv.Itoa(n * 1024 * 1024) }

	tests := []struct {
		name    string
		meta    domain.ResponseMeta
		wantOK  bool
		wantMsg string
	}{
		{
			name:    "png without length",
			meta:    domain.ResponseMeta{ContentType: "image/png"},
			wantOK:  true,
			wantMsg: "Headers validated successfully",
		},
		{
			name:    "html is rejected",
			meta:    domain.ResponseMeta{ContentType: "text/html"},
			wantMsg: "Content-Type 'text/html' is not an image",
		},
		{
			name:    "html with small length is still rejected",
			meta:    domain.ResponseMeta{ContentType: "text/html; charset=utf-8", ContentLength: "10"},
			wantMsg: "Content-Type 'text/html; charset=utf-8' is not an image",
		},
		{
			name:    "missing content type",
			meta:    domain.ResponseMeta{},
			wantMsg: "Content-Type '' is not an image",
		},
		{
			name:   "uppercase type",
			meta:   domain.ResponseMeta{ContentType: "IMAGE/JPEG"},
			wantOK: true,
		},
		{
			name:   "49MB passes",
			meta:   domain.ResponseMeta{ContentType: "image/jpeg", ContentLength: mb(49)},
			wantOK: true,
		},
		{
			name:   "exactly 50MB passes",
			meta:   domain.ResponseMeta{ContentType: "image/jpeg", ContentLength: mb(50)},
			wantOK: true,
		},
		{
			name:    "51MB fails",
			meta:    domain.ResponseMeta{ContentType: "image/jpeg", ContentLength: mb(51)},
			wantMsg: "Image too large (51.0MB). Limit: 50MB",
		},
		{
			name:   "unparseable length is unknown",
			meta:   domain.ResponseMeta{ContentType: "image/gif", ContentLength: "lots"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := ValidateHeaders(tt.meta, DefaultMaxSizeMB)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, msg)
			}
		})
	}
}

func TestValidateHeaders_CustomLimit(t *testing.T) {
	ok, msg := ValidateHeaders(domain.ResponseMeta{ContentType: "image/png", ContentLength: "3145728"}, 2)
	assert.False(t, ok)
	assert.Equal(t, "Image too large (3.0MB). Limit: 2MB", msg)
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("hello"))
	assert.Equal(t, a, ContentHash([]byte("hello")))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", a)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, ContentHash([]byte("hello!")))
}
