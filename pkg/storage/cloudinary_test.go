package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantID       string
		wantResource string
	}{
		{
			name:         "versioned image",
			url:          "https://res.cloudinary.com/demo/image/upload/v1712345678/collegetrack/essays/123-essay.pdf",
			wantID:       "collegetrack/essays/123-essay",
			wantResource: "image",
		},
		{
			name:         "raw keeps extension",
			url:          "https://res.cloudinary.com/demo/raw/upload/v99/collegetrack/transcript.docx",
			wantID:       "collegetrack/transcript.docx",
			wantResource: "raw",
		},
		{
			name:         "no version segment",
			url:          "https://res.cloudinary.com/demo/image/upload/folder/file.png",
			wantID:       "folder/file",
			wantResource: "image",
		},
		{
			name: "not a cloudinary url",
			url:  "https://example.com/files/file.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, resource := extractPublicID(tt.url)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantResource, resource)
		})
	}
}

func TestResourceTypeFor(t *testing.T) {
	assert.Equal(t, "image", resourceTypeFor("Essay.PDF"))
	assert.Equal(t, "image", resourceTypeFor("scan.jpg"))
	assert.Equal(t, "raw", resourceTypeFor("essay.docx"))
}
