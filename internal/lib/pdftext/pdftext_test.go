package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\n...")))
	assert.False(t, IsPDF([]byte("hello world")))
	assert.False(t, IsPDF(nil))
}

func TestExtractText_Garbage(t *testing.T) {
	text, err := New().ExtractText([]byte("definitely not a pdf"))
	require.Error(t, err)
	assert.Empty(t, text)
	assert.Contains(t, err.Error(), "pdftext.ExtractText")
}

func TestExtractText_TruncatedHeader(t *testing.T) {
	_, err := New().ExtractText([]byte("%PDF-1.4\n"))
	assert.Error(t, err)
}
