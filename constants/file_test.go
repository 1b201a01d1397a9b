package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, DOC, MapExtToFormat(".doc"))
	assert.Equal(t, DOCX, MapExtToFormat("DOCX"))
	assert.Equal(t, PDF, MapExtToFormat(".PDF"))
	assert.Equal(t, FileFormat(""), MapExtToFormat(".txt"))
	assert.Equal(t, FileFormat(""), MapExtToFormat(""))
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "docx", NormalizeExt(".DOCX"))
	assert.Equal(t, "pdf", NormalizeExt("pdf"))
	assert.Equal(t, "", NormalizeExt("."))
}
