package artifact

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentfold/resume-formatter/internal/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.New()

	path, err := s.Put(jobID, "formatted.docx", []byte("payload"))
	require.NoError(t, err)
	assert.FileExists(t, path)

	data, err := s.Get(jobID, "formatted.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.True(t, s.Exists(jobID, "formatted.docx"))
}

func TestPutOverwritesAtomically(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.New()

	_, err := s.Put(jobID, "out.docx", []byte("first"))
	require.NoError(t, err)
	_, err = s.Put(jobID, "out.docx", []byte("second"))
	require.NoError(t, err)

	data, err := s.Get(jobID, "out.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	// no temp leftovers in the job dir
	entries, err := os.ReadDir(filepath.Dir(s.Path(jobID, "out.docx")))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetMissingMapsToNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(uuid.New(), "nope.docx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestDeleteRemovesAllJobArtifacts(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.New()

	_, err := s.Put(jobID, "source.pdf", []byte("src"))
	require.NoError(t, err)
	_, err = s.Put(jobID, "out.docx", []byte("out"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(jobID))
	assert.False(t, s.Exists(jobID, "source.pdf"))
	assert.False(t, s.Exists(jobID, "out.docx"))

	// idempotent
	require.NoError(t, s.Delete(jobID))
}

func TestArchiveDeterministicOrder(t *testing.T) {
	s := newTestStore(t)
	a, b := uuid.New(), uuid.New()
	_, err := s.Put(a, "b.docx", []byte("bee"))
	require.NoError(t, err)
	_, err = s.Put(b, "a.docx", []byte("ay"))
	require.NoError(t, err)

	entries := []ArchiveEntry{
		{JobID: a, Name: "b.docx"},
		{JobID: b, Name: "a.docx"},
	}
	first, err := s.Archive(context.Background(), entries)
	require.NoError(t, err)

	// reversed input yields identical bytes
	second, err := s.Archive(context.Background(), []ArchiveEntry{entries[1], entries[0]})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	zr, err := zip.NewReader(bytes.NewReader(first), int64(len(first)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "a.docx", zr.File[0].Name)
	assert.Equal(t, "b.docx", zr.File[1].Name)
}

func TestArchiveMissingEntryFails(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Archive(context.Background(), []ArchiveEntry{{JobID: uuid.New(), Name: "gone.docx"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
