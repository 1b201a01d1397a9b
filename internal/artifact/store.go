package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/talentfold/resume-formatter/internal/common"
)

// Store is a filesystem artifact store keyed by job ID. Each job owns one
// directory under the root holding its uploaded source and rendered outputs.
// Writes are atomic: content lands in a temp file and is renamed into place,
// so readers never observe partial artifacts.
type Store struct {
	root   string
	logger *slog.Logger
}

func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if root == "" {
		return nil, fmt.Errorf("%w: artifact root is required", common.ErrInvalidInput)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &Store{root: root, logger: logger}, nil
}

func (s *Store) jobDir(jobID uuid.UUID) string {
	return filepath.Join(s.root, jobID.String())
}

// Path returns the artifact's location on disk without checking existence.
func (s *Store) Path(jobID uuid.UUID, name string) string {
	return filepath.Join(s.jobDir(jobID), filepath.Base(name))
}

// Put writes an artifact atomically and returns its path. An existing
// artifact with the same name is replaced in one step.
func (s *Store) Put(jobID uuid.UUID, name string, data []byte) (string, error) {
	dir := s.jobDir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create job dir: %w", err)
	}

	dst := filepath.Join(dir, filepath.Base(name))
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publish artifact: %w", err)
	}

	s.logger.Debug("artifact.put", "job_id", jobID.String(), "name", filepath.Base(name), "bytes", len(data))
	return dst, nil
}

// Get reads an artifact, mapping a missing file to common.ErrNotFound.
func (s *Store) Get(jobID uuid.UUID, name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(jobID, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: artifact %s/%s", common.ErrNotFound, jobID, filepath.Base(name))
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// Exists reports whether the named artifact is on disk.
func (s *Store) Exists(jobID uuid.UUID, name string) bool {
	st, err := os.Stat(s.Path(jobID, name))
	return err == nil && !st.IsDir()
}

// Delete removes every artifact the job owns. Deleting a job that has no
// artifacts is a no-op.
func (s *Store) Delete(jobID uuid.UUID) error {
	if err := os.RemoveAll(s.jobDir(jobID)); err != nil {
		return fmt.Errorf("delete artifacts: %w", err)
	}
	s.logger.Debug("artifact.delete", "job_id", jobID.String())
	return nil
}
