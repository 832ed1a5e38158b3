package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskdeck-cli/internal/model"
)

const DefaultFileMaxBytes int64 = 50 * 1024 * 1024 // 50MB

func (s Store) filesDir() string {
	return filepath.Join(s.workspaceRoot(), "resources", "files")
}

// FileAbsPath resolves a stored file's workspace-relative path to an absolute
// one.
func (s Store) FileAbsPath(f model.ProjectFile) string {
	return filepath.Join(s.workspaceRoot(), filepath.FromSlash(strings.TrimSpace(f.Path)))
}

func guessMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}

// AddFile copies srcPath into the workspace object store and records a
// ProjectFile row. The copy is hashed while written; files over maxBytes are
// rejected.
func (s Store) AddFile(db *DB, uploaderID, projectID, srcPath string, maxBytes int64) (model.ProjectFile, error) {
	if db == nil {
		return model.ProjectFile{}, errors.New("nil db")
	}
	uploaderID = strings.TrimSpace(uploaderID)
	if uploaderID == "" {
		return model.ProjectFile{}, errors.New("missing uploader id")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return model.ProjectFile{}, errors.New("missing project id")
	}
	srcPath = filepath.Clean(strings.TrimSpace(srcPath))
	if srcPath == "" {
		return model.ProjectFile{}, errors.New("missing source path")
	}
	st, err := os.Stat(srcPath)
	if err != nil {
		return model.ProjectFile{}, err
	}
	if st.IsDir() {
		return model.ProjectFile{}, errors.New("files: source path is a directory")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultFileMaxBytes
	}
	if st.Size() > maxBytes {
		return model.ProjectFile{}, fmt.Errorf("files: file too large (%d bytes > %d bytes)", st.Size(), maxBytes)
	}

	orig := filepath.Base(srcPath)
	if strings.TrimSpace(orig) == "" || orig == "." || orig == string(filepath.Separator) {
		orig = "file"
	}

	now := time.Now().UTC()
	id := s.NextID(db, "file")
	destDir := filepath.Join(s.filesDir(), id)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return model.ProjectFile{}, err
	}
	destPath := filepath.Join(destDir, orig)

	in, err := os.Open(srcPath)
	if err != nil {
		return model.ProjectFile{}, err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return model.ProjectFile{}, err
	}
	defer func() { _ = out.Close() }()

	h := sha256.New()
	w := io.MultiWriter(out, h)
	n, err := io.Copy(w, io.LimitReader(in, maxBytes+1))
	if err != nil {
		return model.ProjectFile{}, err
	}
	if n > maxBytes {
		return model.ProjectFile{}, fmt.Errorf("files: file too large (%d bytes > %d bytes)", n, maxBytes)
	}

	f := model.ProjectFile{
		ID:           id,
		ProjectID:    projectID,
		UploadedBy:   uploaderID,
		OriginalName: orig,
		SizeBytes:    n,
		MimeType:     guessMimeType(orig),
		Sha256Hex:    hex.EncodeToString(h.Sum(nil)),
		Path:         filepath.ToSlash(filepath.Join("resources", "files", id, orig)),
		CreatedAt:    now,
	}

	db.Files = append(db.Files, f)
	db.MarkDirty()
	return f, nil
}

// RemoveFile deletes the stored bytes and drops the row from the state.
// Removing the bytes first and tolerating a missing directory keeps the
// operation idempotent.
func (s Store) RemoveFile(db *DB, fileID string) error {
	if db == nil {
		return errors.New("nil db")
	}
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return errors.New("missing file id")
	}
	for i := range db.Files {
		if strings.TrimSpace(db.Files[i].ID) != fileID {
			continue
		}
		dir := filepath.Join(s.filesDir(), fileID)
		if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		db.Files = append(db.Files[:i], db.Files[i+1:]...)
		db.MarkDirty()
		return nil
	}
	return fmt.Errorf("file not found: %s", fileID)
}

// ReadFile returns the stored bytes for a file row.
func (s Store) ReadFile(f model.ProjectFile) ([]byte, error) {
	return os.ReadFile(s.FileAbsPath(f))
}
