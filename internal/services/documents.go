package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DocumentService stages uploads on local disk for the duration of a request.
type DocumentService struct {
	uploadDir string
}

func NewDocumentService(uploadDir string) *DocumentService {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &DocumentService{uploadDir: uploadDir}
}

// ValidatePDFName rejects uploads whose name does not end in .pdf.
func ValidatePDFName(original string) error {
	if !strings.EqualFold(filepath.Ext(original), ".pdf") {
		return invalidInput("Only PDF allowed")
	}
	return nil
}

// Stage copies src to a uniquely named file. The returned cleanup removes it
// and is safe to call more than once.
func (s *DocumentService) Stage(original string, src io.Reader) (string, func(), error) {
	if err := ValidatePDFName(original); err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("ensure upload dir: %w", err)
	}

	storedPath := filepath.Join(s.uploadDir, uuid.NewString()+".pdf")
	out, err := os.Create(storedPath)
	if err != nil {
		return "", nil, fmt.Errorf("create file: %w", err)
	}
	cleanup := func() { _ = os.Remove(storedPath) }

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		cleanup()
		return "", nil, fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close file: %w", err)
	}
	return storedPath, cleanup, nil
}
