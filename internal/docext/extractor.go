package docext

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"

	"hiredesk/pkg/utils"
)

// Extractor pulls plain text out of uploaded documents (JD attachments,
// resume files). Binary formats go through docconv, which needs a file on
// disk, so uploads are staged into a scratch directory first.
type Extractor struct {
	scratchDir string
}

func NewExtractor(scratchDir string) *Extractor {
	return &Extractor{scratchDir: utils.GetStringOrDefault(scratchDir, os.TempDir())}
}

// ExtractUpload extracts text from a multipart file upload.
func (e *Extractor) ExtractUpload(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return e.Extract(header.Filename, file)
}

// Extract extracts text from a named document stream.
func (e *Extractor) Extract(filename string, reader io.Reader) (string, error) {
	fileType := strings.ToLower(filepath.Ext(filename))

	switch fileType {
	case ".txt", ".csv", ".md":
		content, err := io.ReadAll(reader)
		if err != nil {
			return "", fmt.Errorf("read text upload: %w", err)
		}
		return string(content), nil

	case ".pdf", ".docx", ".doc", ".rtf", ".odt", ".html":
		path, cleanup, err := e.stage(filename, reader)
		if err != nil {
			return "", err
		}
		defer cleanup()

		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", fmt.Errorf("parse document: %w", err)
		}
		return res.Body, nil

	default:
		return "", fmt.Errorf("unsupported file type: %s", fileType)
	}
}

func (e *Extractor) stage(filename string, reader io.Reader) (string, func(), error) {
	if err := os.MkdirAll(e.scratchDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}

	tmp, err := os.CreateTemp(e.scratchDir, "upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", nil, fmt.Errorf("stage upload: %w", err)
	}

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("write upload: %w", err)
	}
	tmp.Close()

	cleanup := func() { os.Remove(tmp.Name()) }
	return tmp.Name(), cleanup, nil
}
