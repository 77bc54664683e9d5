package artifact

import (
	"fmt"
	"path/filepath"

	"github.com/debemdeboas/texpad/internal/util"
)

// Sink receives artifacts produced by compile and export actions.
type Sink interface {
	// SetPreview makes ref the artifact currently shown as the document preview.
	SetPreview(ref Ref) error
	// TriggerDownload delivers ref to the user under filename.
	TriggerDownload(ref Ref, filename string) error
}

// FileSink writes the preview to a fixed path and downloads into a directory.
type FileSink struct {
	registry    *Registry
	previewPath string
	downloadDir string
}

func NewFileSink(registry *Registry, previewPath, downloadDir string) *FileSink {
	return &FileSink{
		registry:    registry,
		previewPath: previewPath,
		downloadDir: downloadDir,
	}
}

func (s *FileSink) SetPreview(ref Ref) error {
	art, ok := s.registry.Resolve(ref)
	if !ok {
		return fmt.Errorf("error setting preview %s: %w", ref, ErrUnknownRef)
	}

	if err := util.WriteFileAtomic(s.previewPath, art.Data, 0o644); err != nil {
		return fmt.Errorf("error writing preview: %w", err)
	}

	artifactLogger.Info().Str("path", s.previewPath).Int("bytes", len(art.Data)).Msg("Preview updated")
	return nil
}

func (s *FileSink) TriggerDownload(ref Ref, filename string) error {
	art, ok := s.registry.Resolve(ref)
	if !ok {
		return fmt.Errorf("error downloading %s: %w", ref, ErrUnknownRef)
	}

	path, err := s.DownloadPath(filename)
	if err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path, art.Data, 0o644); err != nil {
		return fmt.Errorf("error writing download: %w", err)
	}

	artifactLogger.Info().Str("path", path).Int("bytes", len(art.Data)).Msg("Download saved")
	return nil
}

// DownloadPath returns where filename would be saved. Directory components are stripped so
// downloads stay inside the download directory.
func (s *FileSink) DownloadPath(filename string) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid download filename %q", filename)
	}
	return filepath.Join(s.downloadDir, name), nil
}
