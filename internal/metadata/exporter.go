package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"layerplane/internal/store"
)

// FileExporter writes publish metadata below the repository directory,
// one file per publish at <dir>/<workspace>/<name>.meta.json.
type FileExporter struct {
	Dir string
	now func() time.Time
}

// NewFileExporter creates a FileExporter rooted at dir.
func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{Dir: dir, now: time.Now}
}

type publishMetadata struct {
	Workspace       string     `json:"workspace"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	Interval        string     `json:"interval"`
	JobID           *int64     `json:"job_id"`
	LastPublishTime *time.Time `json:"last_publish_time"`
	ExportedAt      time.Time  `json:"exported_at"`
}

// Export writes the metadata file of p, replacing any previous export.
func (e *FileExporter) Export(ctx context.Context, p *store.Publish) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	folder := filepath.Join(e.Dir, p.WorkspaceName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", folder, err)
	}

	data, err := json.MarshalIndent(publishMetadata{
		Workspace:       p.WorkspaceName,
		Name:            p.Name,
		Status:          p.Status,
		Interval:        p.Interval,
		JobID:           p.JobID,
		LastPublishTime: p.LastPublishTime,
		ExportedAt:      e.now().UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}

	target := filepath.Join(folder, p.Name+".meta.json")
	tmp, err := os.CreateTemp(folder, ".meta-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
