package adapter

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	// decoders registered with image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"quiz-runner/internal/domain"

	"github.com/spf13/afero"
)

// FSImageResolver checks image references against a filesystem. Relative paths
// are resolved against BaseDir.
type FSImageResolver struct {
	fs      afero.Fs
	baseDir string
}

func NewFSImageResolver(fs afero.Fs, baseDir string) *FSImageResolver {
	return &FSImageResolver{fs: fs, baseDir: baseDir}
}

// Resolve returns nil when path names a file whose header decodes as a known image format.
func (r *FSImageResolver) Resolve(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("empty image path")
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(r.baseDir, full)
	}

	f, err := r.fs.Open(full)
	if err != nil {
		return fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("decode image %s: %w", path, err)
	}
	return nil
}

var _ domain.ImageResolver = (*FSImageResolver)(nil)
