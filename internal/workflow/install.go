package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/verte-zerg/iccgen/internal/refprofile"
)

// ErrProfileNotGenerated is returned by InstallProfile when no profile has
// been built for the job yet.
var ErrProfileNotGenerated = errors.New("ICC file doesn't exist, please generate it first!")

func (w *Workflow) install() error {
	base, err := w.job.ProfileAbsoluteFullPath()
	if err != nil {
		return err
	}
	src := base + ".icc"
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrProfileNotGenerated
		}
		return fmt.Errorf("failed to stat profile: %w", err)
	}
	info, err := refprofile.Check(src)
	if err != nil {
		return err
	}

	dst := filepath.Join(w.installDir, w.job.ProfileName()+".icc")
	if err := copyFile(src, dst); err != nil {
		w.logger.Error("failed to install profile",
			zap.String("src", src),
			zap.String("dst", dst),
			zap.Error(err),
			zap.Stack("stack"),
		)
		return nil
	}
	w.logger.Info("profile installed",
		zap.String("path", dst),
		zap.String("color_space", info.ColorSpace),
		zap.Int("channels", info.Channels),
	)
	return nil
}

// copyFile copies src to dst keeping the permission bits and modification
// time. The destination directory is created when missing.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Sync(); err != nil {
		return err
	}
	return os.Chtimes(dst, st.ModTime(), st.ModTime())
}
