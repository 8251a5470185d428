package local

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/tools"
)

// Storage 本地磁盘转存，开发环境用。同时落一份缩略图。
type Storage struct {
	Dir       string
	URLPrefix string
}

func New(dir, urlPrefix string) *Storage {
	return &Storage{Dir: dir, URLPrefix: urlPrefix}
}

func (s *Storage) Relocate(ctx context.Context, transientURL string, hint string) (string, error) {
	b, _, err := tools.GetOnlineImage(transientURL)
	if err != nil {
		return "", fmt.Errorf("download transient image: %w", err)
	}
	fName := uuid.New().String() + "." + tools.DetectImageType(b).String()
	path := filepath.Join(s.Dir, fName)
	if err := SaveFile(bytes.NewReader(b), path); err != nil {
		return "", err
	}
	thumb, err := tools.Thumbnail(bytes.NewReader(b), 0.3, imaging.JPEG)
	if err != nil {
		logs.Logger.Warn().Err(err).Str("hint", hint).Msg("thumbnail failed")
	} else {
		if err := SaveFile(thumb, filepath.Join(s.Dir, "thumb_"+fName)); err != nil {
			logs.Logger.Warn().Err(err).Str("hint", hint).Msg("save thumbnail failed")
		}
	}
	return tools.FullURL(s.URLPrefix, fName), nil
}

func SaveFile(f io.Reader, path string) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0770)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, f)
	if err != nil {
		return err
	}
	return nil
}
