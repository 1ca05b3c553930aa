package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

func loadFromFS(ctx context.Context, files fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyLocation
	}
	if files == nil {
		return nil, errors.New("source: no fs configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(files, name)
	if err != nil {
		return nil, fmt.Errorf("source: read %s%s: %w", FSPrefix, name, err)
	}
	return data, nil
}
