package grantsource

import (
	"context"
	"fmt"
	"io"
	"os"

	"authz-service/pkg/rbac"
)

// File reads a YAML grant table document from disk on every Load, so an
// edited file is picked up by the next reload.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string {
	return "file:" + f.path
}

func (f *File) Load(ctx context.Context) (*rbac.GrantTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf(errReadDocumentFmt, f.path, err)
	}
	defer fh.Close()

	data, err := io.ReadAll(io.LimitReader(fh, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf(errReadDocumentFmt, f.path, err)
	}
	return Compile(f.path, data)
}
