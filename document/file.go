package document

import (
	"context"
	"errors"
	"os"
)

// OpenFile opens the file at path and loads it with open. The returned
// document keeps the file open and closes it on Close.
func OpenFile(ctx context.Context, path string, open Opener) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	doc, err := open(ctx, f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileDocument{Document: doc, f: f}, nil
}

type fileDocument struct {
	Document
	f *os.File
}

func (d *fileDocument) Close() error {
	return errors.Join(d.Document.Close(), d.f.Close())
}
