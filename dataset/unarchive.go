package dataset

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
)

type archiveReader struct {
	io.Reader
	closers []io.Closer
}

func (a *archiveReader) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openArchive opens filePath for streaming, decompressing .zip, .gz and .lz4
// on the fly. It returns the name of the inner file so the caller can pick
// a parser by extension. The source file is never modified.
func openArchive(filePath string) (io.ReadCloser, string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		return openZipArchive(filePath)
	case ".gz":
		return openGzipArchive(filePath)
	case ".lz4":
		return openLZ4Archive(filePath)
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, "", err
	}
	return f, filePath, nil
}

// openZipArchive streams the largest file of the archive.
func openZipArchive(filePath string) (io.ReadCloser, string, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, "", err
	}

	var largestFile *zip.File
	var largestSize uint64
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largestFile == nil || f.UncompressedSize64 > largestSize {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		r.Close()
		return nil, "", fmt.Errorf("zip archive %s is empty", filePath)
	}

	rc, err := largestFile.Open()
	if err != nil {
		r.Close()
		return nil, "", err
	}
	return &archiveReader{Reader: rc, closers: []io.Closer{r, rc}}, largestFile.Name, nil
}

func openGzipArchive(filePath string) (io.ReadCloser, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", err
	}
	gr, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, "", err
	}
	return &archiveReader{Reader: gr, closers: []io.Closer{file, gr}}, strings.TrimSuffix(filePath, filepath.Ext(filePath)), nil
}

func openLZ4Archive(filePath string) (io.ReadCloser, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", err
	}
	return &archiveReader{Reader: lz4.NewReader(file), closers: []io.Closer{file}}, strings.TrimSuffix(filePath, filepath.Ext(filePath)), nil
}
