package csvreader

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
)

// Reader reads comma separated rows, the first row is treated as the header.
type Reader struct {
	gzip   *gzip.Reader
	reader *csv.Reader
	header []string
}

func NewReader(r io.Reader) (*Reader, error) {
	return newReader(r, nil)
}

// NewGzipReader decompresses [r] while reading it.
func NewGzipReader(r io.Reader) (*Reader, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}

	return newReader(gzipReader, gzipReader)
}

func newReader(r io.Reader, gzipReader *gzip.Reader) (*Reader, error) {
	csvReader := csv.NewReader(r)
	header, err := csvReader.Read()
	if err != nil {
		if gzipReader != nil {
			_ = gzipReader.Close()
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	return &Reader{
		gzip:   gzipReader,
		reader: csvReader,
		header: header,
	}, nil
}

func (r *Reader) Header() []string {
	return r.header
}

// Read returns the next row, or [io.EOF] once every row has been read.
// Every row must have as many fields as the header.
func (r *Reader) Read() ([]string, error) {
	return r.reader.Read()
}

// ReadBatch reads up to [size] rows, an empty result means there is nothing left.
func (r *Reader) ReadBatch(size int) ([][]string, error) {
	var rows [][]string
	for len(rows) < size {
		row, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func (r *Reader) Close() error {
	if r.gzip != nil {
		return r.gzip.Close()
	}
	return nil
}
