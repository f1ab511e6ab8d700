package cloudwriter

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/source"
)

// Config selects a cloud object-store backend for file sinks.
type Config struct {
	Provider   string
	Region     string
	BucketName string
}

type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

func NewFactory(cfg Config) (CloudWriterFactory, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3WriterFactory(cfg.Region)
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.Provider)
	}
}

// ParquetFile adapts a CloudWriter to the parquet-go source interface.
// Objects are write-once, so reads are not supported.
type ParquetFile struct {
	cloudWriter CloudWriter
	offset      int64
}

func NewParquetFile(cw CloudWriter) *ParquetFile {
	return &ParquetFile{cloudWriter: cw}
}

func (p *ParquetFile) Open(name string) (source.ParquetFile, error) {
	return p, nil
}

func (p *ParquetFile) Create(name string) (source.ParquetFile, error) {
	return p, nil
}

func (p *ParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		p.offset = offset
	case io.SeekCurrent:
		p.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return p.offset, nil
}

func (p *ParquetFile) Read(b []byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (p *ParquetFile) Write(b []byte) (int, error) {
	return p.cloudWriter.Write(b)
}

func (p *ParquetFile) Close() error {
	return p.cloudWriter.Close()
}
