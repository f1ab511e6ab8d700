package simulator

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ergowatches/served/internal/cloudwriter"
	"github.com/ergowatches/served/internal/output"
	"github.com/ergowatches/served/internal/simulator/producers"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct{}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	out := fmt.Sprintf("[%s] %s\n", topic, string(msg))
	if _, err := os.Stdout.Write([]byte(out)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// partitionPath buckets an event by its embedded timestamp, hive-style.
func partitionPath(msg []byte) (string, map[string]interface{}, error) {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return "", nil, err
	}
	timestamp, ok := event["timestamp"].(float64)
	if !ok {
		return "", nil, fmt.Errorf("event without a numeric timestamp")
	}
	eventTime := time.Unix(int64(timestamp), 0)
	year, month, day := eventTime.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, eventTime.Hour()), event, nil
}

type JSONOutput struct {
	basePath string
	folder   string
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	partition, _, err := partitionPath(msg)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(j.basePath, j.folder, topic, partition)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return err
	}

	fileKey := fmt.Sprintf("%s_%s", topic, partition)
	file, ok := j.files[fileKey]
	if !ok {
		file, err = os.Create(filepath.Join(fullPath, "data.json"))
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err = file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	for _, file := range j.files {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

type CSVOutput struct {
	basePath string
	folder   string
	files    map[string]*csv.Writer
	headers  map[string][]string
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*csv.Writer),
		headers:  make(map[string][]string),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	partition, event, err := partitionPath(msg)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(c.basePath, c.folder, topic, partition)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return err
	}

	fileKey := fmt.Sprintf("%s_%s", topic, partition)
	csvWriter, ok := c.files[fileKey]
	if !ok {
		file, err := os.Create(filepath.Join(fullPath, "data.csv"))
		if err != nil {
			return err
		}
		csvWriter = csv.NewWriter(file)
		c.files[fileKey] = csvWriter

		headers := make([]string, 0, len(event))
		for key := range event {
			headers = append(headers, key)
		}
		sort.Strings(headers)
		if err := csvWriter.Write(headers); err != nil {
			return err
		}
		c.headers[fileKey] = headers
	}

	row := make([]string, len(c.headers[fileKey]))
	for i, header := range c.headers[fileKey] {
		if value, ok := event[header]; ok {
			row[i] = fmt.Sprintf("%v", value)
		}
	}
	if err := csvWriter.Write(row); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func (c *CSVOutput) Close() error {
	for _, csvWriter := range c.files {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return err
		}
	}
	return nil
}

type ParquetOutput struct {
	basePath        string
	folder          string
	mu              sync.Mutex
	writers         map[string]*writer.ParquetWriter
	files           map[string]source.ParquetFile
	cloudFactory    cloudwriter.CloudWriterFactory
	cloudBucketName string
}

func NewParquetOutput(basePath, folder, destination string, cloud cloudwriter.Config) (*ParquetOutput, error) {
	p := &ParquetOutput{
		basePath: basePath,
		folder:   folder,
		writers:  make(map[string]*writer.ParquetWriter),
		files:    make(map[string]source.ParquetFile),
	}

	if destination != "" && destination != "local" {
		factory, err := cloudwriter.NewFactory(cloud)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		p.cloudFactory = factory
		p.cloudBucketName = cloud.BucketName
	}

	return p, nil
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	partition, event, err := partitionPath(msg)
	if err != nil {
		return err
	}

	writerKey := fmt.Sprintf("%s_%s", topic, partition)
	p.mu.Lock()
	defer p.mu.Unlock()

	pw, ok := p.writers[writerKey]
	if !ok {
		pw, err = p.newWriter(writerKey, topic, partition)
		if err != nil {
			return fmt.Errorf("failed to create parquet writer: %w", err)
		}
	}

	if err := pw.Write(event); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) newWriter(writerKey, topic, partition string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	var err error
	if p.cloudFactory != nil {
		objectPath := filepath.Join(p.folder, topic, partition, "data.parquet")
		cw, err := p.cloudFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = cloudwriter.NewParquetFile(cw)
	} else {
		fullPath := filepath.Join(p.basePath, p.folder, topic, partition)
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	sc, err := GetSchema(topic)
	if err != nil {
		return nil, err
	}

	pw, err := writer.NewParquetWriter(fw, nil, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.SchemaHandler = sc

	p.writers[writerKey] = pw
	p.files[writerKey] = fw
	return pw, nil
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for key, pw := range p.writers {
		if err := pw.WriteStop(); err != nil {
			lastErr = err
			log.Printf("Error closing writer for key %s: %v", key, err)
		}
		if f, ok := p.files[key]; ok {
			if err := f.Close(); err != nil {
				lastErr = err
				log.Printf("Error closing file for key %s: %v", key, err)
			}
		}
	}
	return lastErr
}

func (s *Simulator) determineOutputDestination() OutputDestination {
	cfg := s.Config
	if cfg.KafkaEnabled {
		producer, err := producers.NewSaramaProducer(cfg)
		if err != nil {
			log.Fatalf("Failed to create Kafka producer: %v", err)
		}
		return producer
	}
	if cfg.Database.Enabled {
		sink, err := output.NewPostgresOutput(&cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect Postgres output: %v", err)
		}
		if err := sink.BulkInsertMenuItems(context.Background(), s.Catalog, cfg.DefaultLocale); err != nil {
			log.Printf("Failed to load menu catalog into Postgres: %v", err)
		}
		return sink
	}
	if cfg.OutputPath != "" {
		switch cfg.OutputFormat {
		case "parquet":
			sink, err := NewParquetOutput(cfg.OutputPath, cfg.OutputFolder, cfg.OutputDestination, cloudwriter.Config{
				Provider:   cfg.CloudStorage.Provider,
				Region:     cfg.CloudStorage.Region,
				BucketName: cfg.CloudStorage.BucketName,
			})
			if err != nil {
				log.Fatalf("Failed to create Parquet output: %v", err)
			}
			return sink
		case "json", "":
			return NewJSONOutput(cfg.OutputPath, cfg.OutputFolder)
		case "csv":
			return NewCSVOutput(cfg.OutputPath, cfg.OutputFolder)
		default:
			log.Fatalf("Unsupported output format: %s", cfg.OutputFormat)
		}
	}
	return &ConsoleOutput{}
}
