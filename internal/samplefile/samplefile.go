// ABOUTME: Writes per-second activity samples to columnar and flat files.
// ABOUTME: Parquet via xitongsys/parquet-go, CSV via encoding/csv.
package samplefile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/harperreed/trainload/internal/models"
)

const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

// ParseFormat normalizes a format name. Empty means parquet.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatParquet:
		return FormatParquet, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", s)
	}
}

// Header is the CSV column order. Parquet uses the same names.
var Header = []string{
	"activity_id", "timestamp", "record_number", "heart_rate", "cadence",
	"distance_m", "power_w", "speed_mps", "altitude_m",
}

type parquetRow struct {
	ActivityID   int64    `parquet:"name=activity_id, type=INT64"`
	Timestamp    string   `parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	RecordNumber int64    `parquet:"name=record_number, type=INT64"`
	HeartRate    *int32   `parquet:"name=heart_rate, type=INT32, repetitiontype=OPTIONAL"`
	Cadence      *int32   `parquet:"name=cadence, type=INT32, repetitiontype=OPTIONAL"`
	DistanceM    *float64 `parquet:"name=distance_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	Power        *int32   `parquet:"name=power_w, type=INT32, repetitiontype=OPTIONAL"`
	SpeedMPS     *float64 `parquet:"name=speed_mps, type=DOUBLE, repetitiontype=OPTIONAL"`
	AltitudeM    *float64 `parquet:"name=altitude_m, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	out := int32(*v)
	return &out
}

func toParquetRow(s models.Sample) parquetRow {
	return parquetRow{
		ActivityID:   s.ActivityID,
		Timestamp:    models.FormatTimestamp(s.Timestamp),
		RecordNumber: int64(s.RecordNumber),
		HeartRate:    int32Ptr(s.HeartRate),
		Cadence:      int32Ptr(s.Cadence),
		DistanceM:    s.DistanceM,
		Power:        int32Ptr(s.Power),
		SpeedMPS:     s.SpeedMPS,
		AltitudeM:    s.AltitudeM,
	}
}

// WriteParquet writes samples to a snappy-compressed parquet file at path.
func WriteParquet(path string, samples []models.Sample) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, s := range samples {
		if err := pw.Write(toParquetRow(s)); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteCSV writes samples with a header row. Missing values are empty cells.
func WriteCSV(w io.Writer, samples []models.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range samples {
		record := []string{
			strconv.FormatInt(s.ActivityID, 10),
			models.FormatTimestamp(s.Timestamp),
			strconv.Itoa(s.RecordNumber),
			formatInt(s.HeartRate),
			formatInt(s.Cadence),
			formatFloat(s.DistanceM),
			formatInt(s.Power),
			formatFloat(s.SpeedMPS),
			formatFloat(s.AltitudeM),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
