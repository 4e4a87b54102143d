package coupon

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"restore/internal/model"
)

// cancelCheckInterval is how many records are read between context checks.
const cancelCheckInterval = 10_000

// readBook decodes a gzipped coupon file. Each record is
// CODE,amount_off,percent_off[,name]; blank lines and lines starting with
// '#' are ignored.
func readBook(ctx context.Context, r io.Reader) (*MemoryBook, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	reader := csv.NewReader(gzipReader)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	book := NewBook(1024)
	for n := 0; ; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read coupon record: %w", err)
		}

		line, _ := reader.FieldPos(0)
		c, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		book.Put(c)
	}

	return book, nil
}

func parseRecord(record []string) (model.Coupon, error) {
	if len(record) < 3 {
		return model.Coupon{}, fmt.Errorf("expected at least 3 fields, got %d", len(record))
	}

	code := normalizeCode(record[0])
	if code == "" {
		return model.Coupon{}, errors.New("empty coupon code")
	}

	amountOff, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
	if err != nil || amountOff < 0 {
		return model.Coupon{}, fmt.Errorf("invalid amount_off %q for %s", record[1], code)
	}

	percentOff, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil || percentOff < 0 || percentOff > 100 {
		return model.Coupon{}, fmt.Errorf("invalid percent_off %q for %s", record[2], code)
	}

	if (amountOff > 0) == (percentOff > 0) {
		return model.Coupon{}, fmt.Errorf("coupon %s must set exactly one of amount_off and percent_off", code)
	}

	c := model.Coupon{Code: code, AmountOff: amountOff, PercentOff: percentOff, Name: code}
	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		c.Name = strings.TrimSpace(record[3])
	}
	return c, nil
}

// WriteFile writes coupons to a gzipped CSV file, creating parent directories.
func WriteFile(path string, coupons []model.Coupon) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	return writeCoupons(file, coupons)
}

// writeCoupons gzips coupons as CSV into w. The gzip stream is closed on
// every path.
func writeCoupons(w io.Writer, coupons []model.Coupon) (err error) {
	gzipWriter := gzip.NewWriter(w)
	defer func() {
		if cerr := gzipWriter.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to finish gzip stream: %w", cerr)
		}
	}()

	writer := csv.NewWriter(gzipWriter)
	for _, c := range coupons {
		record := []string{
			c.Code,
			strconv.FormatInt(c.AmountOff, 10),
			strconv.Itoa(c.PercentOff),
			c.Name,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write coupon %s: %w", c.Code, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush coupons: %w", err)
	}

	return nil
}
