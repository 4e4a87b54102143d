package coupon

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped coupon files from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped coupon file and returns its Book.
func (l *fileLoader) Load(ctx context.Context, filePath string) (Book, error) {
	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon file")
		return nil, fmt.Errorf("failed to open coupon file %s: %w", filePath, err)
	}
	defer file.Close()

	book, err := readBook(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read coupon file")
		return nil, fmt.Errorf("failed to read coupon file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("coupons_loaded", book.Size()).
		Msg("coupon file loaded")

	return book, nil
}
