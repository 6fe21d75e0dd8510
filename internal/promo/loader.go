package promo

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"bloomkart/internal/model"
)

// fileLoader implements Loader for reading gzipped JSON-lines promo files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based promo loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "promo-loader").Logger(),
	}
}

// Load reads a gzipped promo file and returns its codes. The file is
// expected to contain one JSON-encoded promo definition per line.
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.PromoCode, error) {
	l.logger.Info().Str("file", path).Msg("loading promo file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open promo file")
		return nil, fmt.Errorf("failed to open promo file %s: %w", path, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", path, err)
	}
	defer gzipReader.Close()

	codes, err := decodePromoLines(ctx, gzipReader, path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("error reading promo file")
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("promos_loaded", len(codes)).
		Msg("promo file loaded successfully")

	return codes, nil
}

// decodePromoLines parses one JSON promo definition per line, skipping
// blank lines. Shared by the file and S3 loaders.
func decodePromoLines(ctx context.Context, r io.Reader, source string) ([]model.PromoCode, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var codes []model.PromoCode
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		// Check context cancellation periodically
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var code model.PromoCode
		if err := json.Unmarshal([]byte(line), &code); err != nil {
			return nil, fmt.Errorf("invalid promo definition at %s line %d: %w", source, lineNo, err)
		}
		if code.Code == "" {
			return nil, fmt.Errorf("promo definition at %s line %d has no code", source, lineNo)
		}
		codes = append(codes, code)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading promo file %s: %w", source, err)
	}

	return codes, nil
}
