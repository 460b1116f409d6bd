// File: pkg/export/archive.go

package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/ruslano69/tradelog/pkg/ingest"
	"github.com/ruslano69/tradelog/pkg/ledger"
)

// DefaultCompressionLevel - баланс скорости и степени сжатия
const DefaultCompressionLevel = 3

// WriteArchive записывает сделки в сжатый zstd поток, по одной
// JSON-строке на сделку.
// level: 1 (самый быстрый) - 22 (лучшее сжатие).
func WriteArchive(w io.Writer, trades []ledger.LoggedTrade, level int) error {
	opts := []zstd.EOption{
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(4),
	}
	encoder, err := zstd.NewWriter(w, opts...)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	for i, trade := range trades {
		line, err := ingest.EncodeTrade(trade)
		if err != nil {
			encoder.Close()
			return fmt.Errorf("archive trade %d: %w", i, err)
		}
		if _, err := encoder.Write(append(line, '\n')); err != nil {
			encoder.Close()
			return fmt.Errorf("archive trade %d: %w", i, err)
		}
	}
	return encoder.Close()
}

// ReadArchive читает сделки из сжатого zstd потока.
func ReadArchive(r io.Reader) ([]ledger.LoggedTrade, error) {
	opts := []zstd.DOption{
		zstd.WithDecoderConcurrency(4),
	}
	decoder, err := zstd.NewReader(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var trades []ledger.LoggedTrade
	scanner := bufio.NewScanner(decoder)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		trade, err := ingest.DecodeTrade(line)
		if err != nil {
			return nil, fmt.Errorf("archive trade %d: %w", len(trades), err)
		}
		trades = append(trades, trade)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return trades, nil
}

// WriteArchiveFile записывает архив сделок в файл.
func WriteArchiveFile(filePath string, trades []ledger.LoggedTrade, level int) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	if err := WriteArchive(f, trades, level); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadArchiveFile читает архив сделок из файла.
func ReadArchiveFile(filePath string) ([]ledger.LoggedTrade, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer f.Close()
	return ReadArchive(f)
}
