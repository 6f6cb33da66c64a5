package repository

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang-market-signal/internal/pipeline/config"
)

// WatchlistRepository returns the symbols an ingestion run covers.
type WatchlistRepository interface {
	GetSymbols(ctx context.Context) ([]string, error)
}

type fileWatchlistRepository struct {
	path string
}

// NewFileWatchlistRepository reads symbols from a text file, one per line.
// Blank lines and lines starting with # are ignored.
func NewFileWatchlistRepository(path string) WatchlistRepository {
	return &fileWatchlistRepository{path: path}
}

func (r *fileWatchlistRepository) GetSymbols(_ context.Context) ([]string, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open watchlist file: %w", err)
	}
	defer f.Close()

	var symbols []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbol := strings.ToUpper(line)
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read watchlist file: %w", err)
	}
	return symbols, nil
}

type dbWatchlistRepository struct {
	stocks StocksRepository
}

// NewDBWatchlistRepository reads symbols from the active rows of the stocks table.
func NewDBWatchlistRepository(stocks StocksRepository) WatchlistRepository {
	return &dbWatchlistRepository{stocks: stocks}
}

func (r *dbWatchlistRepository) GetSymbols(ctx context.Context) ([]string, error) {
	stocks, err := r.stocks.GetActiveStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stocks: %w", err)
	}
	symbols := make([]string, 0, len(stocks))
	for _, s := range stocks {
		symbols = append(symbols, s.Code)
	}
	return symbols, nil
}

// Watch list sources.
const (
	WatchlistSourceFile = "file"
	WatchlistSourceDB   = "db"
)

// NewWatchlistRepository returns the watch list selected by watchlist.source.
func NewWatchlistRepository(cfg config.Watchlist, stocks StocksRepository) (WatchlistRepository, error) {
	switch strings.ToLower(cfg.Source) {
	case WatchlistSourceFile, "":
		return NewFileWatchlistRepository(cfg.File), nil
	case WatchlistSourceDB:
		return NewDBWatchlistRepository(stocks), nil
	default:
		return nil, fmt.Errorf("unknown watchlist source: %s", cfg.Source)
	}
}
