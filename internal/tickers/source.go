// Package tickers reads the list of symbols a batch ingests.
package tickers

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"

	"StockSentinel/internal/model"
)

// List is an ordered, de-duplicated set of normalized ticker symbols.
type List struct {
	Symbols  []string
	Checksum string
}

// Load reads a ticker file, one symbol per line.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker file %s: %w", path, err)
	}
	defer f.Close()

	list, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read ticker file %s: %w", path, err)
	}
	return list, nil
}

// Read parses symbols from r. Blank lines and repeated symbols are dropped;
// first-seen order is kept.
func Read(r io.Reader) (*List, error) {
	seen := make(map[string]struct{})
	list := &List{}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		sym := model.NormalizeTicker(sc.Text())
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		list.Symbols = append(list.Symbols, sym)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	list.Checksum = checksum(list.Symbols)
	return list, nil
}

func checksum(symbols []string) string {
	digest := xxhash.New()
	digest.WriteString(strings.Join(symbols, "\n"))
	return hex.EncodeToString(digest.Sum(nil))
}
