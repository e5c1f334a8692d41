package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rmarin/tablero/internal/domain"
	"github.com/rmarin/tablero/internal/drive"
)

const (
	// ledgerFilename is the literal name of the shared discrepancy CSV file
	ledgerFilename = "Inventario.csv"

	// ledgerKeyColumn is the header name of the article-key column
	ledgerKeyColumn = "Articulo"

	ledgerContentType = "text/csv"

	// utf8BOM prefixes the ledger on every rewrite so spreadsheet tools
	// keep decoding it as UTF-8
	utf8BOM = "\uFEFF"
)

// LedgerService edits the shared CSV discrepancy ledger with
// read-modify-write cycles. There is no optimistic concurrency check: a
// concurrent editor between download and re-upload loses its change.
type LedgerService struct {
	storage  domain.Storage
	resolver *Resolver
	logger   *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(storage domain.Storage, resolver *Resolver, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		storage:  storage,
		resolver: resolver,
		logger:   logger,
	}
}

// Load re-reads the ledger from storage. The ledger is never cached
// locally; every load hits the remote file. A missing ledger file, or a
// store with no Inventario folder yet, yields an empty ledger, not an
// error. Reads never provision the folder.
func (s *LedgerService) Load(ctx context.Context, storeName string) (*domain.Ledger, error) {
	file, err := s.findLedgerFile(ctx, storeName, false)
	if errors.Is(err, domain.ErrStoreFolderNotFound) {
		return &domain.Ledger{KeyIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}
	if file == nil {
		return &domain.Ledger{KeyIndex: -1}, nil
	}

	data, err := s.storage.Download(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("downloading ledger: %w", err)
	}

	ledger, err := parseLedger(data)
	if err != nil {
		return nil, err
	}
	ledger.FileID = file.ID
	return ledger, nil
}

// RemoveByKey removes every data row whose article key equals the target
// key and re-uploads the ledger. A missing ledger file, or a key already
// absent, is a success: there is nothing to remove.
func (s *LedgerService) RemoveByKey(ctx context.Context, storeName, key string) error {
	file, err := s.findLedgerFile(ctx, storeName, true)
	if err != nil {
		return err
	}
	if file == nil {
		s.logger.Debug("ledger file absent, nothing to remove", "store", storeName)
		return nil
	}

	data, err := s.storage.Download(ctx, file.ID)
	if err != nil {
		return fmt.Errorf("downloading ledger: %w", err)
	}

	ledger, err := parseLedger(data)
	if err != nil {
		return err
	}
	if ledger.KeyIndex < 0 {
		// Empty file, nothing to remove
		return nil
	}

	target := strings.TrimSpace(key)
	kept := ledger.Rows[:0]
	for _, row := range ledger.Rows {
		if row.Key != target {
			kept = append(kept, row)
		}
	}
	removed := len(ledger.Rows) - len(kept)
	ledger.Rows = kept

	content, err := serializeLedger(ledger)
	if err != nil {
		return err
	}
	if err := s.storage.UploadReplace(ctx, file.ID, content, ledgerContentType); err != nil {
		return fmt.Errorf("uploading ledger: %w", err)
	}

	s.logger.Info("ledger row removal", "store", storeName, "key", target, "removed", removed)
	return nil
}

// RemoveBatch removes many keys, one full read-modify-write cycle per key,
// sequentially. The operation is not atomic: a mid-batch failure leaves
// earlier keys removed and later ones untouched. Returns the count of
// successful removals.
func (s *LedgerService) RemoveBatch(ctx context.Context, storeName string, keys []string) (int, error) {
	for i, key := range keys {
		if err := s.RemoveByKey(ctx, storeName, key); err != nil {
			return i, fmt.Errorf("removing key %q: %w", key, err)
		}
	}
	return len(keys), nil
}

// findLedgerFile locates the ledger file inside the store's Inventario
// folder, provisioning the folder only when createFolder is set. Returns
// nil when the file does not exist.
func (s *LedgerService) findLedgerFile(ctx context.Context, storeName string, createFolder bool) (*domain.RemoteFile, error) {
	var folderID string
	var err error
	if createFolder {
		folderID, err = s.resolver.ResolveOrCreateInventario(ctx, storeName)
	} else {
		folderID, err = s.resolver.ResolveInventario(ctx, storeName)
	}
	if err != nil {
		return nil, err
	}

	query := drive.NewQuery().Name(ledgerFilename).InParents(folderID).NotTrashed().String()
	entries, err := s.storage.Search(ctx, query, fileFields)
	if err != nil {
		return nil, fmt.Errorf("searching ledger file: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	e := entries[0]
	return &domain.RemoteFile{ID: e.ID, Name: e.Name, ModifiedTime: e.ModifiedTime}, nil
}

// parseLedger decodes the CSV ledger: optional BOM, header row, then data
// rows. Blank lines are skipped entirely. A header without the article-key
// column is a fatal ErrMalformedLedger.
func parseLedger(data []byte) (*domain.Ledger, error) {
	text := strings.TrimPrefix(string(data), utf8BOM)

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &domain.Ledger{KeyIndex: -1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger header: %w", err)
	}

	keyIndex := -1
	for i, col := range header {
		if strings.TrimSpace(col) == ledgerKeyColumn {
			keyIndex = i
			break
		}
	}
	if keyIndex < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrMalformedLedger, ledgerKeyColumn)
	}

	ledger := &domain.Ledger{Header: header, KeyIndex: keyIndex}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ledger row: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		key := ""
		if keyIndex < len(record) {
			key = strings.TrimSpace(record[keyIndex])
		}
		ledger.Rows = append(ledger.Rows, domain.DiscrepancyRow{Key: key, Fields: record})
	}
	return ledger, nil
}

// isBlankRecord reports whether a CSV record holds no content at all
func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// serializeLedger renders the ledger back to CSV with a leading BOM
func serializeLedger(ledger *domain.Ledger) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(ledger.Header); err != nil {
		return nil, fmt.Errorf("writing ledger header: %w", err)
	}
	for _, row := range ledger.Rows {
		if err := w.Write(row.Fields); err != nil {
			return nil, fmt.Errorf("writing ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing ledger: %w", err)
	}
	return buf.Bytes(), nil
}
