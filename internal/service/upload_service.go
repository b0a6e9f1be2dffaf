package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kylewspence/FinSight/internal/models"
	"github.com/kylewspence/FinSight/internal/repository"
	"github.com/kylewspence/FinSight/pkg/apperror"
	"github.com/shopspring/decimal"
)

const DefaultAccountName = "Default Account"

// column aliases, matched against lower-cased trimmed headers
var (
	colSymbol        = []string{"symbol", "ticker"}
	colShares        = []string{"shares", "quantity", "qty"}
	colPrice         = []string{"price", "share price", "last price", "price ($)"}
	colDescription   = []string{"description", "security description", "name"}
	colAccountNumber = []string{"account number", "account"}
	colDate          = []string{"date", "run date", "trade date", "transaction date"}
	colAction        = []string{"action", "type", "transaction type"}
	colAmount        = []string{"amount", "amount ($)", "net amount"}
)

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	time.RFC3339,
}

// UploadSummary reports what an ingest did
type UploadSummary struct {
	Message           string `json:"message"`
	FileName          string `json:"fileName"`
	ArchivedAs        string `json:"archivedAs,omitempty"`
	HoldingsCount     int    `json:"holdingsCount"`
	TransactionsCount int    `json:"transactionsCount"`
	SkippedCount      int    `json:"skippedCount"`
}

// UploadService ingests brokerage CSV exports
type UploadService struct {
	holdingRepo *repository.HoldingRepository
	archiveDir  string
}

// NewUploadService creates a new UploadService. An empty archiveDir
// disables archiving of raw uploads.
func NewUploadService(holdingRepo *repository.HoldingRepository, archiveDir string) *UploadService {
	return &UploadService{
		holdingRepo: holdingRepo,
		archiveDir:  archiveDir,
	}
}

// ListHoldings returns the caller's holdings
func (s *UploadService) ListHoldings(ctx context.Context, id Identity) ([]models.Holding, error) {
	return s.holdingRepo.GetHoldingsByUserID(ctx, id.UserID)
}

// ListTransactions returns the caller's investment transactions
func (s *UploadService) ListTransactions(ctx context.Context, id Identity) ([]models.InvestmentTransaction, error) {
	return s.holdingRepo.GetTransactionsByUserID(ctx, id.UserID)
}

// IngestCSV reads a CSV with a header row. Rows with a date become
// investment transactions; other rows are upserted as holdings.
// Rows that cannot be used are skipped and counted.
func (s *UploadService) IngestCSV(ctx context.Context, id Identity, accountName, fileName string, src io.Reader) (*UploadSummary, error) {
	accountName = strings.TrimSpace(accountName)
	if accountName == "" {
		accountName = DefaultAccountName
	}

	summary := &UploadSummary{FileName: fileName}

	if s.archiveDir != "" {
		archived, closeArchive, err := s.archive(src)
		if err != nil {
			log.Printf("[UploadService] could not archive %q: %v", fileName, err)
		} else {
			defer closeArchive()
			src = archived.reader
			summary.ArchivedAs = archived.name
		}
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperror.New(apperror.BadRequest, "CSV file is empty")
		}
		return nil, apperror.Wrap(apperror.BadRequest, "Could not read CSV header", err)
	}
	cols := indexHeader(header)
	if _, ok := cols.find(colSymbol); !ok {
		if _, ok := cols.find(colDate); !ok {
			return nil, apperror.New(apperror.BadRequest, "CSV header must include a Symbol or Date column")
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Printf("[UploadService] skipping malformed line %d: %v", parseErr.Line, err)
				summary.SkippedCount++
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row := cols.row(record)
		if row.isBlank() {
			continue
		}

		if row.get(colDate) != "" {
			tx, ok := row.investmentTransaction(id.UserID, accountName)
			if !ok {
				summary.SkippedCount++
				continue
			}
			if err := s.holdingRepo.CreateTransaction(ctx, tx); err != nil {
				log.Printf("[UploadService] database error on transaction row for user %d: %v", id.UserID, err)
				summary.SkippedCount++
				continue
			}
			summary.TransactionsCount++
			continue
		}

		holding, ok := row.holding(id.UserID, accountName)
		if !ok {
			summary.SkippedCount++
			continue
		}
		if err := s.holdingRepo.Upsert(ctx, holding); err != nil {
			log.Printf("[UploadService] database error on holding %s for user %d: %v", holding.Symbol, id.UserID, err)
			summary.SkippedCount++
			continue
		}
		summary.HoldingsCount++
	}

	summary.Message = fmt.Sprintf("CSV processed: %d holdings, %d transactions, %d skipped",
		summary.HoldingsCount, summary.TransactionsCount, summary.SkippedCount)
	log.Printf("[UploadService] user %d: %s", id.UserID, summary.Message)
	return summary, nil
}

type archivedUpload struct {
	name   string
	reader io.Reader
}

// archive tees the upload into the archive directory under a random name
func (s *UploadService) archive(src io.Reader) (*archivedUpload, func(), error) {
	if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
		return nil, nil, err
	}
	name := uuid.NewString() + ".csv"
	f, err := os.Create(filepath.Join(s.archiveDir, name))
	if err != nil {
		return nil, nil, err
	}
	tee := io.TeeReader(src, f)
	closeFn := func() {
		// drain whatever the parser did not read so the archive is complete
		_, _ = io.Copy(io.Discard, tee)
		_ = f.Close()
	}
	return &archivedUpload{name: name, reader: tee}, closeFn, nil
}

type csvColumns map[string]int

func indexHeader(header []string) csvColumns {
	cols := make(csvColumns, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func (c csvColumns) find(aliases []string) (int, bool) {
	for _, a := range aliases {
		if i, ok := c[a]; ok {
			return i, true
		}
	}
	return 0, false
}

func (c csvColumns) row(record []string) csvRow {
	return csvRow{cols: c, record: record}
}

type csvRow struct {
	cols   csvColumns
	record []string
}

func (r csvRow) get(aliases []string) string {
	i, ok := r.cols.find(aliases)
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r csvRow) isBlank() bool {
	for _, v := range r.record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r csvRow) number(aliases []string) (decimal.Decimal, bool) {
	return parseNumber(r.get(aliases))
}

func (r csvRow) holding(userID uint, accountName string) (*models.Holding, bool) {
	symbol := strings.ToUpper(r.get(colSymbol))
	shares, ok := r.number(colShares)
	if symbol == "" || !ok {
		return nil, false
	}
	h := &models.Holding{
		UserID:        userID,
		AccountName:   accountName,
		AccountNumber: r.get(colAccountNumber),
		Symbol:        symbol,
		Description:   r.get(colDescription),
		Shares:        shares.InexactFloat64(),
	}
	if price, ok := r.number(colPrice); ok {
		h.SharePrice = price.InexactFloat64()
	}
	return h, true
}

func (r csvRow) investmentTransaction(userID uint, accountName string) (*models.InvestmentTransaction, bool) {
	date, ok := parseCSVDate(r.get(colDate))
	if !ok {
		return nil, false
	}
	shares, hasShares := r.number(colShares)
	price, hasPrice := r.number(colPrice)

	amount, ok := r.number(colAmount)
	if !ok {
		if !hasShares || !hasPrice {
			return nil, false
		}
		amount = shares.Mul(price)
	}

	return &models.InvestmentTransaction{
		UserID:      userID,
		AccountName: accountName,
		Date:        date,
		Action:      r.get(colAction),
		Symbol:      strings.ToUpper(r.get(colSymbol)),
		Description: r.get(colDescription),
		Shares:      shares.InexactFloat64(),
		SharePrice:  price.InexactFloat64(),
		Amount:      amount.Round(2).InexactFloat64(),
	}, true
}

// parseNumber accepts brokerage formatting such as "$1,234.50" and "(12.00)"
func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" || strings.EqualFold(s, "n/a") {
		return decimal.Zero, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

func parseCSVDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
