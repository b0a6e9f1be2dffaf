package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kylewspence/FinSight/internal/models"
	"github.com/kylewspence/FinSight/internal/repository"
	"github.com/kylewspence/FinSight/pkg/apperror"
)

var (
	ErrTransactionNotFound  = apperror.New(apperror.NotFound, "Transaction not found")
	ErrTransactionForbidden = apperror.New(apperror.Forbidden, "Not authorized to modify this transaction")
)

// TransactionService handles budget transaction operations
type TransactionService struct {
	repo *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(repo *repository.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// CreateTransactionRequest is the body of a transaction create request
type CreateTransactionRequest struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// UpdateTransactionRequest carries the fields to change. Nil fields are left unchanged.
type UpdateTransactionRequest struct {
	Date        *string  `json:"date"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
}

// List returns the caller's transactions, newest first
func (s *TransactionService) List(ctx context.Context, id Identity) ([]models.Transaction, error) {
	return s.repo.GetByUserID(ctx, id.UserID)
}

// Get returns one of the caller's transactions
func (s *TransactionService) Get(ctx context.Context, id Identity, transactionID uint) (*models.Transaction, error) {
	tx, err := s.repo.GetByIDAndUserID(ctx, transactionID, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// Create stores a new transaction for the caller
func (s *TransactionService) Create(ctx context.Context, id Identity, req CreateTransactionRequest) (*models.Transaction, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if req.Amount == 0 {
		return nil, apperror.New(apperror.BadRequest, "amount must be a non-zero number")
	}
	category := strings.TrimSpace(req.Category)
	description := strings.TrimSpace(req.Description)
	if category == "" || description == "" {
		return nil, apperror.New(apperror.BadRequest, "category and description are required")
	}

	tx := &models.Transaction{
		UserID:      id.UserID,
		Date:        date,
		Amount:      roundTo(req.Amount, 2),
		Category:    category,
		Description: description,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

// Update applies the fields present in req
func (s *TransactionService) Update(ctx context.Context, id Identity, transactionID uint, req UpdateTransactionRequest) (*models.Transaction, error) {
	tx, err := s.owned(ctx, id, transactionID)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		date, err := ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		tx.Date = date
	}
	if req.Amount != nil {
		if *req.Amount == 0 {
			return nil, apperror.New(apperror.BadRequest, "amount must be a non-zero number")
		}
		tx.Amount = roundTo(*req.Amount, 2)
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, apperror.New(apperror.BadRequest, "category cannot be empty")
		}
		tx.Category = category
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, apperror.New(apperror.BadRequest, "description cannot be empty")
		}
		tx.Description = description
	}

	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return tx, nil
}

// Delete removes one of the caller's transactions
func (s *TransactionService) Delete(ctx context.Context, id Identity, transactionID uint) error {
	if _, err := s.owned(ctx, id, transactionID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, transactionID); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *TransactionService) owned(ctx context.Context, id Identity, transactionID uint) (*models.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if tx.UserID != id.UserID {
		return nil, ErrTransactionForbidden
	}
	return tx, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns midnight UTC of that day
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperror.New(apperror.BadRequest, "date is required")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperror.BadRequestf("invalid date %q, expected YYYY-MM-DD", s)
}
