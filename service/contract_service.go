package service

import (
	"context"
	"errors"

	"clausecheck-backend/models"
	"clausecheck-backend/repository"

	"github.com/google/uuid"
)

// ContractService handles business logic for contracts and their pre-agreed terms
type ContractService struct {
	contractRepo *repository.ContractRepository
	termRepo     *repository.TermRepository
	verdictRepo  *repository.VerdictRepository
}

// ContractServiceOption is a functional option for ContractService
type ContractServiceOption func(*ContractService)

// WithContractRepository sets the contract repository
func WithContractRepository(repo *repository.ContractRepository) ContractServiceOption {
	return func(s *ContractService) {
		s.contractRepo = repo
	}
}

// WithTermRepository sets the term repository
func WithTermRepository(repo *repository.TermRepository) ContractServiceOption {
	return func(s *ContractService) {
		s.termRepo = repo
	}
}

// WithVerdictRepository sets the verdict repository
func WithVerdictRepository(repo *repository.VerdictRepository) ContractServiceOption {
	return func(s *ContractService) {
		s.verdictRepo = repo
	}
}

// NewContractService creates a new contract service
func NewContractService(opts ...ContractServiceOption) *ContractService {
	s := &ContractService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateContractRequest represents a request to create a contract
type CreateContractRequest struct {
	UserID           uuid.UUID
	Title            string
	CounterpartyName string
	OriginalText     string
	FileID           *uuid.UUID
}

// CreateContractResult represents the result of creating a contract
type CreateContractResult struct {
	Contract *models.Contract
}

// CreateContract creates a new contract in draft status
func (s *ContractService) CreateContract(ctx context.Context, req CreateContractRequest) (*CreateContractResult, error) {
	if s.contractRepo == nil {
		return nil, errors.New("contract repository not set")
	}

	contract := &models.Contract{
		UserID:           req.UserID,
		Status:           models.ContractStatusDraft,
		Title:            req.Title,
		CounterpartyName: req.CounterpartyName,
		OriginalText:     req.OriginalText,
		FileID:           req.FileID,
		Metadata:         make(models.ContractMetadata),
	}

	err := s.contractRepo.Create(ctx, contract)
	if err != nil {
		return nil, err
	}

	return &CreateContractResult{Contract: contract}, nil
}

// GetContractRequest represents a request to get a contract
type GetContractRequest struct {
	ID uuid.UUID
}

// GetContractResult represents the result of getting a contract
type GetContractResult struct {
	Contract *models.Contract
}

// GetContract retrieves a contract by ID
func (s *ContractService) GetContract(ctx context.Context, req GetContractRequest) (*GetContractResult, error) {
	if s.contractRepo == nil {
		return nil, errors.New("contract repository not set")
	}

	contract, err := s.contractRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &GetContractResult{Contract: contract}, nil
}

// UpdateContractRequest represents a request to update a contract
type UpdateContractRequest struct {
	Contract *models.Contract
}

// UpdateContractResult represents the result of updating a contract
type UpdateContractResult struct {
	Contract *models.Contract
}

// UpdateContract updates a contract
func (s *ContractService) UpdateContract(ctx context.Context, req UpdateContractRequest) (*UpdateContractResult, error) {
	if s.contractRepo == nil {
		return nil, errors.New("contract repository not set")
	}

	err := s.contractRepo.Update(ctx, req.Contract)
	if err != nil {
		return nil, err
	}

	return &UpdateContractResult{Contract: req.Contract}, nil
}

// ListContractsRequest represents a request to list contracts
type ListContractsRequest struct {
	UserID uuid.UUID
	Status *models.ContractStatus
	Limit  int
	Offset int
}

// ListContractsResult represents the result of listing contracts
type ListContractsResult struct {
	Contracts []*models.Contract
}

// ListContracts lists contracts for a user
func (s *ContractService) ListContracts(ctx context.Context, req ListContractsRequest) (*ListContractsResult, error) {
	if s.contractRepo == nil {
		return nil, errors.New("contract repository not set")
	}

	contracts, err := s.contractRepo.ListByUserID(ctx, req.UserID, req.Status, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	return &ListContractsResult{Contracts: contracts}, nil
}

// AddTermRequest represents a request to attach a pre-agreed term to a contract
type AddTermRequest struct {
	ContractID      uuid.UUID
	TermCategory    string
	TermDescription string
	ExpectedValue   string
	IsMandatory     bool
}

// AddTermResult represents the result of adding a term
type AddTermResult struct {
	Term *models.PreAgreedTerm
}

// AddTerm attaches a pre-agreed term to a contract
func (s *ContractService) AddTerm(ctx context.Context, req AddTermRequest) (*AddTermResult, error) {
	if s.termRepo == nil {
		return nil, errors.New("term repository not set")
	}
	if s.contractRepo == nil {
		return nil, errors.New("contract repository not set")
	}

	// Validate the contract exists before attaching terms to it
	_, err := s.contractRepo.GetByID(ctx, req.ContractID)
	if err != nil {
		return nil, ErrContractNotFound
	}

	term := &models.PreAgreedTerm{
		ContractID:      req.ContractID,
		TermCategory:    req.TermCategory,
		TermDescription: req.TermDescription,
		ExpectedValue:   req.ExpectedValue,
		IsMandatory:     req.IsMandatory,
	}

	err = s.termRepo.Create(ctx, term)
	if err != nil {
		return nil, err
	}

	return &AddTermResult{Term: term}, nil
}

// ListTermsRequest represents a request to list a contract's pre-agreed terms
type ListTermsRequest struct {
	ContractID uuid.UUID
}

// ListTermsResult represents the result of listing terms
type ListTermsResult struct {
	Terms []*models.PreAgreedTerm
}

// ListTerms lists the pre-agreed terms of a contract
func (s *ContractService) ListTerms(ctx context.Context, req ListTermsRequest) (*ListTermsResult, error) {
	if s.termRepo == nil {
		return nil, errors.New("term repository not set")
	}

	terms, err := s.termRepo.ListByContract(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	return &ListTermsResult{Terms: terms}, nil
}

// ListVerdictsRequest represents a request to list a contract's review verdicts
type ListVerdictsRequest struct {
	ContractID uuid.UUID
}

// ListVerdictsResult represents the result of listing verdicts
type ListVerdictsResult struct {
	Verdicts []*models.Verdict
}

// ListVerdicts lists the verdicts recorded by the latest completed review
func (s *ContractService) ListVerdicts(ctx context.Context, req ListVerdictsRequest) (*ListVerdictsResult, error) {
	if s.verdictRepo == nil {
		return nil, errors.New("verdict repository not set")
	}

	verdicts, err := s.verdictRepo.ListByContract(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	return &ListVerdictsResult{Verdicts: verdicts}, nil
}
