package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"clausecheck-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler handles HTTP requests for contracts and reviews
type ContractHandler struct {
	contractService *service.ContractService
	reviewService   *service.ReviewService
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *service.ContractService, reviewService *service.ReviewService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		reviewService:   reviewService,
	}
}

// CreateContractRequest represents the request body for creating a contract
type CreateContractRequest struct {
	UserID           string  `json:"user_id" binding:"required"`
	Title            string  `json:"title"`
	CounterpartyName string  `json:"counterparty_name"`
	OriginalText     string  `json:"original_text" binding:"required"`
	FileID           *string `json:"file_id"`
}

// CreateContract handles POST /api/contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	serviceReq := service.CreateContractRequest{
		UserID:           userID,
		Title:            req.Title,
		CounterpartyName: req.CounterpartyName,
		OriginalText:     req.OriginalText,
	}

	if req.FileID != nil {
		fileID, err := uuid.Parse(*req.FileID)
		if err == nil {
			serviceReq.FileID = &fileID
		}
	}

	result, err := h.contractService.CreateContract(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Contract,
	})
}

// GetContract handles GET /api/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid contract ID format",
			},
		})
		return
	}

	result, err := h.contractService.GetContract(c.Request.Context(), service.GetContractRequest{ID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Contract not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Contract,
	})
}

// AddTermRequest represents the request body for attaching a pre-agreed term
type AddTermRequest struct {
	TermCategory    string `json:"term_category" binding:"required"`
	TermDescription string `json:"term_description" binding:"required"`
	ExpectedValue   string `json:"expected_value" binding:"required"`
	IsMandatory     bool   `json:"is_mandatory"`
}

// AddTerm handles POST /api/contracts/:id/terms
func (h *ContractHandler) AddTerm(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid contract ID format",
			},
		})
		return
	}

	var req AddTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	serviceReq := service.AddTermRequest{
		ContractID:      id,
		TermCategory:    req.TermCategory,
		TermDescription: req.TermDescription,
		ExpectedValue:   req.ExpectedValue,
		IsMandatory:     req.IsMandatory,
	}

	result, err := h.contractService.AddTerm(c.Request.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Contract not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Term,
	})
}

// ListTerms handles GET /api/contracts/:id/terms
func (h *ContractHandler) ListTerms(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid contract ID format",
			},
		})
		return
	}

	result, err := h.contractService.ListTerms(c.Request.Context(), service.ListTermsRequest{ContractID: id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Terms,
	})
}

// ListVerdicts handles GET /api/contracts/:id/verdicts
func (h *ContractHandler) ListVerdicts(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid contract ID format",
			},
		})
		return
	}

	result, err := h.contractService.ListVerdicts(c.Request.Context(), service.ListVerdictsRequest{ContractID: id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Verdicts,
	})
}

// StartReview handles POST /api/contracts/:id/review
func (h *ContractHandler) StartReview(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid contract ID format",
			},
		})
		return
	}

	// Create job (synchronous, fast)
	result, err := h.reviewService.StartReview(c.Request.Context(), service.StartReviewRequest{ContractID: id})
	if err != nil {
		status := http.StatusInternalServerError
		code := "REVIEW_FAILED"
		switch {
		case errors.Is(err, service.ErrContractNotFound):
			status = http.StatusNotFound
			code = "NOT_FOUND"
		case errors.Is(err, service.ErrMissingContractText), errors.Is(err, service.ErrNoTermsDefined):
			status = http.StatusUnprocessableEntity
			code = "MISSING_DATA"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	// Spawn background goroutine for actual processing
	// Use background context (not request context) to avoid cancellation
	go func() {
		bgCtx := context.Background()
		if err := h.reviewService.ProcessReview(bgCtx, result.JobID); err != nil {
			// Error is stored in job.ErrorMessage; clients poll for status
			log.Printf("Review job %s failed: %v", result.JobID, err)
		}
	}()

	// Return immediately (within 100ms)
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id":  result.JobID,
			"status":  "pending",
			"message": "Review job created. Poll /api/jobs/:id for updates.",
		},
	})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *ContractHandler) GetJobStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	result, err := h.reviewService.GetJobStatus(c.Request.Context(), service.GetJobStatusRequest{JobID: id})
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Review job not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Job,
	})
}
