package services

import (
	"fmt"
	"sort"
	"time"

	"procurement-management-api/models"

	"gorm.io/gorm"
)

// ApprovalMatrixService owns the threshold configuration: a set of
// half-open [min, max) spend bands, each carrying an ordered role chain.
type ApprovalMatrixService struct {
	db *gorm.DB
}

func NewApprovalMatrixService(db *gorm.DB) *ApprovalMatrixService {
	return &ApprovalMatrixService{db: db}
}

// EvaluateApprovalChain is pure: given a spend amount and the configured
// bands, it returns the ordered role sequence that must approve. Bands are
// checked in ascending min order; the first band containing the amount wins.
// No matching band, or a matching band with no steps, fails closed with
// ConfigurationError. A matrix hole never yields an empty chain.
func EvaluateApprovalChain(amount float64, thresholds []models.ApprovalThreshold) ([]models.ApprovalStep, error) {
	if amount < 0 {
		return nil, validationf("spend amount must not be negative")
	}

	ordered := make([]models.ApprovalThreshold, len(thresholds))
	copy(ordered, thresholds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinAmount < ordered[j].MinAmount
	})

	for _, tier := range ordered {
		if amount < tier.MinAmount {
			break
		}
		if tier.MaxAmount != nil && amount >= *tier.MaxAmount {
			continue
		}
		if len(tier.Steps) == 0 {
			return nil, configurationf("approval tier starting at %.2f has no approver steps", tier.MinAmount)
		}
		steps := make([]models.ApprovalStep, len(tier.Steps))
		copy(steps, tier.Steps)
		sort.SliceStable(steps, func(i, j int) bool {
			return steps[i].StepOrder < steps[j].StepOrder
		})
		return steps, nil
	}

	return nil, configurationf("no approval tier covers amount %.2f", amount)
}

// LoadThresholds returns the stored matrix with steps, ascending by min.
func (s *ApprovalMatrixService) LoadThresholds() ([]models.ApprovalThreshold, error) {
	return loadThresholds(s.db)
}

func loadThresholds(db *gorm.DB) ([]models.ApprovalThreshold, error) {
	var thresholds []models.ApprovalThreshold
	err := db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order ASC")
	}).Order("min_amount ASC").Find(&thresholds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load approval matrix: %w", err)
	}
	return thresholds, nil
}

// ThresholdInput is one band of a replacement matrix.
type ThresholdInput struct {
	MinAmount   float64  `json:"min_amount"`
	MaxAmount   *float64 `json:"max_amount"`
	Description string   `json:"description"`
	Roles       []string `json:"roles" binding:"required"`
}

// validateMatrix checks that the bands partition [0, inf) with no gaps or
// overlaps and that every band carries at least one role.
func validateMatrix(inputs []ThresholdInput) error {
	if len(inputs) == 0 {
		return validationf("approval matrix must have at least one tier")
	}

	ordered := make([]ThresholdInput, len(inputs))
	copy(ordered, inputs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinAmount < ordered[j].MinAmount
	})

	if ordered[0].MinAmount != 0 {
		return validationf("lowest tier must start at 0, got %.2f", ordered[0].MinAmount)
	}

	for i, tier := range ordered {
		if len(tier.Roles) == 0 {
			return validationf("tier starting at %.2f has no approver roles", tier.MinAmount)
		}
		last := i == len(ordered)-1
		if tier.MaxAmount == nil {
			if !last {
				return validationf("only the highest tier may be unbounded")
			}
			continue
		}
		if *tier.MaxAmount <= tier.MinAmount {
			return validationf("tier starting at %.2f has max below its min", tier.MinAmount)
		}
		if last {
			continue
		}
		if next := ordered[i+1].MinAmount; next != *tier.MaxAmount {
			return validationf("gap or overlap between %.2f and %.2f", *tier.MaxAmount, next)
		}
	}
	return nil
}

// Replace swaps the whole matrix in one atomic operation under the matrix
// lock: all existing tiers and steps are deleted and the provided set is
// recreated. Any failure leaves the previous matrix in place.
func (s *ApprovalMatrixService) Replace(actor Actor, inputs []ThresholdInput) ([]models.ApprovalThreshold, error) {
	if err := RequireCapability(actor, "replace", "approval_matrix"); err != nil {
		return nil, err
	}
	if err := validateMatrix(inputs); err != nil {
		return nil, err
	}

	err := withEntityTx(s.db, approvalMatrixLock, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ApprovalStep{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.ApprovalThreshold{}).Error; err != nil {
			return err
		}

		now := time.Now()
		for _, input := range inputs {
			threshold := models.ApprovalThreshold{
				MinAmount: input.MinAmount,
				MaxAmount: input.MaxAmount,
				CreateAt:  now,
				UpdateAt:  now,
			}
			if input.Description != "" {
				desc := input.Description
				threshold.Description = &desc
			}
			if err := tx.Create(&threshold).Error; err != nil {
				return err
			}
			for i, role := range input.Roles {
				step := models.ApprovalStep{
					ThresholdID: threshold.ThresholdID,
					StepOrder:   i + 1,
					RoleName:    role,
				}
				if err := tx.Create(&step).Error; err != nil {
					return err
				}
			}
		}

		details := fmt.Sprintf("tiers=%d", len(inputs))
		return appendAudit(tx, actor, models.AuditActionReplaceMatrix, "approval_matrix", 0, details)
	})
	if err != nil {
		return nil, err
	}

	return s.LoadThresholds()
}
