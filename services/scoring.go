package services

import (
	"errors"
	"fmt"
	"time"

	"procurement-management-api/config"
	"procurement-management-api/models"

	"gorm.io/gorm"
)

// ScoringService aggregates committee evaluations and decides award
// readiness.
type ScoringService struct {
	db *gorm.DB
}

func NewScoringService(db *gorm.DB) *ScoringService {
	return &ScoringService{db: db}
}

// Readiness rules. Whichever fires first is recorded with the award.
const (
	ReadinessAllSubmitted    = "all_submitted"
	ReadinessDeadlineElapsed = "deadline_elapsed"
)

// AwardReadiness is the aggregator's verdict for one requisition.
type AwardReadiness struct {
	Ready          bool   `json:"ready"`
	Rule           string `json:"rule,omitempty"`
	Reason         string `json:"reason,omitempty"`
	TotalMembers   int    `json:"total_members"`
	SubmittedCount int    `json:"submitted_count"`
}

// evaluateReadiness is the pure policy: ready when every assigned member has
// submitted, or when the scoring deadline has elapsed. With requireAll set,
// a lapsed deadline without full submission still blocks.
func evaluateReadiness(members []models.CommitteeMember, deadline *time.Time, now time.Time, requireAll bool) AwardReadiness {
	readiness := AwardReadiness{TotalMembers: len(members)}
	if len(members) == 0 {
		readiness.Reason = "no committee assigned"
		return readiness
	}

	for _, member := range members {
		if member.ScoresSubmitted {
			readiness.SubmittedCount++
		}
	}

	if readiness.SubmittedCount == len(members) {
		readiness.Ready = true
		readiness.Rule = ReadinessAllSubmitted
		return readiness
	}

	if deadline != nil && now.After(*deadline) {
		if requireAll {
			readiness.Reason = fmt.Sprintf("scoring deadline passed with %d of %d members submitted and full submission is required",
				readiness.SubmittedCount, len(members))
			return readiness
		}
		readiness.Ready = true
		readiness.Rule = ReadinessDeadlineElapsed
		return readiness
	}

	readiness.Reason = fmt.Sprintf("%d of %d members have submitted scores",
		readiness.SubmittedCount, len(members))
	return readiness
}

func awardReadinessTx(tx *gorm.DB, req *models.Requisition) (AwardReadiness, error) {
	var members []models.CommitteeMember
	if err := tx.Where("requisition_id = ?", req.RequisitionID).Find(&members).Error; err != nil {
		return AwardReadiness{}, err
	}
	requireAll := config.GetSettings().RequireAllScores
	return evaluateReadiness(members, req.ScoringDeadline, time.Now(), requireAll), nil
}

// AwardReadiness reports whether the requisition may proceed to award
// selection. Selection itself stays a separate, explicit operation.
func (s *ScoringService) AwardReadiness(reqID int) (*AwardReadiness, error) {
	var readiness AwardReadiness
	err := s.db.Transaction(func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		readiness, err = awardReadinessTx(tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &readiness, nil
}

// ScoreInput is one member's evaluation of one quotation.
type ScoreInput struct {
	QuotationID    int     `json:"quotation_id" binding:"required"`
	TechnicalScore float64 `json:"technical_score"`
	FinancialScore float64 `json:"financial_score"`
	Comment        string  `json:"comment"`
}

// SubmitScores records the acting member's scores for every quotation under
// the requisition. Submission is idempotent per member: a resubmission
// overwrites the earlier rows instead of duplicating them, and flips the
// member's scores_submitted flag either way.
func (s *ScoringService) SubmitScores(actor Actor, reqID int, scores []ScoreInput) error {
	if len(scores) == 0 {
		return validationf("score submission must cover at least one quotation")
	}
	for _, score := range scores {
		if score.TechnicalScore < 0 || score.TechnicalScore > 100 ||
			score.FinancialScore < 0 || score.FinancialScore > 100 {
			return validationf("scores must be between 0 and 100")
		}
	}

	return withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusRFQInProgress {
			return preconditionf("requisition %s is not in its scoring phase", req.RequisitionNumber)
		}

		var member models.CommitteeMember
		if err := tx.Where("requisition_id = ? AND user_id = ?", reqID, actor.UserID).
			First(&member).Error; err != nil {
			return authorizationf("user is not an assigned committee member for this requisition")
		}

		if req.ScoringDeadline != nil && time.Now().After(*req.ScoringDeadline) {
			return preconditionf("the scoring deadline for %s has passed", req.RequisitionNumber)
		}

		scorable := make(map[int]bool)
		var quotations []models.Quotation
		if err := tx.Where("requisition_id = ? AND status = ?", reqID, models.QuotationSubmitted).
			Find(&quotations).Error; err != nil {
			return err
		}
		for _, quotation := range quotations {
			scorable[quotation.QuotationID] = true
		}
		if len(scorable) == 0 {
			return preconditionf("requisition %s has no open quotations to score", req.RequisitionNumber)
		}
		if len(scores) != len(scorable) {
			return validationf("scores must cover all %d open quotations", len(scorable))
		}

		now := time.Now()
		for _, score := range scores {
			if !scorable[score.QuotationID] {
				return validationf("quotation %d does not belong to this requisition or is closed", score.QuotationID)
			}
			row := models.CommitteeScore{
				QuotationID:    score.QuotationID,
				MemberID:       actor.UserID,
				TechnicalScore: score.TechnicalScore,
				FinancialScore: score.FinancialScore,
				ScoredAt:       now,
			}
			if score.Comment != "" {
				comment := score.Comment
				row.Comment = &comment
			}

			var existing models.CommitteeScore
			err := tx.Where("quotation_id = ? AND member_id = ?", score.QuotationID, actor.UserID).
				First(&existing).Error
			switch {
			case err == nil:
				row.ScoreID = existing.ScoreID
				if err := tx.Model(&models.CommitteeScore{}).
					Where("score_id = ?", existing.ScoreID).
					Updates(map[string]interface{}{
						"technical_score": row.TechnicalScore,
						"financial_score": row.FinancialScore,
						"comment":         row.Comment,
						"scored_at":       now,
					}).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		if err := tx.Model(&models.CommitteeMember{}).
			Where("id = ?", member.ID).
			Update("scores_submitted", true).Error; err != nil {
			return err
		}

		details := fmt.Sprintf("member=%d quotations=%d", actor.UserID, len(scores))
		return appendAudit(tx, actor, models.AuditActionScore, "requisition", reqID, details)
	})
}

// Summary aggregates scores per quotation for the evaluation report.
type QuotationScoreSummary struct {
	QuotationID  int     `json:"quotation_id"`
	VendorID     int     `json:"vendor_id"`
	TotalAmount  float64 `json:"total_amount"`
	ScoreCount   int     `json:"score_count"`
	AvgTechnical float64 `json:"avg_technical"`
	AvgFinancial float64 `json:"avg_financial"`
	AvgCombined  float64 `json:"avg_combined"`
}

// Summarize returns per-quotation score averages, best combined first.
func (s *ScoringService) Summarize(reqID int) ([]QuotationScoreSummary, error) {
	var quotations []models.Quotation
	if err := s.db.Preload("Scores").
		Where("requisition_id = ?", reqID).
		Find(&quotations).Error; err != nil {
		return nil, err
	}

	summaries := make([]QuotationScoreSummary, 0, len(quotations))
	for _, quotation := range quotations {
		summary := QuotationScoreSummary{
			QuotationID: quotation.QuotationID,
			VendorID:    quotation.VendorID,
			TotalAmount: quotation.TotalAmount,
			ScoreCount:  len(quotation.Scores),
		}
		for _, score := range quotation.Scores {
			summary.AvgTechnical += score.TechnicalScore
			summary.AvgFinancial += score.FinancialScore
		}
		if summary.ScoreCount > 0 {
			n := float64(summary.ScoreCount)
			summary.AvgTechnical /= n
			summary.AvgFinancial /= n
			summary.AvgCombined = (summary.AvgTechnical + summary.AvgFinancial) / 2
		}
		summaries = append(summaries, summary)
	}

	for i := 0; i < len(summaries); i++ {
		for j := i + 1; j < len(summaries); j++ {
			if summaries[j].AvgCombined > summaries[i].AvgCombined {
				summaries[i], summaries[j] = summaries[j], summaries[i]
			}
		}
	}
	return summaries, nil
}
