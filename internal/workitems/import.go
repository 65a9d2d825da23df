package workitems

import (
	"context"
	"fmt"

	"aura/internal/analysis"
)

// ImportSummary lists the ids created by ImportAnalysis.
type ImportSummary struct {
	BusinessBriefID string   `json:"businessBriefId,omitempty"`
	InitiativeIDs   []string `json:"initiativeIds"`
}

// ImportAnalysis stores an analysis result's business brief and initiatives
// in one transaction. Analysis ids are display labels, so fresh ids are
// generated; initiatives link to the imported brief when one exists.
func (s *Store) ImportAnalysis(ctx context.Context, result analysis.Result) (ImportSummary, error) {
	summary := ImportSummary{InitiativeIDs: []string{}}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if brief := result.BusinessBrief; brief != nil {
		id, err := insertBusinessBrief(ctx, tx, BusinessBrief{
			Title:                brief.Title,
			Description:          brief.Description,
			BusinessObjective:    brief.BusinessObjective,
			QuantifiableOutcomes: brief.QuantifiableBusinessOutcomes,
		})
		if err != nil {
			return ImportSummary{}, err
		}
		summary.BusinessBriefID = id
	}

	for _, item := range result.Initiatives {
		id, err := insertInitiative(ctx, tx, Initiative{
			BusinessBriefID:    summary.BusinessBriefID,
			Title:              item.Title,
			Description:        item.Description,
			Category:           item.Category,
			Priority:           item.Priority,
			BusinessValue:      item.BusinessValue,
			AcceptanceCriteria: item.AcceptanceCriteria,
			EstimatedEffort:    item.EstimatedEffort,
			StrategicAlignment: item.StrategicAlignment,
		})
		if err != nil {
			return ImportSummary{}, err
		}
		summary.InitiativeIDs = append(summary.InitiativeIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return ImportSummary{}, fmt.Errorf("commit import: %w", err)
	}
	return summary, nil
}
