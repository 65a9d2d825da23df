package workitems

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aura/internal/services"
)

// InitiativeFilter narrows ListInitiatives. Empty fields are ignored.
type InitiativeFilter struct {
	BusinessBriefID string
	Status          string
}

// Initiative is the insert shape for an initiative row.
type Initiative struct {
	ID                 string
	BusinessBriefID    string
	Title              string
	Description        string
	Category           string
	Priority           string
	Status             string
	BusinessValue      string
	AcceptanceCriteria []string
	EstimatedEffort    string
	StrategicAlignment string
}

// BusinessBrief is the insert shape for a business brief row.
type BusinessBrief struct {
	ID                   string
	Title                string
	Description          string
	BusinessObjective    string
	QuantifiableOutcomes []string
	Status               string
}

// initiativeFilterColumns is the allow-list of filterable columns, in clause order.
var initiativeFilterColumns = []string{"business_brief_id", "status"}

// BuildInitiativesQuery composes the list query and its parameters.
func BuildInitiativesQuery(filter InitiativeFilter) (string, []any) {
	values := map[string]string{
		"business_brief_id": strings.TrimSpace(filter.BusinessBriefID),
		"status":            strings.TrimSpace(filter.Status),
	}
	query := "SELECT * FROM initiatives"
	var conditions []string
	var params []any
	for _, column := range initiativeFilterColumns {
		if value := values[column]; value != "" {
			conditions = append(conditions, column+" = ?")
			params = append(params, value)
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	return query, params
}

// ListInitiatives returns initiatives newest first.
func (s *Store) ListInitiatives(ctx context.Context, filter InitiativeFilter) ([]Row, error) {
	query, params := BuildInitiativesQuery(filter)
	rows, err := s.Execute(ctx, query, params...)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "workitems", "list initiatives", "", err)
	}
	return rows, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateInitiative inserts item and returns its id. A blank id is generated.
func (s *Store) CreateInitiative(ctx context.Context, item Initiative) (string, error) {
	return insertInitiative(ctx, s.db, item)
}

// CreateBusinessBrief inserts brief and returns its id. A blank id is generated.
func (s *Store) CreateBusinessBrief(ctx context.Context, brief BusinessBrief) (string, error) {
	return insertBusinessBrief(ctx, s.db, brief)
}

func insertInitiative(ctx context.Context, db execer, item Initiative) (string, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return "", services.Wrap(services.ErrValidation, "workitems", "create initiative", "title is required", nil)
	}
	if strings.TrimSpace(item.ID) == "" {
		item.ID = "INIT-" + uuid.NewString()
	}
	if item.Priority == "" {
		item.Priority = "medium"
	}
	if item.Status == "" {
		item.Status = "draft"
	}
	criteria, err := json.Marshal(nonNil(item.AcceptanceCriteria))
	if err != nil {
		return "", fmt.Errorf("encode acceptance criteria: %w", err)
	}
	now := timestamp()
	var briefID any
	if id := strings.TrimSpace(item.BusinessBriefID); id != "" {
		briefID = id
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO initiatives (
            id, business_brief_id, title, description, category, priority, status,
            business_value, acceptance_criteria, estimated_effort, strategic_alignment,
            workflow_level, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'initiative', ?, ?)`,
		item.ID, briefID, item.Title, item.Description, item.Category, item.Priority, item.Status,
		item.BusinessValue, string(criteria), item.EstimatedEffort, item.StrategicAlignment,
		now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert initiative: %w", err)
	}
	return item.ID, nil
}

func insertBusinessBrief(ctx context.Context, db execer, brief BusinessBrief) (string, error) {
	brief.Title = strings.TrimSpace(brief.Title)
	if brief.Title == "" {
		return "", services.Wrap(services.ErrValidation, "workitems", "create business brief", "title is required", nil)
	}
	if strings.TrimSpace(brief.ID) == "" {
		brief.ID = "BB-" + uuid.NewString()
	}
	if brief.Status == "" {
		brief.Status = "draft"
	}
	outcomes, err := json.Marshal(nonNil(brief.QuantifiableOutcomes))
	if err != nil {
		return "", fmt.Errorf("encode outcomes: %w", err)
	}
	now := timestamp()
	_, err = db.ExecContext(ctx,
		`INSERT INTO business_briefs (
            id, title, description, business_objective, quantifiable_outcomes, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		brief.ID, brief.Title, brief.Description, brief.BusinessObjective, string(outcomes), brief.Status, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert business brief: %w", err)
	}
	return brief.ID, nil
}

// timestamp returns a sortable UTC timestamp. Nanosecond precision keeps
// inserts within the same second ordered.
func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
