package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hrdesk/internal/platform/db"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorUser  string
}

// Service writes and reads the append-only audit trail. Writes go through
// the transaction bound to ctx when there is one.
type Service struct {
	DB db.Queryer
}

func New(q db.Queryer) *Service {
	return &Service{DB: q}
}

func (s *Service) Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error {
	beforeJSON, err := marshalState(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshalState(after)
	if err != nil {
		return err
	}

	_, err = db.QueryerFromContext(ctx, s.DB).Exec(ctx, `
    INSERT INTO audit_events (tenant_id, actor_user_id, action, entity_type, entity_id, before_json, after_json, request_id, ip)
    VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9)
  `, tenantID, actorID, action, entityType, entityID, beforeJSON, afterJSON, requestID, ip)
	return err
}

func marshalState(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (s *Service) Count(ctx context.Context, tenantID string, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	selectCols := "id::text, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, request_id, ip, created_at"
	if includeDetails {
		selectCols += ", before_json, after_json"
	}
	query, args := buildBaseQuery("SELECT "+selectCols, tenantID, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		dest := []any{&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt}
		if includeDetails {
			dest = append(dest, &evt.Before, &evt.After)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix, tenantID string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		query += fmt.Sprintf(" AND entity_id = $%d", len(args)+1)
		args = append(args, filter.EntityID)
	}
	if filter.ActorUser != "" {
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorUser)
	}
	return query, args
}
