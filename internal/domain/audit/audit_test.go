package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", "t1", Filter{Action: "compensation.set", EntityID: "e1"})
	if !strings.HasSuffix(query, "WHERE tenant_id = $1 AND action = $2 AND entity_id = $3") {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 3 || args[0] != "t1" || args[1] != "compensation.set" || args[2] != "e1" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs("t1", "u1", "compensation.set", "compensation_template", "e1", pgxmock.AnyArg(), []byte(`{"wage":"100"}`), "req-1", "10.0.0.1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = New(mock).Record(context.Background(), "t1", "u1", "compensation.set", "compensation_template", "e1", "req-1", "10.0.0.1", nil, map[string]string{"wage": "100"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCountAndList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	filter := Filter{Action: "compensation.set", EntityType: "compensation_template", EntityID: "e1"}
	mock.ExpectQuery("SELECT COUNT\\(1\\) FROM audit_events").
		WithArgs("t1", "compensation.set", "compensation_template", "e1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	now := time.Now().UTC()
	mock.ExpectQuery("ORDER BY created_at DESC, id DESC LIMIT \\$5 OFFSET \\$6").
		WithArgs("t1", "compensation.set", "compensation_template", "e1", 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "actor", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}).
			AddRow("a2", "u1", "compensation.set", "compensation_template", "e1", "req-2", "", now).
			AddRow("a1", "", "compensation.set", "compensation_template", "e1", "req-1", "", now.Add(-time.Minute)))

	svc := New(mock)
	total, err := svc.Count(context.Background(), "t1", filter)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2, got %d", total)
	}

	events, err := svc.List(context.Background(), "t1", filter, false, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 || events[0].ID != "a2" || events[1].ActorID != "" {
		t.Fatalf("unexpected events %+v", events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
