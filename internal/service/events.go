package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/pkg/logger"
)

// 外发事件类型
const (
	EventAssignmentCommitted = "assignment.committed"
	EventAssignmentRevoked   = "assignment.revoked"
)

// assignmentEvent 分配变更事件负载
type assignmentEvent struct {
	AssignmentID   string    `json:"assignment_id"`
	OrganizationID string    `json:"organization_id"`
	EmployeeID     string    `json:"employee_id"`
	ShiftTypeID    string    `json:"shift_type_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	NegativeFlag   bool      `json:"negative_flag"`
	OperatorID     string    `json:"operator_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// newAssignmentEvent 构造与业务写入同事务落库的 outbox 记录
func newAssignmentEvent(ctx context.Context, topic, eventType string, a *model.Assignment, caller Caller) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(assignmentEvent{
		AssignmentID:   a.AssignmentID,
		OrganizationID: caller.OrganizationID,
		EmployeeID:     a.EmployeeID,
		ShiftTypeID:    a.ShiftTypeID,
		Start:          a.Start,
		End:            a.End,
		NegativeFlag:   a.NegativeFlag,
		OperatorID:     caller.EmployeeID,
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return &model.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     logger.RequestIDFrom(ctx),
		AggregateType: "assignment",
		AggregateID:   a.AssignmentID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       payload,
		Status:        model.OutboxStatusPending,
	}, nil
}
