package budget

import (
	"fmt"

	"github.com/google/uuid"
)

// ApprovalCheckpoint is produced when a plan remains non-compliant after
// optimization (§4.3 Approval checkpoint). CheckpointID is unpredictable —
// not a pure function of the plan id — via a uuid entropy component, so
// it can't be forged by recomputing the plan id (§4.3: "MUST be
// unpredictable").
type ApprovalCheckpoint struct {
	CheckpointID string
	PlanID       string
	Type         string
	Reason       string
	Estimate     Estimate
	Status       string
	ApprovalURL  string
}

// NewApprovalCheckpoint mints a checkpoint for a still-non-compliant plan.
func NewApprovalCheckpoint(planID string, est Estimate, reason string) ApprovalCheckpoint {
	id := fmt.Sprintf("chk:%s:%s", planID, uuid.New().String())
	return ApprovalCheckpoint{
		CheckpointID: id,
		PlanID:       planID,
		Type:         "budget_approval",
		Reason:       reason,
		Estimate:     est,
		Status:       "pending",
		ApprovalURL:  fmt.Sprintf("/workflow/approve?checkpoint=%s", id),
	}
}
