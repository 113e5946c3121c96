package planner

import (
	"sort"
	"strings"
)

// checkpointTopN is how many of the most-expensive tasks get flagged as
// checkpoints when the plan nears budget (§4.4 phase 5).
const checkpointTopN = 3

// budgetNearExhaustionFraction is the fraction of max tokens past which the
// top-N most expensive tasks are additionally marked as checkpoints.
const budgetNearExhaustionFraction = 0.8

// estimateAndCheckpoint implements §4.4 phase 5: per-task token/time
// estimation, approval-requirement marking, near-budget checkpoint
// selection, and final clamp scaling.
func estimateAndCheckpoint(tasks []WorkflowTask, maxTokens int, maxTimeS float64) (totalTokens int, totalTimeS float64, checkpoints []string) {
	for i := range tasks {
		t := &tasks[i]
		assignment := assignmentTable[t.Type]
		words := len(strings.Fields(t.Description))
		t.EstimatedTokens = int(float64(assignment.BaseTokens) * (1 + float64(words)/10.0))
		t.EstimatedTimeS = float64(t.EstimatedTokens) / 100.0
		t.RequiresApproval = t.EstimatedTokens > 5000 || t.Type == TaskReasoning
	}

	totalTokens, totalTimeS = sumEstimates(tasks)

	if maxTokens > 0 && float64(totalTokens) > budgetNearExhaustionFraction*float64(maxTokens) {
		checkpoints = topExpensive(tasks, checkpointTopN)
		for i := range tasks {
			for _, id := range checkpoints {
				if tasks[i].ID == id {
					tasks[i].Checkpoint = true
				}
			}
		}
	}

	clamp(tasks, maxTokens, maxTimeS)
	totalTokens, totalTimeS = sumEstimates(tasks)

	assignTimeouts(tasks)

	return totalTokens, totalTimeS, checkpoints
}

// timeoutSlackFactor multiplies a task's estimated time to get its
// enforced ceiling (§4.5 Cancellation & timeouts: "a per-task
// max-execution-time may be provided"). Generous slack keeps normal
// variance from tripping the timeout while still bounding runaway tasks.
const timeoutSlackFactor = 3.0

func assignTimeouts(tasks []WorkflowTask) {
	for i := range tasks {
		if tasks[i].EstimatedTimeS > 0 {
			tasks[i].MaxExecutionTimeS = tasks[i].EstimatedTimeS * timeoutSlackFactor
		}
	}
}

func sumEstimates(tasks []WorkflowTask) (int, float64) {
	var tokens int
	var timeS float64
	for _, t := range tasks {
		tokens += t.EstimatedTokens
		timeS += t.EstimatedTimeS
	}
	return tokens, timeS
}

func topExpensive(tasks []WorkflowTask, n int) []string {
	ordered := make([]WorkflowTask, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].EstimatedTokens > ordered[j].EstimatedTokens })

	if n > len(ordered) {
		n = len(ordered)
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = ordered[i].ID
	}
	return ids
}

// clamp scales every task's estimate down by
// min(1, 2*maxTokens/total_tokens, 2*maxTimeS/total_time) to prevent
// resource-exhaustion plans (§4.4 phase 5, final step).
func clamp(tasks []WorkflowTask, maxTokens int, maxTimeS float64) {
	totalTokens, totalTimeS := sumEstimates(tasks)
	if totalTokens == 0 && totalTimeS == 0 {
		return
	}

	factor := 1.0
	if maxTokens > 0 && totalTokens > 0 {
		if tokenFactor := 2 * float64(maxTokens) / float64(totalTokens); tokenFactor < factor {
			factor = tokenFactor
		}
	}
	if maxTimeS > 0 && totalTimeS > 0 {
		if timeFactor := 2 * maxTimeS / totalTimeS; timeFactor < factor {
			factor = timeFactor
		}
	}
	if factor >= 1 {
		return
	}

	for i := range tasks {
		tasks[i].EstimatedTokens = int(float64(tasks[i].EstimatedTokens) * factor)
		tasks[i].EstimatedTimeS = tasks[i].EstimatedTimeS * factor
	}
}
