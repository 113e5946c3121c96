package graphbuilder

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/workgraph/engine/internal/graphstore"
	"github.com/workgraph/engine/internal/idgen"
	"github.com/workgraph/engine/internal/value"
)

// Step is a Kind=Step node extracted from a chunk.
type Step struct {
	ID          string
	ChunkID     string
	StepNumber  int
	Description string
}

var numberedListRe = regexp.MustCompile(`(?m)^\s*(\d+)[.):]\s+(.+)$`)
var stepNRe = regexp.MustCompile(`(?i)step\s+(\d+)\s*:\s*(.+)`)

// sequentialAdverbs is the ordered adverb family used when no numbered
// list is present in a chunk; it takes precedence over the "step N:" form
// (§4.2 Step extraction).
var sequentialAdverbs = []string{
	"first", "second", "third", "fourth", "fifth",
	"sixth", "seventh", "eighth", "ninth", "finally",
}

var sequentialAdverbRe = regexp.MustCompile(
	`(?i)\b(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|finally)\b[,:]?\s+(.+)`,
)

// ExtractSteps applies the three ordered patterns per chunk — numbered
// list, sequential adverbs, "step N:" — and falls back to synthesizing up
// to 5 steps from the first 5 chunks when nothing matches across the
// whole batch (§4.2).
func ExtractSteps(chunks []Chunk) []Step {
	var steps []Step
	counter := 0

	for _, c := range chunks {
		if matches := numberedListRe.FindAllStringSubmatch(c.Content, -1); matches != nil {
			for _, m := range matches {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					counter++
					n = counter
				}
				steps = append(steps, newStep(c.ID, n, m[2]))
			}
			continue
		}

		// "step N:" is the last pattern: a chunk with a sequential adverb
		// falls through to the adverb branch below.
		if m := stepNRe.FindStringSubmatch(c.Content); m != nil && !sequentialAdverbRe.MatchString(c.Content) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				counter++
				n = counter
			}
			steps = append(steps, newStep(c.ID, n, m[2]))
			continue
		}

		if m := sequentialAdverbRe.FindStringSubmatch(c.Content); m != nil {
			counter++
			n := adverbIndex(m[1])
			if n == 0 {
				n = counter
			}
			steps = append(steps, newStep(c.ID, n, m[2]))
			continue
		}
	}

	if len(steps) == 0 {
		steps = synthesizeSteps(chunks)
	}

	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })
	return steps
}

func adverbIndex(word string) int {
	lower := strings.ToLower(word)
	for i, adverb := range sequentialAdverbs {
		if adverb == lower {
			if adverb == "finally" {
				return 0 // let the rolling counter decide position
			}
			return i + 1
		}
	}
	return 0
}

func newStep(chunkID string, n int, description string) Step {
	description = strings.TrimSpace(description)
	return Step{
		ID:          stepID(chunkID, n),
		ChunkID:     chunkID,
		StepNumber:  n,
		Description: description,
	}
}

func stepID(chunkID string, n int) string {
	return fmt.Sprintf("step:%s", idgen.Prefix(fmt.Sprintf("%s:%d", chunkID, n), 16))
}

// synthesizeSteps builds up to 5 steps from the first 5 chunks using a
// content prefix, when no extraction pattern matched anywhere (§4.2).
func synthesizeSteps(chunks []Chunk) []Step {
	limit := 5
	if len(chunks) < limit {
		limit = len(chunks)
	}
	steps := make([]Step, 0, limit)
	for i := 0; i < limit; i++ {
		c := chunks[i]
		prefix := c.Content
		if len(prefix) > 80 {
			prefix = prefix[:80]
		}
		steps = append(steps, newStep(c.ID, i+1, prefix))
	}
	return steps
}

// StepNode builds the graphstore Node for a Step.
func StepNode(s Step) (string, graphstore.Kind, value.Props) {
	return s.ID, graphstore.KindStep, value.Props{
		"chunk_id":    value.String(s.ChunkID),
		"step_number": value.Number(float64(s.StepNumber)),
		"description": value.String(s.Description),
	}
}
