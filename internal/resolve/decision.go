package resolve

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/openlitdb/litbridge/internal/model"
)

// InteractiveDecider puts every question to a human on the terminal. This is
// the default policy; a batch run pauses until each answer is typed.
type InteractiveDecider struct {
	In  io.Reader
	Out io.Writer

	// One reader across questions: a fresh reader per line would discard
	// whatever input it buffered past the first newline.
	r *bufio.Reader
}

// NewInteractiveDecider reads from stdin and writes prompts to stderr, so
// piped stdout stays clean.
func NewInteractiveDecider() *InteractiveDecider {
	return &InteractiveDecider{In: os.Stdin, Out: os.Stderr}
}

// Confirm shows the candidate and reads a y/n answer.
func (d *InteractiveDecider) Confirm(ctx context.Context, q Question) (bool, error) {
	fmt.Fprintf(d.Out, "\n%s %q", q.Class, q.Mention)
	if q.Context != "" {
		fmt.Fprintf(d.Out, " (%s)", q.Context)
	}
	fmt.Fprintf(d.Out, "\n  candidate %s: %s", q.Candidate.ID, q.Candidate.Label)
	if q.Candidate.Description != "" {
		fmt.Fprintf(d.Out, " [%s]", q.Candidate.Description)
	}
	fmt.Fprint(d.Out, "\n  accept? [y/N] ")
	line, err := d.readLine()
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Provide asks for a free-text identifier. An empty line means no override.
func (d *InteractiveDecider) Provide(ctx context.Context, q Question) (string, error) {
	if q.Namespace != "" {
		fmt.Fprintf(d.Out, "\n%s %q: enter %s value (empty to skip): ", q.Class, q.Mention, q.Namespace)
	} else {
		fmt.Fprintf(d.Out, "\n%s %q: enter identifier (Q...; semicolon list for compounds, empty to skip): ", q.Class, q.Mention)
	}
	line, err := d.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (d *InteractiveDecider) readLine() (string, error) {
	if d.r == nil {
		d.r = bufio.NewReader(d.In)
	}
	line, err := d.r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return line, nil
}

// AutoAcceptDecider accepts a candidate when its label is similar enough to
// the mention. Meant for unattended runs over well-curated classes; it never
// provides manual overrides.
type AutoAcceptDecider struct {
	Threshold float64
}

// Confirm accepts when token similarity meets the threshold.
func (d *AutoAcceptDecider) Confirm(ctx context.Context, q Question) (bool, error) {
	return Similarity(q.Mention, q.Candidate.Label) >= d.Threshold, nil
}

// Provide never overrides.
func (d *AutoAcceptDecider) Provide(ctx context.Context, q Question) (string, error) {
	return "", nil
}

// Similarity is the Jaccard overlap of lowercased word tokens, 0 to 1.
// Punctuation is stripped so "Univ. of X" and "University of X" still share
// most tokens.
func Similarity(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inA := make(map[string]bool, len(ta))
	for _, t := range ta {
		inA[t] = true
	}
	union := make(map[string]bool, len(ta)+len(tb))
	for _, t := range ta {
		union[t] = true
	}
	shared := 0
	seen := make(map[string]bool, len(tb))
	for _, t := range tb {
		union[t] = true
		if inA[t] && !seen[t] {
			shared++
			seen[t] = true
		}
	}
	return float64(shared) / float64(len(union))
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// PendingQuestion is one parked resolution question in the queue file.
type PendingQuestion struct {
	Class     string    `json:"class"`
	Mention   string    `json:"mention"`
	Context   string    `json:"context,omitempty"`
	Namespace string    `json:"namespace,omitempty"`
	Asked     time.Time `json:"asked"`
}

// QueuedDecider never answers: it records each question in a JSON queue file
// for later curation and defers the record. Useful for a first unattended
// pass that surfaces every unresolved mention at once.
type QueuedDecider struct {
	Path string
}

// Confirm parks the question and defers.
func (d *QueuedDecider) Confirm(ctx context.Context, q Question) (bool, error) {
	if err := d.enqueue(q); err != nil {
		return false, err
	}
	return false, model.ErrDeferred
}

// Provide parks the question and defers.
func (d *QueuedDecider) Provide(ctx context.Context, q Question) (string, error) {
	if err := d.enqueue(q); err != nil {
		return "", err
	}
	return "", model.ErrDeferred
}

// enqueue appends the question, deduplicating by class and mention, and
// rewrites the queue file sorted for stable diffs.
func (d *QueuedDecider) enqueue(q Question) error {
	var queue []PendingQuestion
	data, err := os.ReadFile(d.Path)
	if err == nil {
		if err := json.Unmarshal(data, &queue); err != nil {
			return fmt.Errorf("parse queue file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read queue file: %w", err)
	}
	for _, p := range queue {
		if p.Class == string(q.Class) && p.Mention == q.Mention && p.Namespace == q.Namespace {
			return nil
		}
	}
	queue = append(queue, PendingQuestion{
		Class:     string(q.Class),
		Mention:   q.Mention,
		Context:   q.Context,
		Namespace: q.Namespace,
		Asked:     time.Now().UTC(),
	})
	sort.Slice(queue, func(i, j int) bool {
		if queue[i].Class != queue[j].Class {
			return queue[i].Class < queue[j].Class
		}
		return queue[i].Mention < queue[j].Mention
	})
	out, err := json.MarshalIndent(queue, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.Path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("write queue file: %w", err)
	}
	return nil
}
