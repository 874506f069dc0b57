/*
Package classify implements the classification engine: it turns a note's
content, its nearest neighbors, and the workspace folder summary into a
scored destination, applies the decision as a reversible filesystem move,
and records the outcome in the metadata store and vector index.
*/
package classify

// Status is the terminal outcome of one classification attempt.
type Status string

const (
	// StatusSorted means the note was moved and bookkeeping recorded.
	StatusSorted Status = "sorted"

	// StatusDryRun means the destination was computed but nothing moved.
	StatusDryRun Status = "dry-run"

	// StatusTooShort means the content carried no classification signal.
	StatusTooShort Status = "too-short"

	// StatusReadError means the note file could not be read.
	StatusReadError Status = "read-error"

	// StatusNoSuggestion means no strategy produced a destination.
	StatusNoSuggestion Status = "no-suggestion"

	// StatusBelowThreshold means the suggestion confidence was below the
	// configured threshold and no override applied.
	StatusBelowThreshold Status = "below-threshold"

	// StatusCancelled means the user declined the move.
	StatusCancelled Status = "cancelled"

	// StatusMoveFailed means the filesystem move itself failed.
	StatusMoveFailed Status = "move-failed"

	// StatusFailed covers other per-note failures (embedding, lookup).
	StatusFailed Status = "failed"
)

// SortSuggestion is one proposed destination for a note.
type SortSuggestion struct {
	// Folder is the destination folder relative to the workspace root.
	// Empty means no suggestion.
	Folder string

	// Confidence is in [0,1].
	Confidence float64

	// Rationale is the natural-language justification.
	Rationale string
}

// NeighborMatch is one nearest-neighbor result fed into classification.
type NeighborMatch struct {
	Path       string
	Folder     string
	Similarity float64
}

// Outcome reports one classification attempt.
type Outcome struct {
	// Path is the source file that was classified.
	Path string

	// Status is the terminal state of the attempt.
	Status Status

	// Suggestion is the applied (or rejected) suggestion, if any.
	Suggestion SortSuggestion

	// Strategy names the suggestion strategy that produced Suggestion.
	Strategy string

	// Destination is the final (or would-be, for dry runs) file path.
	Destination string

	// Err carries the failure detail for error statuses.
	Err error
}

// Options control one classification run.
type Options struct {
	// Interactive requires explicit confirmation before any move.
	Interactive bool

	// DryRun computes and reports the destination without moving anything
	// and without writing history.
	DryRun bool

	// Force moves below-threshold suggestions in automatic mode.
	Force bool
}

// Confirmer obtains an explicit proceed/cancel decision in interactive mode.
type Confirmer func(path string, suggestion SortSuggestion) (bool, error)

// Tally summarizes a batch run over the inbox.
type Tally struct {
	Sorted  int
	Skipped int
	Failed  int
}

// record folds one outcome into the tally. Skipped covers too-short and
// user-cancelled notes; every other non-success outcome counts as failed.
func (t *Tally) record(o Outcome) {
	switch o.Status {
	case StatusSorted, StatusDryRun:
		t.Sorted++
	case StatusTooShort, StatusCancelled:
		t.Skipped++
	default:
		t.Failed++
	}
}
