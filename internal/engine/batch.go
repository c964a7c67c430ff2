package engine

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/punchclock/internal/correction"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
)

// Batch is one document's records travelling through the correction gate.
// Batches are values: Apply returns a new batch and leaves the old one intact.
type Batch struct {
	CreatedAt time.Time
	Pending   correction.PendingCorrections
	ID        string
	Document  string
	Source    model.SourceKind
	Policy    correction.ReleasePolicy
	Records   []model.AttendanceRecord
	Stats     normalize.Stats
}

// Outstanding returns the review requests still waiting on a decision.
func (b *Batch) Outstanding() []model.ReviewRequest {
	return b.Pending.Outstanding()
}

// Counts tallies records by classification state.
func (b *Batch) Counts() map[model.ClassificationState]int {
	counts := make(map[model.ClassificationState]int)
	for _, rec := range b.Records {
		counts[rec.State]++
	}
	return counts
}

// Remainder returns the batch cut down to the records still awaiting a decision,
// or nil when nothing is outstanding. Under the per-record policy the rest of the
// batch has already been paid, so only the remainder may be suspended again.
func (b *Batch) Remainder() *Batch {
	ids := b.Pending.OutstandingIDs()
	if len(ids) == 0 {
		return nil
	}
	held := make([]model.AttendanceRecord, 0, len(ids))
	for _, rec := range b.Records {
		if slices.Contains(ids, rec.ID) {
			held = append(held, rec.Clone())
		}
	}
	next := *b
	next.Records = held
	next.Pending = correction.NewPending(held)
	return &next
}

// Snapshot captures the batch for storage. Under the batch policy accepted decisions
// are dropped, so a resumed batch never releases half of its corrections.
func (b *Batch) Snapshot(now time.Time) (*model.BatchSnapshot, error) {
	records := b.Records
	if b.Policy == correction.ReleasePerRecord {
		res, err := correction.Merge(b.Records, b.Pending, correction.ReleasePerRecord)
		if err != nil {
			return nil, err
		}
		records = joinResult(res)
	}

	cloned := make([]model.AttendanceRecord, len(records))
	for i, rec := range records {
		cloned[i] = rec.Clone()
	}
	return &model.BatchSnapshot{
		ID:        b.ID,
		Document:  b.Document,
		Source:    b.Source,
		Policy:    string(b.Policy),
		CreatedAt: b.CreatedAt,
		UpdatedAt: now,
		Records:   cloned,
	}, nil
}

// FromSnapshot rebuilds a batch from storage with fresh review requests.
func FromSnapshot(s *model.BatchSnapshot) (*Batch, error) {
	policy, err := correction.ParseReleasePolicy(s.Policy)
	if err != nil {
		return nil, err
	}
	records := make([]model.AttendanceRecord, len(s.Records))
	for i, rec := range s.Records {
		records[i] = rec.Clone()
	}
	return &Batch{
		ID:        s.ID,
		Document:  s.Document,
		Source:    s.Source,
		Policy:    policy,
		CreatedAt: s.CreatedAt,
		Records:   records,
		Pending:   correction.NewPending(records),
	}, nil
}

func joinResult(res correction.Result) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0, len(res.Released)+len(res.Held)+len(res.Excluded))
	out = append(out, res.Released...)
	out = append(out, res.Held...)
	for _, ex := range res.Excluded {
		out = append(out, ex.Record)
	}
	slices.SortFunc(out, func(a, b model.AttendanceRecord) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Employee), strings.ToLower(b.Employee)),
			cmp.Compare(a.Date, b.Date),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}
