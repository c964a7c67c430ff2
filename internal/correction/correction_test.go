package correction

import (
	"errors"
	"testing"

	"github.com/Veraticus/punchclock/internal/common"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) *model.ClockTime {
	return model.ClockPtr(model.MustClockTime(hour, minute))
}

func rec(employee string, state model.ClassificationState, in, out *model.ClockTime) model.AttendanceRecord {
	return model.AttendanceRecord{
		ID:       model.RecordID(employee, "2024-01-05"),
		Employee: employee,
		Date:     "2024-01-05",
		State:    state,
		CheckIn:  in,
		CheckOut: out,
	}
}

func fixture() []model.AttendanceRecord {
	return []model.AttendanceRecord{
		rec("ana", model.StateWellFormed, at(8, 0), at(17, 0)),
		rec("luis", model.StateIncomplete, at(8, 0), nil),
		rec("marta", model.StateAmbiguous, at(23, 0), at(2, 0)),
		rec("pedro", model.StateAbsent, nil, nil),
	}
}

func TestNewPending(t *testing.T) {
	p := NewPending(fixture())

	require.Equal(t, 2, p.Len())
	reqs := p.Requests()
	assert.Equal(t, model.ReviewIncomplete, reqs[0].Kind)
	assert.Equal(t, "luis", reqs[0].Record.Employee)
	assert.Equal(t, model.ReviewAmbiguous, reqs[1].Kind)
	assert.Equal(t, "marta", reqs[1].Record.Employee)
	assert.Len(t, p.Outstanding(), 2)
	assert.Zero(t, p.Decided())
}

func TestSubmit(t *testing.T) {
	records := fixture()
	luis, marta := records[1].ID, records[2].ID

	tests := []struct {
		name     string
		decision model.CorrectionDecision
		wantErr  error
		errMsg   string
	}{
		{
			name:     "incomplete with check-out supplied",
			decision: model.CorrectionDecision{RecordID: luis, DeclaredType: model.PunchCheckIn, SuppliedTime: "17:00"},
		},
		{
			name:     "incomplete with check-in supplied",
			decision: model.CorrectionDecision{RecordID: luis, DeclaredType: model.PunchCheckOut, SuppliedTime: "6:00 am"},
		},
		{
			name:     "unparseable supplied time",
			decision: model.CorrectionDecision{RecordID: luis, DeclaredType: model.PunchCheckIn, SuppliedTime: "late"},
			wantErr:  common.ErrInvalidCorrection,
			errMsg:   "supplied time",
		},
		{
			name:     "missing supplied time",
			decision: model.CorrectionDecision{RecordID: luis, DeclaredType: model.PunchCheckIn},
			wantErr:  common.ErrInvalidCorrection,
			errMsg:   "missing supplied time",
		},
		{
			name:     "missing declared type",
			decision: model.CorrectionDecision{RecordID: luis, SuppliedTime: "17:00"},
			wantErr:  common.ErrInvalidCorrection,
			errMsg:   "check-in or a check-out",
		},
		{
			name:     "supplied equals captured",
			decision: model.CorrectionDecision{RecordID: luis, DeclaredType: model.PunchCheckIn, SuppliedTime: "08:00"},
			wantErr:  common.ErrInvalidCorrection,
			errMsg:   "equals the captured punch",
		},
		{
			name:     "ambiguous confirmed",
			decision: model.CorrectionDecision{RecordID: marta, CheckIn: "23:00", CheckOut: "02:00"},
		},
		{
			name:     "ambiguous missing check-out",
			decision: model.CorrectionDecision{RecordID: marta, CheckIn: "23:00"},
			wantErr:  common.ErrInvalidCorrection,
			errMsg:   "both check-in and check-out",
		},
		{
			name:     "ambiguous bad check-in",
			decision: model.CorrectionDecision{RecordID: marta, CheckIn: "99:00", CheckOut: "02:00"},
			wantErr:  common.ErrInvalidCorrection,
			errMsg:   "check-in",
		},
		{
			name:     "unknown record",
			decision: model.CorrectionDecision{RecordID: "nope", CheckIn: "08:00", CheckOut: "17:00"},
			wantErr:  common.ErrRecordNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := NewPending(records)
			after, err := before.Submit(tt.decision)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.errMsg)
				_, decided := after.Decision(tt.decision.RecordID)
				assert.False(t, decided)
			} else {
				require.NoError(t, err)
				got, decided := after.Decision(tt.decision.RecordID)
				assert.True(t, decided)
				assert.Equal(t, tt.decision, got)
			}

			// The original snapshot never changes.
			assert.Len(t, before.Outstanding(), 2)
			req, _ := before.Request(luis)
			assert.Zero(t, req.Attempts)
		})
	}
}

func TestSubmit_RejectionResurfacesRequest(t *testing.T) {
	records := fixture()
	luis := records[1].ID
	p := NewPending(records)

	p, err := p.Submit(model.CorrectionDecision{RecordID: luis, DeclaredType: model.PunchCheckIn, SuppliedTime: "??"})
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	p, err = p.Submit(model.CorrectionDecision{RecordID: luis, DeclaredType: model.PunchCheckIn, SuppliedTime: "25:99"})
	require.Error(t, err)

	req, ok := p.Request(luis)
	require.True(t, ok)
	assert.Equal(t, 2, req.Attempts)
	assert.Contains(t, req.LastError, "supplied time")
	assert.Equal(t, []string{luis, records[2].ID}, p.OutstandingIDs())

	p, err = p.Submit(model.CorrectionDecision{RecordID: luis, DeclaredType: model.PunchCheckIn, SuppliedTime: "17:00"})
	require.NoError(t, err)
	req, _ = p.Request(luis)
	assert.Empty(t, req.LastError)
	assert.Equal(t, 1, p.Decided())
}

func TestSubmitAll(t *testing.T) {
	records := fixture()
	p, rejections := NewPending(records).SubmitAll([]model.CorrectionDecision{
		{RecordID: records[1].ID, DeclaredType: model.PunchCheckIn, SuppliedTime: "17:00"},
		{RecordID: records[2].ID, CheckIn: "bad", CheckOut: "02:00"},
	})

	require.Len(t, rejections, 1)
	assert.Equal(t, records[2].ID, rejections[0].Decision.RecordID)
	assert.Equal(t, []string{records[2].ID}, p.OutstandingIDs())
}

func TestMerge_BatchPolicy(t *testing.T) {
	records := fixture()
	p := NewPending(records)
	p, err := p.Submit(model.CorrectionDecision{RecordID: records[1].ID, DeclaredType: model.PunchCheckIn, SuppliedTime: "17:00"})
	require.NoError(t, err)

	res, err := Merge(records, p, ReleaseBatch)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBatchIncomplete)

	var incomplete *common.BatchIncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{records[2].ID}, incomplete.Outstanding)

	// Nothing corrected: only the naturally well-formed record is released.
	require.Len(t, res.Released, 1)
	assert.Equal(t, "ana", res.Released[0].Employee)
	assert.Len(t, res.Held, 2)
	for _, held := range res.Held {
		assert.NotEqual(t, model.StateCorrected, held.State)
	}
	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "pedro", res.Excluded[0].Record.Employee)

	p, err = p.Submit(model.CorrectionDecision{RecordID: records[2].ID, CheckIn: "23:00", CheckOut: "02:00"})
	require.NoError(t, err)

	res, err = Merge(records, p, ReleaseBatch)
	require.NoError(t, err)
	assert.Len(t, res.Released, 3)
	assert.Empty(t, res.Held)
}

func TestMerge_PerRecordPolicy(t *testing.T) {
	records := fixture()
	p := NewPending(records)
	p, err := p.Submit(model.CorrectionDecision{RecordID: records[1].ID, DeclaredType: model.PunchCheckIn, SuppliedTime: "17:00"})
	require.NoError(t, err)

	res, err := Merge(records, p, ReleasePerRecord)
	require.NoError(t, err)

	require.Len(t, res.Released, 2)
	corrected := res.Released[1]
	assert.Equal(t, "luis", corrected.Employee)
	assert.Equal(t, model.StateCorrected, corrected.State)
	assert.Equal(t, "08:00", corrected.CheckIn.String())
	assert.Equal(t, "17:00", corrected.CheckOut.String())

	require.Len(t, res.Held, 1)
	assert.Equal(t, "marta", res.Held[0].Employee)

	assert.Equal(t, model.StateIncomplete, records[1].State, "input records are not mutated")
	assert.Nil(t, records[1].CheckOut)
}

func TestMerge_DeclaredCheckOut(t *testing.T) {
	records := []model.AttendanceRecord{rec("luis", model.StateIncomplete, nil, at(17, 0))}
	p, err := NewPending(records).Submit(model.CorrectionDecision{
		RecordID:     records[0].ID,
		DeclaredType: model.PunchCheckOut,
		SuppliedTime: "08:00",
	})
	require.NoError(t, err)

	res, err := Merge(records, p, ReleaseBatch)
	require.NoError(t, err)
	require.Len(t, res.Released, 1)
	assert.Equal(t, "08:00", res.Released[0].CheckIn.String())
	assert.Equal(t, "17:00", res.Released[0].CheckOut.String())
}

func TestParseReleasePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    ReleasePolicy
		wantErr bool
	}{
		{input: "", want: ReleaseBatch},
		{input: "batch", want: ReleaseBatch},
		{input: "Per-Record", want: ReleasePerRecord},
		{input: "per_record", want: ReleasePerRecord},
		{input: "eventually", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReleasePolicy(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
