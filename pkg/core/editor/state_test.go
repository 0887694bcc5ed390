package editor

import (
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/common/test/assert"

	"eventshare-web/pkg/core/model"
)

func kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

func has(effects []Effect, k EffectKind) bool {
	for _, e := range effects {
		if e.Kind == k {
			return true
		}
	}
	return false
}

func sampleEvent() model.EventSummary {
	capacity := 20
	return model.EventSummary{
		ID:          5,
		Title:       "Go meetup",
		Description: "talks",
		EventDate:   model.LocalTime{Time: time.Date(2026, 11, 1, 18, 30, 0, 0, time.Local)},
		Location:    "Tokyo",
		Category:    &model.Category{ID: 2, Name: "Tech"},
		Capacity:    &capacity,
	}
}

func TestBeginEdit(t *testing.T) {
	next, effects := Next(model.EditSession{}, Input{Kind: BeginEdit, Event: sampleEvent()})
	assert.DeepEqual(t, int64(5), next.EventID)
	assert.DeepEqual(t, []EffectKind{ClearFieldErrors, PopulateForm, ShowCancel}, kinds(effects))
	assert.DeepEqual(t, model.EventForm{
		Title:       "Go meetup",
		Description: "talks",
		EventDate:   "2026-11-01T18:30",
		Location:    "Tokyo",
		CategoryID:  "2",
		Capacity:    "20",
	}, effects[1].Form)
}

func TestSubmitSucceeded(t *testing.T) {
	next, effects := Next(model.EditSession{}, Input{Kind: SubmitSucceeded})
	assert.Assert(t, !next.Editing())
	assert.Assert(t, has(effects, RefreshCatalog))
	assert.Assert(t, !has(effects, HideCancel))
	assert.DeepEqual(t, MsgCreated, effects[2].Message)

	next, effects = Next(model.EditSession{EventID: 5}, Input{Kind: SubmitSucceeded})
	assert.Assert(t, !next.Editing())
	assert.Assert(t, has(effects, HideCancel))
	assert.Assert(t, has(effects, ResetForm))
	assert.Assert(t, has(effects, RefreshCatalog))
	assert.DeepEqual(t, MsgUpdated, effects[3].Message)
}

func TestCancelAndLogoutAlwaysYieldCreate(t *testing.T) {
	for _, kind := range []InputKind{CancelEdit, Logout} {
		for _, from := range []model.EditSession{{}, {EventID: 9}} {
			next, effects := Next(from, Input{Kind: kind})
			assert.Assert(t, !next.Editing())
			assert.DeepEqual(t, []EffectKind{ResetForm, HideCancel, ClearFieldErrors}, kinds(effects))
		}
	}
}

func TestDeleted(t *testing.T) {
	// 删除正在编辑的活动
	next, effects := Next(model.EditSession{EventID: 5}, Input{Kind: Deleted, EventID: 5})
	assert.Assert(t, !next.Editing())
	assert.Assert(t, has(effects, ResetForm))
	assert.Assert(t, has(effects, RefreshCatalog))

	// 删除其他活动不影响编辑
	next, effects = Next(model.EditSession{EventID: 5}, Input{Kind: Deleted, EventID: 6})
	assert.DeepEqual(t, int64(5), next.EventID)
	assert.Assert(t, !has(effects, ResetForm))
	assert.Assert(t, has(effects, RefreshCatalog))
}

func TestInputFromForm(t *testing.T) {
	in := InputFromForm(model.EventForm{Title: "t", EventDate: "2026-11-01T18:30", CategoryID: "3", Capacity: ""})
	assert.DeepEqual(t, int64(3), *in.CategoryID)
	assert.Assert(t, in.Capacity == nil)
	assert.DeepEqual(t, "2026-11-01T18:30", in.EventDate)

	in = InputFromForm(model.EventForm{CategoryID: "x", Capacity: "12"})
	assert.Assert(t, in.CategoryID == nil)
	assert.DeepEqual(t, 12, *in.Capacity)
}
