package editor

import (
	"strconv"

	"eventshare-web/pkg/core/model"
)

type InputKind int

const (
	BeginEdit InputKind = iota + 1
	SubmitSucceeded
	CancelEdit
	Deleted
	Logout
)

// Input 状态机输入。BeginEdit 需要 Event，Deleted 需要 EventID。
type Input struct {
	Kind    InputKind
	Event   model.EventSummary
	EventID int64
}

type EffectKind int

const (
	PopulateForm EffectKind = iota + 1
	ResetForm
	ShowCancel
	HideCancel
	ClearFieldErrors
	RefreshCatalog
	Notify
)

type Effect struct {
	Kind    EffectKind
	Form    model.EventForm
	Message string
}

const (
	MsgCreated = "Event created"
	MsgUpdated = "Event updated"
	MsgDeleted = "Event deleted"
)

// leaveEdit 回到新建模式的公共副作用
var leaveEdit = []Effect{{Kind: ResetForm}, {Kind: HideCancel}, {Kind: ClearFieldErrors}}

// Next 纯状态转移：新建模式（EventID 为 0）与编辑模式之间切换
func Next(state model.EditSession, in Input) (model.EditSession, []Effect) {
	switch in.Kind {
	case BeginEdit:
		return model.EditSession{EventID: in.Event.ID}, []Effect{
			{Kind: ClearFieldErrors},
			{Kind: PopulateForm, Form: FormFromEvent(in.Event)},
			{Kind: ShowCancel},
		}

	case SubmitSucceeded:
		if state.Editing() {
			return model.EditSession{}, append(clone(leaveEdit),
				Effect{Kind: Notify, Message: MsgUpdated},
				Effect{Kind: RefreshCatalog})
		}
		return state, []Effect{
			{Kind: ResetForm},
			{Kind: ClearFieldErrors},
			{Kind: Notify, Message: MsgCreated},
			{Kind: RefreshCatalog},
		}

	case CancelEdit, Logout:
		return model.EditSession{}, clone(leaveEdit)

	case Deleted:
		effects := []Effect{}
		next := state
		if state.Editing() && state.EventID == in.EventID {
			// 删除的正是正在编辑的活动
			next = model.EditSession{}
			effects = append(effects, leaveEdit...)
		}
		return next, append(effects,
			Effect{Kind: Notify, Message: MsgDeleted},
			Effect{Kind: RefreshCatalog})
	}
	return state, nil
}

// FormFromEvent 日期转换为无时区的 YYYY-MM-DDTHH:MM
func FormFromEvent(ev model.EventSummary) model.EventForm {
	form := model.EventForm{
		Title:       ev.Title,
		Description: ev.Description,
		EventDate:   ev.EventDate.InputValue(),
		Location:    ev.Location,
	}
	if ev.Category != nil {
		form.CategoryID = strconv.FormatInt(ev.Category.ID, 10)
	}
	if ev.Capacity != nil {
		form.Capacity = strconv.Itoa(*ev.Capacity)
	}
	return form
}

// InputFromForm 空值或非数字的分类、人数上限按未填写处理，由后端校验
func InputFromForm(form model.EventForm) model.EventInput {
	in := model.EventInput{
		Title:       form.Title,
		Description: form.Description,
		EventDate:   form.EventDate,
		Location:    form.Location,
	}
	if id, err := strconv.ParseInt(form.CategoryID, 10, 64); err == nil {
		in.CategoryID = &id
	}
	if n, err := strconv.Atoi(form.Capacity); err == nil {
		in.Capacity = &n
	}
	return in
}

func clone(effects []Effect) []Effect {
	return append([]Effect(nil), effects...)
}
