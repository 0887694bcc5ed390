package model

import (
	core "eventshare-web/pkg/core/model"
)

// 页面表单数据结构
type (
	RegisterForm struct {
		Username string `form:"username"`
		Password string `form:"password"`
		Bio      string `form:"bio"`
	}

	LoginForm struct {
		Username string `form:"username"`
		Password string `form:"password"`
	}

	EventForm struct {
		Title       string `form:"title"`
		Description string `form:"description"`
		EventDate   string `form:"eventDate"`
		Location    string `form:"location"`
		CategoryID  string `form:"categoryId"`
		Capacity    string `form:"capacity"`
	}

	// ConfirmForm 删除类操作必须带 confirm=yes
	ConfirmForm struct {
		Confirm string `form:"confirm"`
	}

	CaptionForm struct {
		Caption string `form:"caption"`
	}
)

func (f EventForm) ToCore() core.EventForm {
	return core.EventForm{
		Title:       f.Title,
		Description: f.Description,
		EventDate:   f.EventDate,
		Location:    f.Location,
		CategoryID:  f.CategoryID,
		Capacity:    f.Capacity,
	}
}

func (f ConfirmForm) Confirmed() bool {
	return f.Confirm == "yes"
}
