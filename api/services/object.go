package services

import (
	"context"

	"doi-frontend/api/common/statecode"
	"doi-frontend/api/models/request"
	"doi-frontend/api/models/response"
	"doi-frontend/internal/view"

	"github.com/pkg/errors"
)

// RecentLimit 页面上展示的最近注册条数
const RecentLimit = 10

type ObjectService struct {
	view *view.View
}

func NewObject(v *view.View) *ObjectService {
	return &ObjectService{view: v}
}

// Register 调用 registerObject，失败时 result 里仍带上最新状态
func (s *ObjectService) Register(ctx context.Context, req *request.RegisterObject, result *response.Registered) int {
	id, err := s.view.SubmitRecord(ctx, req.Data)
	result.State = s.view.Snapshot()
	if err != nil {
		return errCode(err, statecode.RegisterObjectErr)
	}
	result.Id = id
	return statecode.CommonSuccess
}

// Retrieve 按 id 读取对象
func (s *ObjectService) Retrieve(ctx context.Context, id uint64, result *response.Retrieved) int {
	result.Id = id
	data, err := s.view.FetchRecord(ctx, id)
	result.State = s.view.Snapshot()
	if err != nil {
		return errCode(err, statecode.RetrieveObjectErr)
	}
	result.Data = data
	return statecode.CommonSuccess
}

// Index 组装页面数据，journal 读取失败不影响页面
func (s *ObjectService) Index(ctx context.Context, title string) (response.Index, error) {
	res := response.Index{Title: title, State: s.view.Snapshot()}
	if !res.State.Ready() {
		return res, nil
	}
	recent, err := s.view.Recent(ctx, RecentLimit)
	if err != nil {
		return res, err
	}
	res.Recent = recent
	return res, nil
}

func errCode(err error, fallback int) int {
	switch {
	case errors.Is(err, view.ErrNotReady):
		return statecode.LedgerNotReady
	case errors.Is(err, view.ErrInvalidObjectID):
		return statecode.ObjectIdErr
	}
	return fallback
}
