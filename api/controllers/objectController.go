package controllers

import (
	"context"
	"net/http"

	"doi-frontend/api/common/statecode"
	"doi-frontend/api/models/request"
	"doi-frontend/api/models/response"
	"doi-frontend/api/services"
	"doi-frontend/api/static"
	"doi-frontend/api/validate"
	"doi-frontend/internal/view"
	"doi-frontend/log"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const Title = "Digital Object Identifier"

// ObjectController 页面以及注册、查询对象的接口
type ObjectController struct {
	View *view.View
}

// Index 渲染页面
func (c *ObjectController) Index(ctx *gin.Context) {
	data, err := services.NewObject(c.View).Index(ctx.Request.Context(), Title)
	if err != nil {
		log.Logger.Warn("load recent registrations", zap.Error(err))
	}
	ctx.HTML(http.StatusOK, static.IndexName, data)
}

// Register 注册新对象，表单提交完成后重定向回页面
func (c *ObjectController) Register(ctx *gin.Context) {
	req := request.RegisterObject{}
	result := response.Registered{}

	// 1. 参数校验
	errCode := validate.NewObject().Register(ctx, &req)
	if errCode != statecode.CommonSuccess {
		reply(ctx, errCode, nil)
		return
	}
	// 2. 发交易并等待上链，浏览器断开也要等交易结束
	errCode = services.NewObject(c.View).Register(detach(ctx), &req, &result)
	reply(ctx, errCode, result)
}

// Lookup 按表单或 json 里的 id 查询对象
func (c *ObjectController) Lookup(ctx *gin.Context) {
	req := request.LookupObject{}
	result := response.Retrieved{}

	// id 不合法时直接返回，不会请求节点
	errCode := validate.NewObject().Lookup(ctx, &req)
	if errCode != statecode.CommonSuccess {
		reply(ctx, errCode, nil)
		return
	}
	errCode = services.NewObject(c.View).Retrieve(detach(ctx), req.Id, &result)
	reply(ctx, errCode, result)
}

// Get 按路径里的 id 查询对象，只返回 json
func (c *ObjectController) Get(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	result := response.Retrieved{}

	id, err := view.ParseObjectID(ctx.Param("id"))
	if err != nil {
		res.Response(ctx, statecode.ObjectIdErr, nil)
		return
	}
	errCode := services.NewObject(c.View).Retrieve(detach(ctx), id, &result)
	res.Response(ctx, errCode, result)
}

// State 返回当前页面状态
func (c *ObjectController) State(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	res.Response(ctx, statecode.CommonSuccess, c.View.Snapshot())
}

func detach(ctx *gin.Context) context.Context {
	return context.WithoutCancel(ctx.Request.Context())
}

// reply json 请求返回统一结构，页面表单重定向回首页
func reply(ctx *gin.Context, code int, data interface{}) {
	if wantsJSON(ctx) {
		res := response.Gin{Res: ctx}
		res.Response(ctx, code, data)
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/")
}

func wantsJSON(ctx *gin.Context) bool {
	if ctx.ContentType() == binding.MIMEJSON {
		return true
	}
	return ctx.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) == binding.MIMEJSON
}
