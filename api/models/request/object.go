package request

// RegisterObject 注册对象，data 允许为空字符串
type RegisterObject struct {
	Data string `form:"data" json:"data"`
}

// LookupObject 按 id 查询对象
type LookupObject struct {
	Id uint64 `form:"id" json:"id" binding:"required,min=1"`
}
