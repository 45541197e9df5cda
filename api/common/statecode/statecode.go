package statecode

const (
	CommonSuccess      = 0
	CommonErrServerErr = 1000
	ParameterEmptyErr  = 1001
	ObjectIdErr        = 1002 // id 必须是正整数
	LedgerNotReady     = 2000 // 链连接尚未初始化完成或初始化失败
	RegisterObjectErr  = 2001
	RetrieveObjectErr  = 2002
)

var msg = map[int]string{
	CommonSuccess:      "success",
	CommonErrServerErr: "server error",
	ParameterEmptyErr:  "parameter is empty",
	ObjectIdErr:        "object id must be a positive integer",
	LedgerNotReady:     "ledger client is not ready",
	RegisterObjectErr:  "error registering object",
	RetrieveObjectErr:  "invalid object id or object not found",
}

// GetMsg 根据状态码返回提示信息
func GetMsg(code int) string {
	if m, ok := msg[code]; ok {
		return m
	}
	return msg[CommonErrServerErr]
}
