package static

import (
	_ "embed"
	"html/template"
)

//go:embed index.html
var indexHTML string

const IndexName = "index.html"

// Templates 解析内嵌的页面模板，交给 gin.SetHTMLTemplate 使用
func Templates() *template.Template {
	return template.Must(template.New(IndexName).Parse(indexHTML))
}
