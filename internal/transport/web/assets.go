// Package web 内嵌推荐页面的模板与静态资源。
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

//go:embed static/*
var Static embed.FS
