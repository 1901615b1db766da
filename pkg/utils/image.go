package utils

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// allowedImageTypes 允许上传的图片类型
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImageType 嗅探内容类型，嗅探不出时按扩展名推断
func DetectImageType(data []byte, filename string) string {
	contentType := http.DetectContentType(data)
	if contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
			contentType = byExt
		}
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return contentType
}

// IsAllowedImage 是否为允许的图片类型
func IsAllowedImage(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// ImageExt 图片类型对应的扩展名
func ImageExt(contentType, filename string) string {
	if ext, ok := allowedImageTypes[contentType]; ok {
		return ext
	}
	if ext := filepath.Ext(filename); ext != "" {
		return strings.ToLower(ext)
	}
	return ".jpg"
}
