package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceholderImage 图书无封面时使用的占位图
const PlaceholderImage = "https://via.placeholder.com/200x300?text=No+Image"

// ImageURL 规范化图书封面地址
// 空地址返回占位图；http开头的绝对地址原样返回；相对路径拼接后端地址，保证只有一个斜杠
func ImageURL(backendURL, raw string) string {
	if raw == "" {
		return PlaceholderImage
	}
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	clean := strings.TrimPrefix(raw, "/")
	return strings.TrimSuffix(backendURL, "/") + "/" + clean
}

// FormatMoney 金额保留两位小数
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatPrice 浮点价格保留两位小数
func FormatPrice(p float64) string {
	return FormatMoney(decimal.NewFromFloat(p))
}
