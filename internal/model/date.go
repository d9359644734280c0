package model

import (
	"time"
)

// DateLayout 按天粒度保存日期
const DateLayout = "2006-01-02"

// DateKey 把时间转换为当天的日期键，调用方负责先转换到食堂时区
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate 在指定时区解析日期键，返回当天零点
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}
