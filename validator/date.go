package validator

import (
	"strconv"
	"strings"
	"time"
)

// dateKeywordToday 代表当前日期的关键字
const dateKeywordToday = "today"

// parseDate 解析日期操作数: "today" 或 YYYY-M-D
// 结果按天截断，使用 now 的时区；无法解析时返回 false
func parseDate(raw string, now time.Time) (time.Time, bool) {
	if raw == dateKeywordToday {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	}
	if !dateRegex.MatchString(raw) {
		return time.Time{}, false
	}

	parts := strings.Split(raw, "-")
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	// 越界的月/日由 time.Date 进位归一化，例如 2024-2-30 -> 2024-03-01
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()), true
}

// compareDates 解析两个操作数并比较，任一无法解析则返回 false
func compareDates(ctx *EvalContext, value, param string, cmp func(entered, bound time.Time) bool) bool {
	now := ctx.Now()
	entered, ok := parseDate(value, now)
	if !ok {
		return false
	}
	bound, ok := parseDate(param, now)
	if !ok {
		return false
	}
	return cmp(entered, bound)
}
