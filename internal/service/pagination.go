package service

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of posts shown per list page.
const DefaultPageSize = 3

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	Total      int64
	PerPage    int
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// PreviousNumber 返回上一页页码
func (p Page[T]) PreviousNumber() int { return p.Number - 1 }

// NextNumber 返回下一页页码
func (p Page[T]) NextNumber() int { return p.Number + 1 }

// ResolvePage 根据总数与每页数量计算实际页码。
// raw 缺失或不是正整数时回到第 1 页，超出范围时返回最后一页。
func ResolvePage(total int64, pageSize int, raw string) (number, totalPages int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages = 1
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	number = parsePageNumber(raw)
	if number > totalPages {
		number = totalPages
	}
	return number, totalPages
}

// Paginate slices items into the requested page. The input slice is not modified.
func Paginate[T any](items []T, pageSize int, raw string) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	number, totalPages := ResolvePage(int64(len(items)), pageSize, raw)

	start := (number - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	window := make([]T, 0, end-start)
	window = append(window, items[start:end]...)

	return Page[T]{
		Items:      window,
		Number:     number,
		TotalPages: totalPages,
		Total:      int64(len(items)),
		PerPage:    pageSize,
	}
}

func parsePageNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	num, err := strconv.Atoi(raw)
	if err != nil {
		// 超出 int 范围的纯数字仍是正整数，交给调用方截到最后一页
		if errors.Is(err, strconv.ErrRange) && isDigits(raw) {
			return math.MaxInt
		}
		return 1
	}
	if num <= 0 {
		return 1
	}
	return num
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
