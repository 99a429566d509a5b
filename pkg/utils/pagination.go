package utils

import "math"

// MaxOffset 偏移量上限，页码过大时压到这里，保证 (page-1)*limit 不溢出
const MaxOffset = math.MaxInt32

// Pagination 分页请求参数
type Pagination struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// PageResult 分页响应结果
type PageResult struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// PageMeta 只包含分页信息，用于列表字段名由业务决定的响应
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Normalize 修正页码和每页数量
// defaultLimit 用于未传 limit 的情况，maxLimit 为上限
func (p *Pagination) Normalize(defaultLimit, maxLimit int) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Limit > 0 && p.Page > MaxOffset/p.Limit+1 {
		p.Page = MaxOffset/p.Limit + 1
	}
}

// Offset 当前页的偏移量，调用前需先 Normalize
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// GetPageOffset 计算分页偏移量
func (p *Pagination) GetPageOffset() (int, int) {
	p.Normalize(10, 100)
	return p.Offset(), p.Limit
}

// Meta 根据总数生成分页信息
func (p Pagination) Meta(total int64) PageMeta {
	return PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// TotalPages 向上取整计算总页数
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
