package models

// PaginationQuery 分页参数，页码从0开始
type PaginationQuery struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize 修正非法的分页参数
func (q PaginationQuery) Normalize(defaultSize int) PaginationQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultSize
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	return q
}

// Offset 返回查询偏移量
func (q PaginationQuery) Offset() int {
	return q.Page * q.PageSize
}

// PageResult 分页查询结果
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
}

// NewPageResult 创建一个新的分页结果对象
func NewPageResult[T any](items []T, total int64, q PaginationQuery) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	var pages int64
	if q.PageSize > 0 {
		pages = (total + int64(q.PageSize) - 1) / int64(q.PageSize)
	}
	return PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: pages,
	}
}
