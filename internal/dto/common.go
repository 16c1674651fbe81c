package dto

// PageQuery 通用分页查询参数（1 起始页码）
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize 返回规范化后的 page、pageSize、offset
func (q *PageQuery) Normalize() (page, pageSize, offset int) {
	page = q.Page
	if page < 1 {
		page = 1
	}
	pageSize = q.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize, (page - 1) * pageSize
}

// UserBrief 关联实体中内嵌的用户展示信息
type UserBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
