package services

import "gorm.io/gorm"

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Page selects a window of a listing. The zero value means "everything".
type Page struct {
	Number int
	Limit  int
}

func NewPage(number, limit int) Page {
	if number <= 0 {
		return Page{}
	}
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Number <= 0 {
		return q
	}
	return q.Limit(p.Limit).Offset((p.Number - 1) * p.Limit)
}
