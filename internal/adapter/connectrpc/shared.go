package connectrpc

import (
	v1 "github.com/eslsoft/traitscore/api/traitscore/v1"
	"github.com/eslsoft/traitscore/internal/repository"
)

const _maxPageSize = 1000

func convertPagination(p *v1.PaginationRequest) repository.Pagination {
	pageNo := p.GetPageNo()
	if pageNo <= 0 {
		pageNo = 1
	}
	pageSize := p.GetPageSize()
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > _maxPageSize {
		pageSize = _maxPageSize
	}

	return repository.Pagination{PageNo: pageNo, PageSize: pageSize}
}
