package services

import (
	"sort"
	"strings"
	"sync"

	"equipx_go/models"
)

// PriceSort 价格排序方式
type PriceSort string

const (
	PriceSortNone PriceSort = "none"
	PriceSortAsc  PriceSort = "asc"
	PriceSortDesc PriceSort = "desc"
)

// ConditionAll 不按成色过滤
const ConditionAll = "all"

// ParsePriceSort 兼容前端的 low-high / high-low 写法
func ParsePriceSort(s string) PriceSort {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "low-high", "ascending":
		return PriceSortAsc
	case "desc", "high-low", "descending":
		return PriceSortDesc
	default:
		return PriceSortNone
	}
}

// CatalogQuery 搜索/过滤/排序参数
type CatalogQuery struct {
	Search    string
	Condition string // new, used, unused 或 all
	PriceSort PriceSort
}

// FilterCatalog 从未过滤的目录开始依次应用搜索、成色过滤和排序
// 纯函数，不修改入参
func FilterCatalog(catalog []models.Equipment, q CatalogQuery) []models.Equipment {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	condition := strings.TrimSpace(q.Condition)

	out := make([]models.Equipment, 0, len(catalog))
	for _, item := range catalog {
		if !matchesSearch(item, term) {
			continue
		}
		if condition != "" && condition != ConditionAll && string(item.Status) != condition {
			continue
		}
		out = append(out, item)
	}

	switch q.PriceSort {
	case PriceSortAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case PriceSortDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}

// matchesSearch 名称或卖家名不区分大小写的子串匹配
func matchesSearch(item models.Equipment, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), term) ||
		strings.Contains(strings.ToLower(item.Seller), term)
}

// CatalogFilter 买家视图的过滤状态，三个条件可以分别重置
// 每次都从未过滤的目录重新计算，不会在上一次结果上继续过滤
type CatalogFilter struct {
	mu    sync.RWMutex
	query CatalogQuery
}

// NewCatalogFilter 创建过滤器（初始不过滤）
func NewCatalogFilter() *CatalogFilter {
	f := &CatalogFilter{}
	f.Reset()
	return f
}

// SetSearch 设置搜索词
func (f *CatalogFilter) SetSearch(term string) {
	f.mu.Lock()
	f.query.Search = term
	f.mu.Unlock()
}

// SetCondition 设置成色过滤
func (f *CatalogFilter) SetCondition(condition string) {
	if condition == "" {
		condition = ConditionAll
	}
	f.mu.Lock()
	f.query.Condition = condition
	f.mu.Unlock()
}

// SetPriceSort 设置价格排序
func (f *CatalogFilter) SetPriceSort(s PriceSort) {
	if s == "" {
		s = PriceSortNone
	}
	f.mu.Lock()
	f.query.PriceSort = s
	f.mu.Unlock()
}

// ClearSearch 清除搜索词
func (f *CatalogFilter) ClearSearch() { f.SetSearch("") }

// ClearCondition 清除成色过滤
func (f *CatalogFilter) ClearCondition() { f.SetCondition(ConditionAll) }

// ClearPriceSort 清除排序
func (f *CatalogFilter) ClearPriceSort() { f.SetPriceSort(PriceSortNone) }

// Reset 清除全部条件
func (f *CatalogFilter) Reset() {
	f.mu.Lock()
	f.query = CatalogQuery{Condition: ConditionAll, PriceSort: PriceSortNone}
	f.mu.Unlock()
}

// Query 当前条件
func (f *CatalogFilter) Query() CatalogQuery {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.query
}

// Apply 对未过滤的目录应用当前条件
func (f *CatalogFilter) Apply(catalog []models.Equipment) []models.Equipment {
	return FilterCatalog(catalog, f.Query())
}

// Search 对管理器当前集合应用条件
func (m *ListingManager) Search(q CatalogQuery) []models.Equipment {
	return FilterCatalog(m.Listings(), q)
}
