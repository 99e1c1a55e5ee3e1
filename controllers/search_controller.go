package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipx_go/services"
	"equipx_go/store"
)

// SearchController 目录搜索控制器
type SearchController struct {
	store *store.Store
}

// NewSearchController 创建搜索控制器实例
func NewSearchController(st *store.Store) *SearchController {
	return &SearchController{store: st}
}

// SearchProducts 按名称/卖家搜索，可按成色过滤和按价格排序
// @Param q query string false "关键词"
// @Param condition query string false "new/used/unused/all"
// @Param sort query string false "asc/desc/low-high/high-low"
// @Router /api/search [get]
func (sc *SearchController) SearchProducts(c *gin.Context) {
	query := services.CatalogQuery{
		Search:    c.Query("q"),
		Condition: c.DefaultQuery("condition", services.ConditionAll),
		PriceSort: services.ParsePriceSort(c.Query("sort")),
	}
	products, err := sc.store.ListProducts("")
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.FilterCatalog(products, query))
}
