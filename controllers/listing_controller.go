package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipx_go/middleware"
	"equipx_go/models"
	"equipx_go/store"
	"equipx_go/utils"
)

// ListingController 设备发布控制器
type ListingController struct {
	store *store.Store
}

// NewListingController 创建发布控制器实例
func NewListingController(st *store.Store) *ListingController {
	return &ListingController{store: st}
}

// GetListings 获取发布列表
// @Summary 获取发布列表
// @Tags products
// @Produce json
// @Param sellerId query string false "只返回该卖家的发布"
// @Success 200 {array} models.Equipment
// @Router /api/products [get]
func (lc *ListingController) GetListings(c *gin.Context) {
	products, err := lc.store.ListProducts(c.Query("sellerId"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetListing 获取发布详情
// @Router /api/products/{id} [get]
func (lc *ListingController) GetListing(c *gin.Context) {
	product, err := lc.store.GetProduct(c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateListing 创建发布，卖家信息以token为准
// @Summary 创建发布
// @Tags products
// @Accept json
// @Produce json
// @Param request body models.CreateEquipmentRequest true "发布信息"
// @Success 201 {object} models.Equipment
// @Router /api/products [post]
func (lc *ListingController) CreateListing(c *gin.Context) {
	user := currentUser(c)
	if !user.IsSeller() {
		utils.Forbidden(c, "only sellers can create listings")
		return
	}

	var req models.CreateEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	product, err := lc.store.CreateProduct(req.EquipmentDraft, user)
	if err != nil {
		storeError(c, err)
		return
	}
	middleware.InfoLogger("📦 listing created",
		zap.String("listing_id", product.ID),
		zap.String("seller_id", product.SellerID),
	)
	c.JSON(http.StatusCreated, product)
}

// UpdateListing 部分更新发布
// @Router /api/products/{id} [put]
func (lc *ListingController) UpdateListing(c *gin.Context) {
	var patch models.EquipmentPatch
	if !bindAndValidate(c, &patch) {
		return
	}

	product, err := lc.store.UpdateProduct(c.Param("id"), currentUser(c).ID, patch)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateListingStatus 推进发布状态（sold / archived）
// @Router /api/products/{id}/status [put]
func (lc *ListingController) UpdateListingStatus(c *gin.Context) {
	var req models.StatusTransitionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	product, err := lc.store.SetSaleStatus(c.Param("id"), currentUser(c).ID, req.SaleStatus)
	if err != nil {
		storeError(c, err)
		return
	}
	middleware.InfoLogger("🔁 listing status changed",
		zap.String("listing_id", product.ID),
		zap.String("sale_status", string(product.SaleStatus)),
	)
	c.JSON(http.StatusOK, product)
}

// DeleteListing 删除发布
// @Router /api/products/{id} [delete]
func (lc *ListingController) DeleteListing(c *gin.Context) {
	if err := lc.store.DeleteProduct(c.Param("id"), currentUser(c).ID); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "listing deleted"})
}
