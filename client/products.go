package client

import (
	"context"
	"net/http"
	"net/url"

	"equipx_go/models"
)

const productsPath = "/api/products"

// ProductsAPI 发布相关接口
type ProductsAPI struct {
	c *Client
}

// List 获取全部发布
func (a *ProductsAPI) List(ctx context.Context) ([]models.Equipment, error) {
	var out []models.Equipment
	err := a.c.do(ctx, request{method: http.MethodGet, path: productsPath, auth: true}, &out)
	return out, err
}

// ListBySeller 获取某个卖家的发布
func (a *ProductsAPI) ListBySeller(ctx context.Context, sellerID string) ([]models.Equipment, error) {
	var out []models.Equipment
	err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   productsPath,
		query:  url.Values{"sellerId": {sellerID}},
		auth:   true,
	}, &out)
	return out, err
}

// Get 获取发布详情
func (a *ProductsAPI) Get(ctx context.Context, id string) (*models.Equipment, error) {
	var out models.Equipment
	if err := a.c.do(ctx, request{method: http.MethodGet, path: productsPath + "/" + url.PathEscape(id), auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create 创建发布
func (a *ProductsAPI) Create(ctx context.Context, req *models.CreateEquipmentRequest) (*models.Equipment, error) {
	var out models.Equipment
	if err := a.c.do(ctx, request{method: http.MethodPost, path: productsPath, body: req, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update 部分更新发布
func (a *ProductsAPI) Update(ctx context.Context, id string, patch *models.EquipmentPatch) (*models.Equipment, error) {
	var out models.Equipment
	if err := a.c.do(ctx, request{method: http.MethodPut, path: productsPath + "/" + url.PathEscape(id), body: patch, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransitionStatus 修改发布状态（sold/archived）
func (a *ProductsAPI) TransitionStatus(ctx context.Context, id string, target models.SaleStatus) (*models.Equipment, error) {
	var out models.Equipment
	if err := a.c.do(ctx, request{
		method: http.MethodPut,
		path:   productsPath + "/" + url.PathEscape(id) + "/status",
		body:   &models.StatusTransitionRequest{SaleStatus: target},
		auth:   true,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete 物理删除发布
func (a *ProductsAPI) Delete(ctx context.Context, id string) error {
	return a.c.do(ctx, request{method: http.MethodDelete, path: productsPath + "/" + url.PathEscape(id), auth: true}, nil)
}
