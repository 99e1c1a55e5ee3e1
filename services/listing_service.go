package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"equipx_go/models"
	"equipx_go/utils"
)

// ProductAPI 发布相关的远程调用
type ProductAPI interface {
	List(ctx context.Context) ([]models.Equipment, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Equipment, error)
	Create(ctx context.Context, req *models.CreateEquipmentRequest) (*models.Equipment, error)
	Update(ctx context.Context, id string, patch *models.EquipmentPatch) (*models.Equipment, error)
	TransitionStatus(ctx context.Context, id string, target models.SaleStatus) (*models.Equipment, error)
	Delete(ctx context.Context, id string) error
}

// AccountSource 当前登录账号
type AccountSource interface {
	Account() (*models.User, error)
}

// ListingManager 维护本地发布集合，所有修改都以服务端确认的结果为准
type ListingManager struct {
	api       ProductAPI
	accounts  AccountSource
	validator *utils.Validator
	logger    *zap.Logger

	mu    sync.RWMutex
	items []models.Equipment
}

// NewListingManager 创建发布管理器实例
func NewListingManager(api ProductAPI, accounts AccountSource, logger *zap.Logger) *ListingManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingManager{
		api:       api,
		accounts:  accounts,
		validator: utils.NewValidator(),
		logger:    logger,
	}
}

// ==================== 加载 ====================

// LoadForSeller 用卖家的全部发布替换本地集合
func (m *ListingManager) LoadForSeller(ctx context.Context, sellerID string) error {
	items, err := m.api.ListBySeller(ctx, sellerID)
	if err != nil {
		return m.fail(newOpError(KindFetch, "load seller listings", sellerID, err))
	}
	return m.replace(items, "load seller listings", sellerID)
}

// LoadAll 用整个市场目录替换本地集合（买家视图）
func (m *ListingManager) LoadAll(ctx context.Context) error {
	items, err := m.api.List(ctx)
	if err != nil {
		return m.fail(newOpError(KindFetch, "load catalog", "", err))
	}
	return m.replace(items, "load catalog", "")
}

// replace 校验全部条目后整体替换，不做部分替换
func (m *ListingManager) replace(items []models.Equipment, op, id string) error {
	next := make([]models.Equipment, 0, len(items))
	for _, item := range items {
		item = item.Normalize()
		if !item.SaleStatus.Valid() {
			return m.fail(newOpError(KindFetch, op, id,
				fmt.Errorf("listing %s has unknown sale status %q", item.ID, item.SaleStatus)))
		}
		next = append(next, item)
	}

	m.mu.Lock()
	m.items = next
	m.mu.Unlock()

	m.logger.Debug("listings loaded", zap.String("op", op), zap.Int("count", len(next)))
	return nil
}

// ==================== 修改 ====================

// Create 创建发布，成功后把服务端确认的发布放到集合最前面
// 失败时集合不变，草稿由调用方保留
func (m *ListingManager) Create(ctx context.Context, draft models.EquipmentDraft) (*models.Equipment, error) {
	if err := m.validator.Validate(&draft); err != nil {
		return nil, m.fail(newOpError(KindCreate, "create listing", "", err))
	}

	account, err := m.accounts.Account()
	if err != nil {
		return nil, m.fail(newOpError(KindCreate, "create listing", "", err))
	}
	if account.Role != "" && !account.IsSeller() {
		return nil, m.fail(newOpError(KindCreate, "create listing", "", ErrNotSeller))
	}

	created, err := m.api.Create(ctx, &models.CreateEquipmentRequest{
		EquipmentDraft: draft,
		Seller:         account.Name,
		SellerID:       account.ID,
	})
	if err != nil {
		return nil, m.fail(newOpError(KindCreate, "create listing", "", err))
	}
	if created.ID == "" {
		return nil, m.fail(newOpError(KindCreate, "create listing", "", errors.New("server returned listing without id")))
	}

	item := created.Normalize()
	if item.SellerID == "" {
		item.SellerID = account.ID
	}
	if item.Seller == "" {
		item.Seller = account.Name
	}

	m.mu.Lock()
	m.items = append([]models.Equipment{item}, m.items...)
	m.mu.Unlock()

	m.logger.Info("listing created", zap.String("listing_id", item.ID), zap.String("seller_id", item.SellerID))
	return &item, nil
}

// Update 部分更新（名称/图片/成色/价格），成功后用服务端结果替换本地条目
func (m *ListingManager) Update(ctx context.Context, id string, patch models.EquipmentPatch) (*models.Equipment, error) {
	current, ok := m.Get(id)
	if !ok {
		return nil, m.fail(newOpError(KindUpdate, "update listing", id, ErrNotFound))
	}
	if patch.Empty() {
		return &current, nil
	}
	if err := m.validator.Validate(&patch); err != nil {
		return nil, m.fail(newOpError(KindUpdate, "update listing", id, err))
	}

	updated, err := m.api.Update(ctx, id, &patch)
	if err != nil {
		return nil, m.fail(newOpError(KindUpdate, "update listing", id, err))
	}

	item, err := reconcile(current, *updated)
	if err != nil {
		return nil, m.fail(newOpError(KindUpdate, "update listing", id, err))
	}
	m.store(item)

	m.logger.Info("listing updated", zap.String("listing_id", id))
	return &item, nil
}

// TransitionStatus 把发布迁移到 sold 或 archived
// 目标与当前状态相同时不发请求；不允许回退
func (m *ListingManager) TransitionStatus(ctx context.Context, id string, target models.SaleStatus) (*models.Equipment, error) {
	current, ok := m.Get(id)
	if !ok {
		return nil, m.fail(newOpError(KindTransition, "transition listing", id, ErrNotFound))
	}
	if target != models.SaleSold && target != models.SaleArchived {
		return nil, m.fail(newOpError(KindTransition, "transition listing", id,
			fmt.Errorf("%w: target %q", ErrInvalidTransition, target)))
	}
	if current.SaleStatus == target {
		return &current, nil
	}
	if !current.SaleStatus.CanTransitionTo(target) {
		return nil, m.fail(newOpError(KindTransition, "transition listing", id,
			fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.SaleStatus, target)))
	}

	result, err := m.api.TransitionStatus(ctx, id, target)
	if err != nil {
		return nil, m.fail(newOpError(KindTransition, "transition listing", id, err))
	}

	confirmed := *result
	if confirmed.SaleStatus == "" {
		confirmed.SaleStatus = target
	}
	item, err := reconcile(current, confirmed)
	if err != nil {
		return nil, m.fail(newOpError(KindTransition, "transition listing", id, err))
	}
	m.store(item)

	m.logger.Info("listing status changed",
		zap.String("listing_id", id),
		zap.String("from", string(current.SaleStatus)),
		zap.String("to", string(item.SaleStatus)),
	)
	return &item, nil
}

// Delete 物理删除发布，与状态迁移是不同的操作
func (m *ListingManager) Delete(ctx context.Context, id string) error {
	if _, ok := m.Get(id); !ok {
		return m.fail(newOpError(KindDelete, "delete listing", id, ErrNotFound))
	}
	if err := m.api.Delete(ctx, id); err != nil {
		return m.fail(newOpError(KindDelete, "delete listing", id, err))
	}

	m.mu.Lock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i:i], m.items[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.logger.Info("listing deleted", zap.String("listing_id", id))
	return nil
}

// reconcile 合并服务端结果，卖家字段保持不变
func reconcile(current, confirmed models.Equipment) (models.Equipment, error) {
	item := confirmed.Normalize()
	if item.ID == "" {
		item.ID = current.ID
	}
	if item.SellerID != "" && item.SellerID != current.SellerID {
		return models.Equipment{}, ErrSellerChanged
	}
	item.SellerID = current.SellerID
	if item.Seller == "" {
		item.Seller = current.Seller
	}
	if !item.SaleStatus.Valid() {
		return models.Equipment{}, fmt.Errorf("unknown sale status %q", item.SaleStatus)
	}
	return item, nil
}

// store 替换同ID条目；条目已不在集合中时（例如期间重新加载过）忽略
func (m *ListingManager) store(item models.Equipment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = item
			return
		}
	}
}

func (m *ListingManager) fail(err *OpError) error {
	m.logger.Error("listing operation failed",
		zap.String("kind", string(err.Kind)),
		zap.String("op", err.Op),
		zap.String("id", err.ID),
		zap.Error(err.Err),
	)
	return err
}

// ==================== 读取与派生视图 ====================

// Get 按ID查找
func (m *ListingManager) Get(id string) (models.Equipment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.Equipment{}, false
}

// Listings 返回权威集合的副本
func (m *ListingManager) Listings() []models.Equipment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Equipment, len(m.items))
	copy(out, m.items)
	return out
}

// Views 基于同一快照计算全部派生视图
func (m *ListingManager) Views() Views {
	return Partition(m.Listings())
}

// Active 在售发布
func (m *ListingManager) Active() []models.Equipment { return m.Views().Active }

// Sold 已售发布
func (m *ListingManager) Sold() []models.Equipment { return m.Views().Sold }

// Archived 已归档发布
func (m *ListingManager) Archived() []models.Equipment { return m.Views().Archived }

// TotalValue 在售发布总价值
func (m *ListingManager) TotalValue() float64 { return m.Views().TotalValue }

// Views 派生视图，每次都从权威集合重新计算，不单独保存
type Views struct {
	Active     []models.Equipment
	Sold       []models.Equipment
	Archived   []models.Equipment
	TotalValue float64
}

// Partition 按发布状态划分集合，并计算在售总价值
func Partition(items []models.Equipment) Views {
	v := Views{
		Active:   []models.Equipment{},
		Sold:     []models.Equipment{},
		Archived: []models.Equipment{},
	}
	for _, item := range items {
		switch item.SaleStatus.OrDefault() {
		case models.SaleActive:
			v.Active = append(v.Active, item)
			v.TotalValue += item.Price
		case models.SaleSold:
			v.Sold = append(v.Sold, item)
		case models.SaleArchived:
			v.Archived = append(v.Archived, item)
		}
	}
	return v
}
