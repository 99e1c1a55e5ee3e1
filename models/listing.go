package models

// ConditionStatus 设备成色
type ConditionStatus string

const (
	ConditionNew    ConditionStatus = "new"
	ConditionUsed   ConditionStatus = "used"
	ConditionUnused ConditionStatus = "unused"
)

// Valid 是否为合法成色
func (c ConditionStatus) Valid() bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionUnused:
		return true
	}
	return false
}

// SaleStatus 发布生命周期状态
type SaleStatus string

const (
	SaleActive   SaleStatus = "active"
	SaleSold     SaleStatus = "sold"
	SaleArchived SaleStatus = "archived"
)

// saleRank 状态只能向前推进：active -> sold -> archived
var saleRank = map[SaleStatus]int{
	SaleActive:   0,
	SaleSold:     1,
	SaleArchived: 2,
}

// Valid 是否为合法发布状态
func (s SaleStatus) Valid() bool {
	_, ok := saleRank[s]
	return ok
}

// CanTransitionTo 判断是否允许从当前状态迁移到目标状态
// 只允许向前迁移，active 可以直接归档
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	from, ok := saleRank[s.OrDefault()]
	if !ok {
		return false
	}
	to, ok := saleRank[target]
	if !ok {
		return false
	}
	return to > from
}

// OrDefault 服务端未返回状态时默认为 active
func (s SaleStatus) OrDefault() SaleStatus {
	if s == "" {
		return SaleActive
	}
	return s
}

// Equipment 医疗设备发布
type Equipment struct {
	ID         string          `gorm:"type:varchar(36);primaryKey" json:"_id,omitempty"`
	Name       string          `gorm:"type:varchar(200);not null" json:"name"`
	Image      string          `gorm:"type:varchar(500)" json:"image"`
	Status     ConditionStatus `gorm:"type:varchar(20);not null" json:"status"`
	Price      float64         `gorm:"not null" json:"price"`
	Seller     string          `gorm:"type:varchar(100)" json:"seller"`
	SellerID   string          `gorm:"type:varchar(36);index;not null" json:"sellerId"`
	SaleStatus SaleStatus      `gorm:"type:varchar(20);index;not null" json:"saleStatus,omitempty"`
}

// TableName 指定表名
func (Equipment) TableName() string {
	return "equipment"
}

// Normalize 补全服务端省略的默认字段
func (e Equipment) Normalize() Equipment {
	e.SaleStatus = e.SaleStatus.OrDefault()
	return e
}

// EquipmentDraft 创建发布时提交的表单（不含 id/seller/sellerId）
type EquipmentDraft struct {
	Name       string          `json:"name" validate:"required,notblank,max=200"`
	Image      string          `json:"image" validate:"omitempty,uri"`
	Status     ConditionStatus `json:"status" validate:"required,condition"`
	Price      float64         `json:"price" validate:"gte=0"`
	SaleStatus SaleStatus      `json:"saleStatus,omitempty" validate:"omitempty,salestatus"`
}

// CreateEquipmentRequest 创建请求体（注入卖家信息）
type CreateEquipmentRequest struct {
	EquipmentDraft
	Seller   string `json:"seller"`
	SellerID string `json:"sellerId"`
}

// EquipmentPatch 部分更新，nil 字段不修改
// 卖家字段在创建后不可变，因此不出现在这里
type EquipmentPatch struct {
	Name   *string          `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Image  *string          `json:"image,omitempty" validate:"omitempty,uri"`
	Status *ConditionStatus `json:"status,omitempty" validate:"omitempty,condition"`
	Price  *float64         `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// Empty 是否没有任何字段
func (p EquipmentPatch) Empty() bool {
	return p.Name == nil && p.Image == nil && p.Status == nil && p.Price == nil
}

// Apply 将补丁应用到发布上
func (p EquipmentPatch) Apply(e Equipment) Equipment {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	return e
}

// StatusTransitionRequest 状态迁移请求体
type StatusTransitionRequest struct {
	SaleStatus SaleStatus `json:"saleStatus" validate:"required,oneof=sold archived"`
}
