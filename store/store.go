// Package store 是开发API服务器使用的 gorm 存储。
package store

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"equipx_go/config"
	"equipx_go/models"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("not the owner of this resource")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email, password or role")
	ErrInvalidTransition  = errors.New("sale status can only move forward")
)

// Store 账号、发布和消息的持久化
type Store struct {
	db *gorm.DB
}

// New 使用已打开的数据库创建存储并迁移表结构
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.User{}, &models.Equipment{}, &models.Message{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewInMemory 创建基于内存 SQLite 的独立存储
func NewInMemory() (*Store, error) {
	db, err := config.OpenDatabase(config.MemoryDatabaseConfig())
	if err != nil {
		return nil, err
	}
	return New(db)
}

// ==================== 账号 ====================

// CreateUser 注册账号，密码使用 bcrypt 保存
func (s *Store) CreateUser(name, email, password string, role models.Role) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:       models.GenerateID(),
		Name:     strings.TrimSpace(name),
		Email:    email,
		Role:     role,
		Password: string(hash),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	user.Password = ""
	return &user, nil
}

// Authenticate 校验邮箱、密码和角色
func (s *Store) Authenticate(email, password string, role models.Role) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if role != "" && user.Role != role {
		return nil, ErrInvalidCredentials
	}

	user.Password = ""
	return &user, nil
}

// ==================== 发布 ====================

// ListProducts 列出发布（按创建顺序），sellerID 为空时返回全部
func (s *Store) ListProducts(sellerID string) ([]models.Equipment, error) {
	query := s.db.Order("id ASC")
	if sellerID != "" {
		query = query.Where("seller_id = ?", sellerID)
	}

	products := make([]models.Equipment, 0)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct 按ID获取发布
func (s *Store) GetProduct(id string) (*models.Equipment, error) {
	return findProduct(s.db, id)
}

// CreateProduct 创建发布，新发布总是 active
func (s *Store) CreateProduct(draft models.EquipmentDraft, seller *models.User) (*models.Equipment, error) {
	p := models.Equipment{
		ID:         models.GenerateOrderedID(),
		Name:       strings.TrimSpace(draft.Name),
		Image:      draft.Image,
		Status:     draft.Status,
		Price:      draft.Price,
		Seller:     seller.Name,
		SellerID:   seller.ID,
		SaleStatus: models.SaleActive,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct 部分更新，只有卖家本人可以修改
func (s *Store) UpdateProduct(id, sellerID string, patch models.EquipmentPatch) (*models.Equipment, error) {
	var updated *models.Equipment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := findOwnedProduct(tx, id, sellerID)
		if err != nil {
			return err
		}
		next := patch.Apply(*p)
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetSaleStatus 推进发布状态；与当前状态相同时直接返回
func (s *Store) SetSaleStatus(id, sellerID string, target models.SaleStatus) (*models.Equipment, error) {
	var updated *models.Equipment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := findOwnedProduct(tx, id, sellerID)
		if err != nil {
			return err
		}
		current := p.SaleStatus.OrDefault()
		if current != target {
			if !current.CanTransitionTo(target) {
				return ErrInvalidTransition
			}
			if err := tx.Model(p).Update("sale_status", target).Error; err != nil {
				return err
			}
			p.SaleStatus = target
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct 删除发布及其消息
func (s *Store) DeleteProduct(id, sellerID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		p, err := findOwnedProduct(tx, id, sellerID)
		if err != nil {
			return err
		}
		if err := tx.Where("equipment_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
}

func findProduct(db *gorm.DB, id string) (*models.Equipment, error) {
	var p models.Equipment
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func findOwnedProduct(db *gorm.DB, id, sellerID string) (*models.Equipment, error) {
	p, err := findProduct(db, id)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, ErrForbidden
	}
	return p, nil
}

// ==================== 消息 ====================

// ListMessages 某个发布下的消息，ULID 有序即时间升序
func (s *Store) ListMessages(equipmentID string) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := s.db.Where("equipment_id = ?", equipmentID).Order("id ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AddMessage 追加消息，发布不存在时返回 ErrNotFound
func (s *Store) AddMessage(req models.SendMessageRequest) (*models.Message, error) {
	m := models.Message{
		ID:          models.GenerateOrderedID(),
		SenderID:    req.SenderID,
		Sender:      req.Sender,
		Body:        req.Body,
		Timestamp:   req.Timestamp,
		EquipmentID: req.EquipmentID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findProduct(tx, req.EquipmentID); err != nil {
			return err
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}
