package services

import (
	"context"
	"fmt"
	"sync"

	"equipx_go/models"
)

type staticAccount struct {
	user *models.User
	err  error
}

func (s staticAccount) Account() (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u := *s.user
	return &u, nil
}

var (
	seller = &models.User{ID: "seller1", Name: "Dr. Ada", Role: models.RoleSeller, Token: "t"}
	buyer  = &models.User{ID: "buyer1", Name: "Ben", Role: models.RoleBuyer, Token: "t"}
)

// fakeProducts 内存版商品接口，按方法名计数
type fakeProducts struct {
	mu    sync.Mutex
	items []models.Equipment
	calls map[string]int
	seq   int

	err            error  // 非空时所有调用失败
	sellerOverride string // 非空时更新结果篡改 sellerId
	omitSaleStatus bool   // 创建结果不返回 saleStatus
}

func newFakeProducts(items ...models.Equipment) *fakeProducts {
	return &fakeProducts{items: items, calls: map[string]int{}}
}

func (f *fakeProducts) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeProducts) begin(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeProducts) List(ctx context.Context) ([]models.Equipment, error) {
	if err := f.begin("List"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Equipment(nil), f.items...), nil
}

func (f *fakeProducts) ListBySeller(ctx context.Context, sellerID string) ([]models.Equipment, error) {
	if err := f.begin("ListBySeller"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Equipment{}
	for _, item := range f.items {
		if item.SellerID == sellerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeProducts) Create(ctx context.Context, req *models.CreateEquipmentRequest) (*models.Equipment, error) {
	if err := f.begin("Create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	item := models.Equipment{
		ID:       fmt.Sprintf("p%d", f.seq),
		Name:     req.Name,
		Image:    req.Image,
		Status:   req.Status,
		Price:    req.Price,
		Seller:   req.Seller,
		SellerID: req.SellerID,
	}
	if !f.omitSaleStatus {
		item.SaleStatus = models.SaleActive
	}
	f.items = append(f.items, item)
	return &item, nil
}

func (f *fakeProducts) find(id string) int {
	for i := range f.items {
		if f.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeProducts) Update(ctx context.Context, id string, patch *models.EquipmentPatch) (*models.Equipment, error) {
	if err := f.begin("Update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return nil, fmt.Errorf("404")
	}
	f.items[i] = patch.Apply(f.items[i])
	item := f.items[i]
	if f.sellerOverride != "" {
		item.SellerID = f.sellerOverride
	}
	return &item, nil
}

func (f *fakeProducts) TransitionStatus(ctx context.Context, id string, target models.SaleStatus) (*models.Equipment, error) {
	if err := f.begin("TransitionStatus"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return nil, fmt.Errorf("404")
	}
	f.items[i].SaleStatus = target
	item := f.items[i]
	return &item, nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	if err := f.begin("Delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.find(id); i >= 0 {
		f.items = append(f.items[:i], f.items[i+1:]...)
	}
	return nil
}

// fakeChat 内存版聊天接口
type fakeChat struct {
	mu          sync.Mutex
	thread      []models.Message
	threadCalls int
	sendCalls   int
	seq         int

	threadErr error
	sendErr   error
	// persist 为 false 时发送成功但消息不会出现在后续快照中
	persist bool
	// bareReply 为 true 时发送响应体为空对象，只有快照里带ID
	bareReply bool
}

func newFakeChat(thread ...models.Message) *fakeChat {
	return &fakeChat{thread: thread, persist: true}
}

func (f *fakeChat) Thread(ctx context.Context, equipmentID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threadCalls++
	if f.threadErr != nil {
		return nil, f.threadErr
	}
	out := []models.Message{}
	for _, m := range f.thread {
		if m.EquipmentID == equipmentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeChat) Send(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.seq++
	m := models.Message{
		ID:          fmt.Sprintf("sent-%d", f.seq),
		SenderID:    req.SenderID,
		Sender:      req.Sender,
		Body:        req.Body,
		Timestamp:   req.Timestamp,
		EquipmentID: req.EquipmentID,
	}
	if f.persist {
		f.thread = append(f.thread, m)
	}
	if f.bareReply {
		return &models.Message{}, nil
	}
	return &m, nil
}

func (f *fakeChat) calls() (thread, send int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.threadCalls, f.sendCalls
}

func (f *fakeChat) set(fn func(f *fakeChat)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}
