package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"equipx_go/config"
	"equipx_go/models"
)

// ChatAPI 聊天相关的远程调用
type ChatAPI interface {
	Thread(ctx context.Context, equipmentID string) ([]models.Message, error)
	Send(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error)
}

// SessionState 聊天窗口状态
type SessionState int

const (
	StateIdle SessionState = iota
	StateLoading
	StateLive
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ChatSessionConfig 聊天会话配置
type ChatSessionConfig struct {
	EquipmentID string
	// CounterpartID 非空时只保留自己和对方的消息
	CounterpartID string
	PollInterval  time.Duration
	Logger        *zap.Logger
	// OnUpdate 每次线程变化后调用，参数为快照
	// 轮询触发时在轮询 goroutine 上执行，Close 会等待它返回；
	// 回调内不能同步调用 Close，需要关闭时使用 go session.Close()
	OnUpdate func(messages []models.Message)
	Now      func() time.Time
}

// ChatSession 单个发布的聊天线程同步器
// 打开时拉取一次，之后按固定间隔轮询全量替换；本地发送的消息在被快照确认前保持 pending
type ChatSession struct {
	api      ChatAPI
	accounts AccountSource
	cfg      ChatSessionConfig
	logger   *zap.Logger

	mu       sync.Mutex
	state    SessionState
	selfID   string
	messages []models.Message
	pending  []models.Message
	draft    string
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewChatSession 创建聊天会话（处于 idle 状态）
func NewChatSession(api ChatAPI, accounts AccountSource, cfg ChatSessionConfig) *ChatSession {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = config.DefaultPollInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatSession{
		api:      api,
		accounts: accounts,
		cfg:      cfg,
		logger:   logger.With(zap.String("equipment_id", cfg.EquipmentID)),
	}
}

// State 当前状态
func (s *ChatSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open 拉取线程并开始轮询
func (s *ChatSession) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return newOpError(KindFetch, "open chat", s.cfg.EquipmentID,
			errors.New("session is "+state.String()))
	}
	s.state = StateLoading
	s.mu.Unlock()

	account, err := s.accounts.Account()
	if err != nil {
		s.resetToIdle()
		return s.fail(newOpError(KindFetch, "open chat", s.cfg.EquipmentID, err))
	}

	msgs, err := s.api.Thread(ctx, s.cfg.EquipmentID)
	if err != nil {
		s.resetToIdle()
		return s.fail(newOpError(KindFetch, "open chat", s.cfg.EquipmentID, err))
	}

	s.mu.Lock()
	if s.state != StateLoading {
		// 加载期间被关闭
		s.mu.Unlock()
		return ErrSessionNotLive
	}
	s.selfID = account.ID
	s.applySnapshot(msgs)
	s.state = StateLive

	pollCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.pollLoop(pollCtx)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("chat session live", zap.Int("messages", len(snapshot)))
	s.notify(snapshot)
	return nil
}

func (s *ChatSession) resetToIdle() {
	s.mu.Lock()
	if s.state == StateLoading {
		s.state = StateIdle
	}
	s.mu.Unlock()
}

// Close 关闭会话：同步取消轮询并等待轮询 goroutine 退出
// 返回后不会再有任何回调修改状态
func (s *ChatSession) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	cancel := s.cancel
	s.cancel = nil
	s.messages = nil
	s.pending = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.logger.Debug("chat session closed")
}

// pollLoop 固定间隔轮询
func (s *ChatSession) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll 拉取一次并全量替换；失败时线程保持不变
func (s *ChatSession) poll(ctx context.Context) {
	msgs, err := s.api.Thread(ctx, s.cfg.EquipmentID)

	s.mu.Lock()
	if s.state != StateLive || ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("chat poll failed", zap.Error(err))
		return
	}
	s.applySnapshot(msgs)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Send 发送消息；空白内容直接拒绝，不发请求
// 失败时草稿保留，不自动重试
func (s *ChatSession) Send(ctx context.Context, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state != StateLive {
		s.mu.Unlock()
		return nil, s.fail(newOpError(KindSend, "send message", s.cfg.EquipmentID, ErrSessionNotLive))
	}
	s.draft = body
	s.mu.Unlock()

	account, err := s.accounts.Account()
	if err != nil {
		return nil, s.fail(newOpError(KindSend, "send message", s.cfg.EquipmentID, err))
	}

	req := models.NewSendMessageRequest(account, s.cfg.EquipmentID, body, s.cfg.Now())
	sent, err := s.api.Send(ctx, req)
	if err != nil {
		return nil, s.fail(newOpError(KindSend, "send message", s.cfg.EquipmentID, err))
	}

	msg := *sent
	if msg.SenderID == "" {
		msg.SenderID = req.SenderID
	}
	if msg.Sender == "" {
		msg.Sender = req.Sender
	}
	if msg.EquipmentID == "" {
		msg.EquipmentID = req.EquipmentID
	}
	if msg.Timestamp == "" {
		msg.Timestamp = req.Timestamp
	}
	if msg.Body == "" {
		msg.Body = req.Body
	}
	msg.Pending = false

	s.mu.Lock()
	if s.state != StateLive {
		// 发送期间窗口被关闭，消息已送达但不再修改本地状态
		s.mu.Unlock()
		return &msg, nil
	}
	if !s.confirmedLocked(msg) {
		s.pending = append(s.pending, msg)
	}
	if s.draft == body {
		s.draft = ""
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return &msg, nil
}

// Messages 当前线程：服务端顺序 + 尾部未确认的本地消息
func (s *ChatSession) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Draft 输入框中的草稿
func (s *ChatSession) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft 更新草稿
func (s *ChatSession) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// applySnapshot 全量替换服务端线程，并移除已被快照确认的 pending 消息
// 调用方需持有锁
func (s *ChatSession) applySnapshot(msgs []models.Message) {
	thread := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if !s.belongs(m) {
			continue
		}
		m.Pending = false
		thread = append(thread, m)
	}
	s.messages = thread

	remaining := s.pending[:0]
	for _, p := range s.pending {
		if s.confirmedLocked(p) {
			continue
		}
		remaining = append(remaining, p)
	}
	s.pending = remaining
}

// confirmedLocked 服务端快照中是否已有这条消息
func (s *ChatSession) confirmedLocked(msg models.Message) bool {
	for _, m := range s.messages {
		if sameMessage(msg, m) {
			return true
		}
	}
	return false
}

// belongs 是否属于本线程
func (s *ChatSession) belongs(m models.Message) bool {
	if m.EquipmentID != "" && m.EquipmentID != s.cfg.EquipmentID {
		return false
	}
	if s.cfg.CounterpartID == "" {
		return true
	}
	return m.SenderID == s.selfID || m.SenderID == s.cfg.CounterpartID
}

func (s *ChatSession) snapshotLocked() []models.Message {
	out := make([]models.Message, 0, len(s.messages)+len(s.pending))
	out = append(out, s.messages...)
	for _, p := range s.pending {
		p.Pending = true
		out = append(out, p)
	}
	return out
}

func (s *ChatSession) notify(snapshot []models.Message) {
	if s.cfg.OnUpdate != nil {
		s.cfg.OnUpdate(snapshot)
	}
}

func (s *ChatSession) fail(err *OpError) error {
	s.logger.Error("chat operation failed",
		zap.String("kind", string(err.Kind)),
		zap.String("op", err.Op),
		zap.Error(err.Err),
	)
	return err
}

// sameMessage 本地消息是否就是快照中的 confirmed
// 本地消息有ID时按ID匹配；服务端发送时没返回ID，则按发送者+时间+内容匹配，不看快照一侧的ID
func sameMessage(local, confirmed models.Message) bool {
	if local.ID != "" {
		return local.ID == confirmed.ID
	}
	return local.SenderID == confirmed.SenderID &&
		local.Timestamp == confirmed.Timestamp &&
		local.Body == confirmed.Body
}
