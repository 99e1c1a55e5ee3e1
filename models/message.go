package models

import "time"

// TimestampLayout 消息时间戳格式（ISO-8601，毫秒精度）
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Message 聊天消息，发送后不可修改
type Message struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"_id,omitempty"`
	SenderID    string `gorm:"type:varchar(36);not null" json:"senderId"`
	Sender      string `gorm:"type:varchar(100)" json:"sender"`
	Body        string `gorm:"column:body;type:text;not null" json:"message"`
	Timestamp   string `gorm:"type:varchar(40);not null" json:"timestamp"`
	EquipmentID string `gorm:"type:varchar(36);index;not null" json:"equipmentId"`

	// Pending 本地发送但尚未被轮询快照确认
	Pending bool `gorm:"-" json:"-"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// Time 解析时间戳，解析失败返回零值
func (m Message) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SendMessageRequest 发送消息请求体
type SendMessageRequest struct {
	SenderID    string `json:"senderId" validate:"required"`
	Sender      string `json:"sender" validate:"required"`
	EquipmentID string `json:"equipmentId" validate:"required"`
	Body        string `json:"message" validate:"required,notblank,max=1000"`
	Timestamp   string `json:"timestamp" validate:"required"`
}

// NewSendMessageRequest 以当前时间构造发送请求
func NewSendMessageRequest(account *User, equipmentID, body string, now time.Time) *SendMessageRequest {
	return &SendMessageRequest{
		SenderID:    account.ID,
		Sender:      account.Name,
		EquipmentID: equipmentID,
		Body:        body,
		Timestamp:   now.UTC().Format(TimestampLayout),
	}
}
