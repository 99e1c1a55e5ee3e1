package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipx_go/config"
	"equipx_go/middleware"
	"equipx_go/models"
	"equipx_go/store"
	"equipx_go/utils"
)

const (
	messagesPerMinute = 30
	chatChannelPrefix = "equipx:chat:"
)

// ChatController 聊天控制器
type ChatController struct {
	store *store.Store
}

// NewChatController 创建聊天控制器实例
func NewChatController(st *store.Store) *ChatController {
	return &ChatController{store: st}
}

// GetMessages 获取某个发布下的消息，按时间升序
// @Summary 获取聊天消息
// @Tags chats
// @Produce json
// @Param equipmentId query string true "发布ID"
// @Success 200 {array} models.Message
// @Router /api/chats [get]
func (cc *ChatController) GetMessages(c *gin.Context) {
	equipmentID := c.Query("equipmentId")
	if equipmentID == "" {
		utils.BadRequest(c, "equipmentId is required")
		return
	}
	messages, err := cc.store.ListMessages(equipmentID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage 发送消息，发送者必须是当前登录用户
// @Summary 发送消息
// @Tags chats
// @Accept json
// @Produce json
// @Param request body models.SendMessageRequest true "消息"
// @Success 201 {object} models.Message
// @Router /api/chats [post]
func (cc *ChatController) SendMessage(c *gin.Context) {
	user := currentUser(c)

	var req models.SendMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.SenderID != user.ID {
		utils.Forbidden(c, "sender does not match the authenticated user")
		return
	}
	if !utils.APIRateLimit(c.Request.Context(), "chat", user.ID, messagesPerMinute, time.Minute) {
		utils.TooManyRequests(c, "")
		return
	}

	msg, err := cc.store.AddMessage(req)
	if err != nil {
		storeError(c, err)
		return
	}

	cc.publish(*msg)
	c.JSON(http.StatusCreated, msg)
}

// publish 把新消息推送到Redis频道（Redis不可用时跳过）
func (cc *ChatController) publish(msg models.Message) {
	if config.RedisClient == nil {
		return
	}
	go func() {
		data, err := json.Marshal(msg)
		if err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := config.RedisClient.Publish(ctx, chatChannelPrefix+msg.EquipmentID, data).Err(); err != nil {
			middleware.DebugLogger("chat publish failed", zap.Error(err))
		}
	}()
}
