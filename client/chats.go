package client

import (
	"context"
	"net/http"
	"net/url"

	"equipx_go/models"
)

const chatsPath = "/api/chats"

// ChatsAPI 聊天相关接口
type ChatsAPI struct {
	c *Client
}

// Thread 获取某个发布下的消息（服务端按时间升序返回）
func (a *ChatsAPI) Thread(ctx context.Context, equipmentID string) ([]models.Message, error) {
	var out []models.Message
	err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   chatsPath,
		query:  url.Values{"equipmentId": {equipmentID}},
		auth:   true,
	}, &out)
	return out, err
}

// Send 发送消息
func (a *ChatsAPI) Send(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error) {
	var out models.Message
	if err := a.c.do(ctx, request{method: http.MethodPost, path: chatsPath, body: req, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
