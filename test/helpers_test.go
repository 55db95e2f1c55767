package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// 测试配置（需要先启动服务，并把验证码接口限流放宽，例如 RATE_LIMIT_BURST=50）
var (
	BaseURL   = getEnv("TEST_SERVER_URL", "http://localhost:8080")
	APIPrefix = "/api/v1"

	// Redis 配置（和服务端 .env 保持一致，用来读取验证码）
	RedisURL      = getEnv("TEST_REDIS_ADDR", "localhost:6379")
	RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
	RedisDB       = 0
)

var phoneCounter int64 = time.Now().UnixNano() % 1000000

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getRedisClient 获取 Redis 客户端
func getRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     RedisURL,
		Password: RedisPassword,
		DB:       RedisDB,
	})
}

// requireServer 服务不可达时跳过（TEST_REQUIRE_SERVER=1 时直接失败）
func requireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(BaseURL + "/health")
	if err != nil {
		if os.Getenv("TEST_REQUIRE_SERVER") == "1" {
			t.Fatalf("server not reachable at %s: %v", BaseURL, err)
		}
		t.Skipf("server not reachable at %s: %v", BaseURL, err)
	}
	resp.Body.Close()
}

// TestUser 测试用户
type TestUser struct {
	ID    string
	Phone string
	Token string
}

func nextPhone() string {
	n := atomic.AddInt64(&phoneCounter, 1)
	return fmt.Sprintf("+1555%07d", n%10000000)
}

// loginTestUser 走完整的验证码流程：下发 -> 从 Redis 读验证码 -> 校验并拿到 Token
func loginTestUser(t *testing.T, name string) *TestUser {
	t.Helper()
	phone := nextPhone()

	resp, body, err := httpRequest("POST", APIPrefix+"/phone/send-verification", "", map[string]string{
		"phone_number": phone,
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode, string(body))

	rdb := getRedisClient()
	defer rdb.Close()
	code, err := rdb.HGet(context.Background(), "verify:"+phone, "code").Result()
	require.NoError(t, err, "验证码应该已经写入 Redis")

	resp, body, err = httpRequest("POST", APIPrefix+"/phone/verify-code", "", map[string]string{
		"phone_number": phone,
		"code":         code,
		"name":         name,
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode, string(body))

	data := parseResponse(body)
	user := data["user"].(map[string]interface{})
	return &TestUser{
		ID:    user["id"].(string),
		Phone: phone,
		Token: data["token"].(string),
	}
}

// httpRequest HTTP 请求辅助函数
func httpRequest(method, path, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, BaseURL+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, respBody, err
}

// parseResponse 解析统一响应格式，返回 data 字段
func parseResponse(body []byte) map[string]interface{} {
	var response struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	json.Unmarshal(body, &response)
	if response.Data != nil {
		return response.Data
	}
	var result map[string]interface{}
	json.Unmarshal(body, &result)
	return result
}

// rateDay 给某天打分
func rateDay(t *testing.T, user *TestUser, date string, rating int) {
	t.Helper()
	resp, body, err := httpRequest("POST", APIPrefix+"/ratings", user.Token, map[string]interface{}{
		"date":   date,
		"rating": rating,
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode, string(body))
}

// befriend 建立好友关系
func befriend(t *testing.T, user, friend *TestUser) {
	t.Helper()
	resp, body, err := httpRequest("POST", APIPrefix+"/friendships", user.Token, map[string]string{
		"friend_id": friend.ID,
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode, string(body))
}

// listOf 取出 data 中的数组字段
func listOf(data map[string]interface{}, key string) []interface{} {
	items, ok := data[key].([]interface{})
	if !ok {
		return []interface{}{}
	}
	return items
}
