package account

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient Redis客户端接口（用于依赖注入和测试）
type redisClient interface {
	// Get 获取键对应的值
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键值对
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Keys 查找匹配模式的所有键
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Ping 测试连接
	Ping(ctx context.Context) error
	// Close 关闭连接
	Close() error
}

// RedisConfig Redis地址簿配置
type RedisConfig struct {
	// Addr Redis服务器地址
	Addr string
	// Password 密码（可选）
	Password string
	// DB 数据库编号
	DB int
	// KeyPrefix 键前缀，默认 "ember:addressbook:"
	KeyPrefix string
}

// RedisProvider Redis地址簿来源
//
// 功能说明：
// - 地址簿条目存放于Redis，支持跨会话共享
// - Key 格式：{prefix}{address}，Value 为 JSON 序列化的 Entry
type RedisProvider struct {
	client    redisClient
	keyPrefix string
	name      string
}

var _ SearchProvider = (*RedisProvider)(nil)

// NewRedisProvider 从配置创建Redis地址簿来源
func NewRedisProvider(cfg *RedisConfig) (*RedisProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis配置不能为空")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis地址不能为空")
	}

	client := &goRedisClient{client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	return newRedisProvider(client, cfg.KeyPrefix), nil
}

func newRedisProvider(client redisClient, keyPrefix string) *RedisProvider {
	if keyPrefix == "" {
		keyPrefix = "ember:addressbook:"
	}
	return &RedisProvider{
		client:    client,
		keyPrefix: keyPrefix,
		name:      "redis-addressbook",
	}
}

// Name 来源名称
func (p *RedisProvider) Name() string { return p.name }

// Put 写入地址簿条目
func (p *RedisProvider) Put(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.Address == "" {
		return fmt.Errorf("地址簿条目不完整")
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("序列化地址簿条目失败: %w", err)
	}
	key := p.keyPrefix + strings.ToLower(entry.Address)
	if err := p.client.Set(ctx, key, encoded, 0); err != nil {
		return fmt.Errorf("写入地址簿失败: %w", err)
	}
	return nil
}

// Search 子串匹配Redis中的地址簿条目
func (p *RedisProvider) Search(ctx context.Context, query string) ([]*AccountCandidate, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	keys, err := p.client.Keys(ctx, p.keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("查询地址簿键失败: %w", err)
	}

	var matches []*AccountCandidate
	for _, key := range keys {
		raw, err := p.client.Get(ctx, key)
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(entry.Name), needle) ||
			strings.Contains(strings.ToLower(entry.Address), needle) {
			matches = append(matches, &AccountCandidate{
				Address: entry.Address,
				Name:    entry.Name,
				Source:  p.name,
			})
		}
	}
	return matches, nil
}

// Close 关闭底层连接
func (p *RedisProvider) Close() error {
	return p.client.Close()
}

// goRedisClient go-redis客户端适配
type goRedisClient struct {
	client *redis.Client
}

var _ redisClient = (*goRedisClient)(nil)

func (c *goRedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *goRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

func (c *goRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	return c.client.Keys(ctx, pattern).Result()
}

func (c *goRedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *goRedisClient) Close() error {
	return c.client.Close()
}
