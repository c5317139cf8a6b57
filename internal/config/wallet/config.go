// Package wallet 提供钱包客户端的运行配置
package wallet

// AssetKind 资产类型
type AssetKind string

const (
	// AssetKindNative 链原生币
	AssetKindNative AssetKind = "native"
	// AssetKindERC20 合约代币
	AssetKindERC20 AssetKind = "erc20"
)

// AssetOptions 单个资产的配置
type AssetOptions struct {
	ID              string    `json:"id"`               // 资产标识
	Name            string    `json:"name"`             // 显示名称
	Network         string    `json:"network"`          // 网络标识
	Kind            AssetKind `json:"kind"`             // 资产类型
	ContractAddress string    `json:"contract_address"` // 合约地址（erc20必填）
	Decimals        uint8     `json:"decimals"`         // 小数位（erc20，0表示18）
}

// AddressBookEntry 静态地址簿条目
type AddressBookEntry struct {
	Address string `json:"address"` // 账户地址
	Name    string `json:"name"`    // 显示名称
}

// RedisOptions Redis地址簿配置
type RedisOptions struct {
	Addr      string `json:"addr"`       // 服务器地址，空串表示禁用
	Password  string `json:"password"`   // 密码
	DB        int    `json:"db"`         // 数据库编号
	KeyPrefix string `json:"key_prefix"` // 键前缀
}

// WalletOptions 钱包客户端配置选项
type WalletOptions struct {
	// === 节点连接 ===
	NodeRPCURL string `json:"node_rpc_url"` // JSON-RPC端点
	NodeWSURL  string `json:"node_ws_url"`  // WebSocket端点，空串表示禁用订阅

	// === 账户 ===
	DefaultAccount string `json:"default_account"` // 默认发送方地址

	// === 资产 ===
	Assets []AssetOptions `json:"assets"` // 注册顺序即展示顺序

	// === 账户检索 ===
	AddressBook []AddressBookEntry `json:"address_book"` // 静态地址簿
	Redis       *RedisOptions      `json:"redis"`        // Redis地址簿（可选）
}

// Config 钱包配置实现
type Config struct {
	options *WalletOptions
}

// New 创建钱包配置实现
//
// 用户配置覆盖默认值，未提供的字段保持默认。
func New(userOptions *WalletOptions) *Config {
	options := createDefaultWalletOptions()

	if userOptions != nil {
		if userOptions.NodeRPCURL != "" {
			options.NodeRPCURL = userOptions.NodeRPCURL
		}
		if userOptions.NodeWSURL != "" {
			options.NodeWSURL = userOptions.NodeWSURL
		}
		if userOptions.DefaultAccount != "" {
			options.DefaultAccount = userOptions.DefaultAccount
		}
		if len(userOptions.Assets) > 0 {
			options.Assets = userOptions.Assets
		}
		if len(userOptions.AddressBook) > 0 {
			options.AddressBook = userOptions.AddressBook
		}
		if userOptions.Redis != nil {
			options.Redis = userOptions.Redis
		}
	}

	return &Config{options: options}
}

// GetNodeRPCURL 获取JSON-RPC端点
func (c *Config) GetNodeRPCURL() string { return c.options.NodeRPCURL }

// GetNodeWSURL 获取WebSocket端点
func (c *Config) GetNodeWSURL() string { return c.options.NodeWSURL }

// GetDefaultAccount 获取默认发送方地址
func (c *Config) GetDefaultAccount() string { return c.options.DefaultAccount }

// GetAssets 获取资产配置
func (c *Config) GetAssets() []AssetOptions { return c.options.Assets }

// GetAddressBook 获取静态地址簿
func (c *Config) GetAddressBook() []AddressBookEntry { return c.options.AddressBook }

// GetRedis 获取Redis地址簿配置，未启用时返回nil
func (c *Config) GetRedis() *RedisOptions {
	if c.options.Redis == nil || c.options.Redis.Addr == "" {
		return nil
	}
	return c.options.Redis
}
