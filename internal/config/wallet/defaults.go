package wallet

// 钱包配置默认值
const (
	// defaultNodeRPCURL 默认连接本地Ganache节点
	defaultNodeRPCURL = "http://localhost:7545"

	// defaultNodeWSURL Ganache在同一端口提供WebSocket
	defaultNodeWSURL = "ws://localhost:7545"

	// defaultNetwork 本地开发链的网络标识
	defaultNetwork = "5777"
)

// createDefaultWalletOptions 创建默认钱包配置
//
// 默认面向本地Ganache开发链：原生币geth，
// 合约代币需要用户配置提供合约地址后才会注册。
func createDefaultWalletOptions() *WalletOptions {
	return &WalletOptions{
		NodeRPCURL: defaultNodeRPCURL,
		NodeWSURL:  defaultNodeWSURL,
		Assets: []AssetOptions{
			{
				ID:      "geth",
				Name:    "Ganache ETH",
				Network: defaultNetwork,
				Kind:    AssetKindNative,
			},
		},
	}
}
