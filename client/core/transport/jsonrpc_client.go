package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// JSONRPCClient JSON-RPC 2.0 客户端实现
type JSONRPCClient struct {
	endpoint   string
	httpClient *http.Client
	nextID     atomic.Uint64

	// 回执轮询间隔
	receiptPollInterval time.Duration
}

// 确保实现接口
var _ Client = (*JSONRPCClient)(nil)

// NewJSONRPCClient 创建JSON-RPC客户端
func NewJSONRPCClient(endpoint string, timeout time.Duration) *JSONRPCClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &JSONRPCClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		receiptPollInterval: 500 * time.Millisecond,
	}
}

// jsonrpcRequest JSON-RPC 2.0 请求
type jsonrpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

// jsonrpcResponse JSON-RPC 2.0 响应
type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
	ID      uint64          `json:"id"`
}

// jsonrpcError JSON-RPC 2.0 错误
type jsonrpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// call 统一的JSON-RPC调用方法
func (c *JSONRPCClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	req := &jsonrpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var rpcResp jsonrpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}

// ChainID 获取链ID
func (c *JSONRPCClient) ChainID(ctx context.Context) (string, error) {
	var result string
	if err := c.call(ctx, "eth_chainId", []interface{}{}, &result); err != nil {
		return "", fmt.Errorf("get chain id: %w", err)
	}
	return result, nil
}

// BlockNumber 获取最新区块高度
func (c *JSONRPCClient) BlockNumber(ctx context.Context) (uint64, error) {
	var result hexutil.Uint64
	if err := c.call(ctx, "eth_blockNumber", []interface{}{}, &result); err != nil {
		return 0, fmt.Errorf("get block number: %w", err)
	}
	return uint64(result), nil
}

// GetBalance 获取账户余额（wei）
func (c *JSONRPCClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	var result string
	if err := c.call(ctx, "eth_getBalance", []interface{}{address, "latest"}, &result); err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	balance, err := hexutil.DecodeBig(result)
	if err != nil {
		return nil, fmt.Errorf("decode balance %q: %w", result, err)
	}
	return balance, nil
}

// Call 模拟合约调用(不上链)
func (c *JSONRPCClient) Call(ctx context.Context, to string, data []byte) ([]byte, error) {
	callArgs := map[string]interface{}{
		"to":   to,
		"data": hexutil.Encode(data),
	}

	var result string
	if err := c.call(ctx, "eth_call", []interface{}{callArgs, "latest"}, &result); err != nil {
		return nil, fmt.Errorf("eth_call: %w", err)
	}

	out, err := hexutil.Decode(result)
	if err != nil {
		return nil, fmt.Errorf("decode call result: %w", err)
	}
	return out, nil
}

// SendTransaction 提交转账（节点内部完成签名→广播）
func (c *JSONRPCClient) SendTransaction(ctx context.Context, tx *SendTxRequest) (string, error) {
	txArgs := map[string]interface{}{
		"from": tx.From,
		"to":   tx.To,
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		txArgs["value"] = hexutil.EncodeBig(tx.Value)
	}
	if len(tx.Data) > 0 {
		txArgs["data"] = hexutil.Encode(tx.Data)
	}

	var txHash string
	if err := c.call(ctx, "eth_sendTransaction", []interface{}{txArgs}, &txHash); err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	return txHash, nil
}

// rpcReceipt 回执的线上格式
type rpcReceipt struct {
	TransactionHash string         `json:"transactionHash"`
	BlockNumber     hexutil.Uint64 `json:"blockNumber"`
	Status          hexutil.Uint64 `json:"status"`
}

// GetTransactionReceipt 获取交易回执，交易未上链时返回 nil
func (c *JSONRPCClient) GetTransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "eth_getTransactionReceipt", []interface{}{txHash}, &raw); err != nil {
		return nil, fmt.Errorf("get receipt: %w", err)
	}

	// 节点对未上链交易返回 null
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var receipt rpcReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshal receipt: %w", err)
	}

	return &Receipt{
		TransactionHash: receipt.TransactionHash,
		BlockNumber:     uint64(receipt.BlockNumber),
		Status:          uint64(receipt.Status),
	}, nil
}

// WaitForReceipt 等待交易上链并返回回执
func (c *JSONRPCClient) WaitForReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	ticker := time.NewTicker(c.receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.GetTransactionReceipt(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for receipt %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}
