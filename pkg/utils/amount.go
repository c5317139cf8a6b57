// Package utils 提供金额解析与格式化等通用工具
package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// 金额单位常量
const (
	// DecimalPlaces 主币小数位数（以太系资产以wei计量）
	DecimalPlaces = 18
)

var (
	// weiPerEther 1个显示单位对应的最小单位数量（10^18）
	weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(DecimalPlaces), nil)
)

// ParseDecimalToWei 将显示单位的小数金额字符串解析为wei（最小单位）
//
// 解析策略：
//  1. 使用big.Rat进行无损解析，避免浮点精度问题
//  2. 拒绝负数
//  3. 小数位数不能超过18位
//
// 参数：
//   - amountStr: 金额字符串（支持小数，如 "1.5"）
//
// 返回：
//   - *big.Int: wei单位的金额
//   - error: 解析或精度错误
func ParseDecimalToWei(amountStr string) (*big.Int, error) {
	if amountStr = strings.TrimSpace(amountStr); amountStr == "" {
		return new(big.Int), nil
	}

	// 使用big.Rat进行无损解析
	rat, ok := new(big.Rat).SetString(amountStr)
	if !ok {
		return nil, fmt.Errorf("金额格式无效: %s", amountStr)
	}

	// 检查负数
	if rat.Sign() < 0 {
		return nil, fmt.Errorf("金额不能为负数: %s", amountStr)
	}

	// 乘以10^18转换为wei
	weiRat := new(big.Rat).Mul(rat, new(big.Rat).SetInt(weiPerEther))

	// 检查是否为整数（小数位数不能超过18位）
	if !weiRat.IsInt() {
		return nil, fmt.Errorf("小数精度超出限制（最多%d位）: %s", DecimalPlaces, amountStr)
	}

	return new(big.Int).Set(weiRat.Num()), nil
}

// FormatWeiToDecimal 将wei金额格式化为小数字符串
//
// 输出格式：整数部分 + "." + 小数部分（去除末尾0）
// 例如：1500000000000000000 wei → "1.5"，10^18 wei → "1.0"
//
// 参数：
//   - weiAmount: wei单位的金额
//
// 返回：
//   - string: 小数格式的金额字符串
func FormatWeiToDecimal(weiAmount *big.Int) string {
	if weiAmount == nil {
		return "0.0"
	}

	integerPart := new(big.Int)
	fractionalPart := new(big.Int)
	integerPart.QuoRem(weiAmount, weiPerEther, fractionalPart)

	if fractionalPart.Sign() == 0 {
		return fmt.Sprintf("%s.0", integerPart.String())
	}

	// 格式化为18位小数并去除末尾0
	fractionalStr := fmt.Sprintf("%018s", fractionalPart.String())
	fractionalStr = strings.TrimRight(fractionalStr, "0")

	return fmt.Sprintf("%s.%s", integerPart.String(), fractionalStr)
}

// CompareDecimal 以数值方式比较两个小数金额字符串
//
// 返回 -1/0/1 分别表示 a<b / a=b / a>b；任一字符串无法解析时返回错误。
func CompareDecimal(a, b string) (int, error) {
	ratA, ok := new(big.Rat).SetString(strings.TrimSpace(a))
	if !ok {
		return 0, fmt.Errorf("金额格式无效: %s", a)
	}
	ratB, ok := new(big.Rat).SetString(strings.TrimSpace(b))
	if !ok {
		return 0, fmt.Errorf("金额格式无效: %s", b)
	}
	return ratA.Cmp(ratB), nil
}
