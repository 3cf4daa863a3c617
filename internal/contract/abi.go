package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// TransactionsABI 是已部署 Transactions 合约的接口定义
const TransactionsABI = `[
  {"anonymous":false,"inputs":[
    {"indexed":false,"internalType":"address","name":"from","type":"address"},
    {"indexed":false,"internalType":"address","name":"receiver","type":"address"},
    {"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"},
    {"indexed":false,"internalType":"string","name":"message","type":"string"},
    {"indexed":false,"internalType":"uint256","name":"timestamp","type":"uint256"},
    {"indexed":false,"internalType":"string","name":"keyword","type":"string"}
  ],"name":"Transfer","type":"event"},
  {"inputs":[
    {"internalType":"address payable","name":"receiver","type":"address"},
    {"internalType":"uint256","name":"amount","type":"uint256"},
    {"internalType":"string","name":"message","type":"string"},
    {"internalType":"string","name":"keyword","type":"string"}
  ],"name":"addToBlockchain","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"getAllTransactions","outputs":[
    {"components":[
      {"internalType":"address","name":"sender","type":"address"},
      {"internalType":"address","name":"receiver","type":"address"},
      {"internalType":"uint256","name":"amount","type":"uint256"},
      {"internalType":"string","name":"message","type":"string"},
      {"internalType":"uint256","name":"timestamp","type":"uint256"},
      {"internalType":"string","name":"keyword","type":"string"}
    ],"internalType":"struct Transactions.TransferStruct[]","name":"","type":"tuple[]"}
  ],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"getTransactionCounter","outputs":[
    {"internalType":"uint256","name":"","type":"uint256"}
  ],"stateMutability":"view","type":"function"}
]`

// Contract method names
const (
	MethodAddToBlockchain       = "addToBlockchain"
	MethodGetAllTransactions    = "getAllTransactions"
	MethodGetTransactionCounter = "getTransactionCounter"
)

// parsedABI 只解析一次; ABI 是常量，解析失败属于编程错误
var parsedABI = mustParseABI(TransactionsABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("contract: invalid Transactions ABI: " + err.Error())
	}
	return parsed
}

// ABI returns the parsed Transactions contract ABI. Callers must not modify it.
func ABI() *abi.ABI {
	return &parsedABI
}
