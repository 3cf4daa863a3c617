package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"wallet-session/internal/contract"
	"wallet-session/internal/event"
	"wallet-session/internal/model"
	"wallet-session/internal/provider"
	"wallet-session/internal/service/mq"
	"wallet-session/pkg/cache"
	"wallet-session/pkg/errno"
	"wallet-session/pkg/logger"
	"wallet-session/pkg/monitor"
	"wallet-session/pkg/units"
)

// CounterKey 是持久化存储里保存最后一次交易计数的 key
const CounterKey = "transactionCount"

// DefaultGasLimit 是原生转账使用的固定 gas (21000)
const DefaultGasLimit = "0x5208"

// Options 是 Manager 的依赖
type Options struct {
	// Provider 为 nil 表示运行环境里没有钱包
	Provider        provider.Provider
	ContractAddress common.Address
	GasLimit        string
	PollInterval    time.Duration

	// Counter 持久化交易计数 (浏览器里的 localStorage)
	Counter  cache.Cache
	Notifier Notifier

	// Producer/Topic 可选，交易确认后发布事件
	Producer mq.Producer
	Topic    string

	Log *zap.Logger
}

// Manager 管理钱包连接状态、交易表单和交易列表
type Manager struct {
	provider     provider.Provider
	contractAddr common.Address
	gasLimit     string
	pollInterval time.Duration

	store    *Store
	counter  cache.Cache
	notifier Notifier
	producer mq.Producer
	topic    string
	log      *zap.Logger
}

func NewManager(opts Options) *Manager {
	log := opts.Log
	if log == nil {
		log = logger.Log
	}
	gas := opts.GasLimit
	if gas == "" {
		gas = DefaultGasLimit
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{Log: log}
	}
	counter := opts.Counter
	if counter == nil {
		counter = cache.NewMemoryCache(0, time.Hour)
	}

	return &Manager{
		provider:     opts.Provider,
		contractAddr: opts.ContractAddress,
		gasLimit:     gas,
		pollInterval: opts.PollInterval,
		store:        NewStore(State{}),
		counter:      counter,
		notifier:     notifier,
		producer:     opts.Producer,
		topic:        opts.Topic,
		log:          log,
	}
}

// Store exposes the observable session state.
func (m *Manager) Store() *Store {
	return m.store
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	return m.store.Snapshot()
}

// ConnectWallet 请求钱包授权 (可能弹窗)，成功后记录第一个账户
func (m *Manager) ConnectWallet(ctx context.Context) error {
	if err := m.requireProvider(ctx, "connectWallet"); err != nil {
		return err
	}

	accounts, err := provider.RequestAccounts(ctx, m.provider)
	if err != nil {
		return m.fail("connectWallet", err)
	}
	if len(accounts) == 0 {
		return m.fail("connectWallet", errno.New(errno.ErrNoAccounts, "connectWallet", nil))
	}

	m.store.Update(func(s *State) { s.ConnectedAccount = accounts[0] })
	monitor.ObserveConnection("connect")
	m.log.Info("wallet connected", zap.String("account", accounts[0]))
	return nil
}

// CheckIfWalletIsConnected 静默检查已授权账户; 有的话顺便拉取交易历史
func (m *Manager) CheckIfWalletIsConnected(ctx context.Context) error {
	if err := m.requireProvider(ctx, "checkIfWalletIsConnected"); err != nil {
		return err
	}

	accounts, err := provider.Accounts(ctx, m.provider)
	if err != nil {
		return m.fail("checkIfWalletIsConnected", err)
	}
	if len(accounts) == 0 {
		m.log.Info("no accounts found")
		return nil
	}

	m.store.Update(func(s *State) { s.ConnectedAccount = accounts[0] })
	monitor.ObserveConnection("check")
	m.log.Info("wallet already authorized", zap.String("account", accounts[0]))

	// 历史拉取失败只记日志, 不影响连接检查本身
	_ = m.GetAllTransactions(ctx)
	return nil
}

// CheckIfTransactionExist 读取合约全局计数并覆盖写入持久化存储
// 会话状态不变
func (m *Manager) CheckIfTransactionExist(ctx context.Context) error {
	if m.provider == nil {
		m.log.Debug("skip transaction counter check: no provider")
		return errno.New(errno.ErrMissingProvider, "checkIfTransactionExist", nil)
	}

	count, err := m.contract().TransactionCounter(ctx)
	if err != nil {
		return m.fail("checkIfTransactionExist", err)
	}

	if err := m.counter.Set(ctx, CounterKey, strconv.FormatUint(count, 10), 0); err != nil {
		return m.fail("checkIfTransactionExist", errno.New(errno.ErrStorage, "store "+CounterKey, err))
	}
	m.log.Debug("transaction counter cached", zap.Uint64("count", count))
	return nil
}

// HandleChange 把一个字段合并进交易表单，其它字段不变
func (m *Manager) HandleChange(field, value string) error {
	// 未知字段直接拒绝, 不产生状态通知
	if !model.IsFormField(field) {
		return errno.New(errno.ErrUnknownField, "handleChange", errors.New(field))
	}
	m.store.Update(func(s *State) {
		s.FormData, _ = s.FormData.With(field, value)
	})
	return nil
}

// SetFormData replaces the whole draft transaction.
func (m *Manager) SetFormData(draft model.DraftTransaction) {
	m.store.Update(func(s *State) { s.FormData = draft })
}

// SendTransaction 发送原生转账，再调用合约记录元数据，等待确认后刷新计数
func (m *Manager) SendTransaction(ctx context.Context) error {
	if err := m.requireProvider(ctx, "sendTransaction"); err != nil {
		return err
	}

	snap := m.store.Snapshot()
	from := snap.ConnectedAccount
	draft := snap.FormData
	if from == "" {
		return m.fail("sendTransaction", errno.New(errno.ErrNotConnected, "sendTransaction", nil))
	}
	if !common.IsHexAddress(draft.AddressTo) {
		return m.fail("sendTransaction", errno.New(errno.ErrInvalidAddress, "sendTransaction", errors.New(draft.AddressTo)))
	}

	// a. ether -> wei
	wei, err := units.ParseEther(draft.Amount)
	if err != nil {
		return m.fail("sendTransaction", errno.New(errno.ErrInvalidAmount, "sendTransaction", err))
	}
	to := common.HexToAddress(draft.AddressTo)

	// b. 原生转账，由钱包签名广播
	transferHash, err := provider.SendTransaction(ctx, m.provider, provider.TransactionArgs{
		From:  from,
		To:    draft.AddressTo,
		Gas:   m.gasLimit,
		Value: (*hexutil.Big)(wei),
	})
	if err != nil {
		return m.fail("sendTransaction", err)
	}
	m.log.Info("value transfer broadcast", zap.String("hash", transferHash), zap.String("to", to.Hex()))

	// c. 合约记录，拿到待确认交易
	handle := contract.New(m.provider, m.contractAddr, common.HexToAddress(from), m.pollInterval)
	pending, err := handle.AddToBlockchain(ctx, to, wei, draft.Message, draft.Keyword)
	if err != nil {
		// 转账已经成功但记录失败: 不做补偿
		return m.fail("sendTransaction", err)
	}

	// d-f. 等待确认
	if err := m.awaitConfirmation(ctx, pending); err != nil {
		return m.fail("sendTransaction", err)
	}

	// g. 刷新计数
	count, err := handle.TransactionCounter(ctx)
	if err != nil {
		return m.fail("sendTransaction", err)
	}
	m.store.Update(func(s *State) { s.TransactionCount = &count })
	monitor.ObserveSubmitted("confirmed")

	m.publishRecorded(ctx, event.TransactionRecordedEvent{
		TxHash:       pending.Hash.Hex(),
		TransferHash: transferHash,
		From:         common.HexToAddress(from).Hex(),
		To:           to.Hex(),
		AmountWei:    wei.String(),
		Message:      draft.Message,
		Keyword:      draft.Keyword,
		Counter:      count,
	})
	return nil
}

// awaitConfirmation 在等待期间保持 isLoading; 任何退出路径都会复位
func (m *Manager) awaitConfirmation(ctx context.Context, pending *contract.PendingTransaction) error {
	m.store.beginLoading()
	monitor.ObservePending(1)
	started := time.Now()
	defer func() {
		m.store.endLoading()
		monitor.ObservePending(-1)
	}()

	m.log.Info("loading", zap.String("hash", pending.Hash.Hex()))
	if _, err := pending.Wait(ctx); err != nil {
		return err
	}
	monitor.ObserveConfirmation(started)
	m.log.Info("success", zap.String("hash", pending.Hash.Hex()))
	return nil
}

// GetAllTransactions 拉取链上全部交易并整体替换会话里的列表
// 失败时状态保持不变
func (m *Manager) GetAllTransactions(ctx context.Context) error {
	if err := m.requireProvider(ctx, "getAllTransactions"); err != nil {
		return err
	}

	transfers, err := m.contract().AllTransactions(ctx)
	if err != nil {
		return m.fail("getAllTransactions", err)
	}

	records := make([]model.TransactionRecord, 0, len(transfers))
	for _, t := range transfers {
		records = append(records, model.NewTransactionRecord(t))
	}

	m.store.Update(func(s *State) { s.Transactions = records })
	m.log.Debug("transactions fetched", zap.Int("count", len(records)))
	return nil
}

// CachedCounter returns the transaction counter last written to the
// durable store; cache.ErrCacheMiss when nothing was stored yet.
func (m *Manager) CachedCounter(ctx context.Context) (uint64, error) {
	var raw string
	if err := m.counter.Get(ctx, CounterKey, &raw); err != nil {
		return 0, err
	}
	count, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errno.New(errno.ErrStorage, "parse "+CounterKey, err)
	}
	return count, nil
}

// restoreCachedCounter 用持久化的计数初始化会话状态
func (m *Manager) restoreCachedCounter(ctx context.Context) {
	count, err := m.CachedCounter(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			m.log.Warn("read cached transaction counter failed", zap.Error(err))
		}
		return
	}
	m.store.Update(func(s *State) { s.TransactionCount = &count })
}

// contract 每次调用都重新绑定，签名账户取当前连接的账户
func (m *Manager) contract() *contract.Handle {
	from := m.store.Snapshot().ConnectedAccount
	var signer common.Address
	if common.IsHexAddress(from) {
		signer = common.HexToAddress(from)
	}
	return contract.New(m.provider, m.contractAddr, signer, m.pollInterval)
}

func (m *Manager) requireProvider(ctx context.Context, op string) error {
	if m.provider != nil {
		return nil
	}
	m.notifier.Notify(ctx, MissingProviderNotice)
	return errno.New(errno.ErrMissingProvider, op, nil)
}

// fail 记录日志和指标，返回带分类的错误
func (m *Manager) fail(op string, err error) error {
	err = provider.Classify(op, err)
	code := errno.CodeOf(err)
	m.log.Error(op+" failed", zap.Int("code", code.Code), zap.Error(err))
	monitor.ObserveFailure(op, code.Code)
	if op == "sendTransaction" {
		monitor.ObserveSubmitted("failed")
	}
	return err
}

func (m *Manager) publishRecorded(ctx context.Context, evt event.TransactionRecordedEvent) {
	if m.producer == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		m.log.Error("marshal transaction event failed", zap.Error(err))
		return
	}
	if err := m.producer.Publish(ctx, m.topic, evt.From, payload); err != nil {
		m.log.Warn("publish transaction event failed", zap.String("topic", m.topic), zap.Error(err))
	}
}
