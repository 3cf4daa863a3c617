package session

import (
	"sync"

	"wallet-session/internal/model"
)

// State 是暴露给界面的会话状态
type State struct {
	ConnectedAccount string                    `json:"connectedAccount"`
	IsLoading        bool                      `json:"isLoading"`
	TransactionCount *uint64                   `json:"transactionCount"`
	FormData         model.DraftTransaction    `json:"formData"`
	Transactions     []model.TransactionRecord `json:"transactions"`
}

// clone 深拷贝，订阅者拿到的快照互不影响
func (s State) clone() State {
	out := s
	if s.TransactionCount != nil {
		count := *s.TransactionCount
		out.TransactionCount = &count
	}
	if s.Transactions != nil {
		out.Transactions = append([]model.TransactionRecord(nil), s.Transactions...)
	}
	return out
}

// Store 是可观察的会话状态: 每次 Update 之后通知所有订阅者
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[uint64]chan State
	nextID uint64

	// inflight 是已广播、还没看到确认的交易数; IsLoading = inflight > 0
	inflight int
}

func NewStore(initial State) *Store {
	return &Store{
		state: initial.clone(),
		subs:  make(map[uint64]chan State),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Update applies fn under the store lock and notifies subscribers.
func (s *Store) Update(fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	s.state.IsLoading = s.inflight > 0
	snap := s.state.clone()
	s.notify(snap)
	return snap
}

// Subscribe 返回一个快照 channel 和取消订阅函数
// channel 缓冲为 1，只保留最新状态，慢消费者不会阻塞写入方
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	ch <- s.state.clone()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) beginLoading() {
	s.Update(func(*State) { s.inflight++ })
}

func (s *Store) endLoading() {
	s.Update(func(*State) {
		if s.inflight > 0 {
			s.inflight--
		}
	})
}

// notify 需要持有 s.mu
func (s *Store) notify(snap State) {
	for _, ch := range s.subs {
		select {
		case <-ch: // 丢掉还没被读走的旧快照
		default:
		}
		ch <- snap.clone()
	}
}
