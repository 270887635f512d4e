// Package memory 进程内持久化驱动
//
// database.driver=memory时使用，供本地开发与端到端测试。
// 所有仓储共享一个DB，Transaction串行执行并在出错时恢复快照。
// 事务外的写入同样需要txMu，否则会被并发事务的回滚覆盖。
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/order"
	"github.com/xiebiao/bookmarket/internal/domain/user"
)

// DB 进程内数据
type DB struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users  map[uint]*user.User
	books  map[uint]*book.Book
	orders map[uint]*order.Order
	events map[string]order.ProcessedPaymentEvent

	seq struct{ user, book, order uint }
}

// NewDB 创建空数据集
func NewDB() *DB {
	return &DB{
		users:  make(map[uint]*user.User),
		books:  make(map[uint]*book.Book),
		orders: make(map[uint]*order.Order),
		events: make(map[string]order.ProcessedPaymentEvent),
	}
}

type snapshot struct {
	users  map[uint]*user.User
	books  map[uint]*book.Book
	orders map[uint]*order.Order
	events map[string]order.ProcessedPaymentEvent
	seq    struct{ user, book, order uint }
}

// 仓储写入时总是替换指针，浅拷贝map即可
func (db *DB) snapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return snapshot{
		users:  maps.Clone(db.users),
		books:  maps.Clone(db.books),
		orders: maps.Clone(db.orders),
		events: maps.Clone(db.events),
		seq:    db.seq,
	}
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users, db.books, db.orders, db.events, db.seq = s.users, s.books, s.orders, s.events, s.seq
}

type txKey struct{}

func (db *DB) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*DB)
	return owner == db
}

// lockWrite 写锁；事务外还要等待进行中的事务结束
func (db *DB) lockWrite(ctx context.Context) func() {
	if db.inTx(ctx) {
		db.mu.Lock()
		return db.mu.Unlock
	}
	db.txMu.Lock()
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		db.txMu.Unlock()
	}
}

// TxManager 进程内事务
type TxManager struct {
	db *DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction fn返回error时恢复到执行前的数据
// fn内的写入必须使用传入的ctx；嵌套调用并入外层事务
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.db.inTx(ctx) {
		return fn(ctx)
	}

	m.db.txMu.Lock()
	defer m.db.txMu.Unlock()

	snap := m.db.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, m.db)); err != nil {
		m.db.restore(snap)
		return err
	}
	return nil
}
