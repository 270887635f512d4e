package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserModel GORM用户模型
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
type UserModel struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:100;not null;comment:姓名"`
	Email        string    `gorm:"uniqueIndex;size:191;not null;comment:邮箱"`
	PasswordHash string    `gorm:"size:255;comment:密码（bcrypt加密），第三方登录为空"`
	Image        string    `gorm:"size:500;comment:头像"`
	Provider     string    `gorm:"size:20;not null;default:credentials;comment:账户来源"`
	ProviderID   string    `gorm:"size:100;comment:第三方账户ID"`
	Role         string    `gorm:"index;size:10;not null;default:buyer;comment:角色(buyer/seller/admin)"`
	CreatedAt    time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 1. 价格使用DECIMAL(10,2)，映射为decimal.Decimal
// 2. SellerID关联用户表，SellerName冗余存储卖家昵称快照
type BookModel struct {
	ID            uint            `gorm:"primaryKey"`
	Title         string          `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author        string          `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Price         decimal.Decimal `gorm:"index:idx_list;type:decimal(10,2);not null;comment:售价"`
	OriginalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:原价"`
	Condition     string          `gorm:"index;size:20;not null;comment:品相"`
	Category      string          `gorm:"index;size:100;not null;comment:分类"`
	Description   string          `gorm:"type:text;comment:描述"`
	CoverImage    string          `gorm:"size:500;comment:封面图片URL"`
	SellerID      uint            `gorm:"index;not null;comment:卖家用户ID"`
	SellerName    string          `gorm:"size:100;comment:卖家昵称快照"`
	Quantity      int             `gorm:"not null;default:1;comment:可售数量"`
	ISBN          string          `gorm:"size:20;comment:ISBN"`
	Language      string          `gorm:"size:50;comment:语言"`
	Pages         int             `gorm:"comment:页数"`
	PublishedYear int             `gorm:"comment:出版年份"`
	CreatedAt     time.Time       `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt     time.Time       `gorm:"comment:更新时间"`
	DeletedAt     gorm.DeletedAt  `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// OrderModel GORM订单模型
// 1. 与OrderItemModel是一对多关系
// 2. PaymentSessionRef唯一，webhook据此定位订单
// 3. 收货信息以JSON存储
type OrderModel struct {
	ID                uint                   `gorm:"primaryKey"`
	OrderNo           string                 `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID            uint                   `gorm:"index;not null;comment:买家用户ID"`
	Total             decimal.Decimal        `gorm:"type:decimal(10,2);not null;comment:订单总金额"`
	Status            string                 `gorm:"index;size:10;not null;default:pending;comment:订单状态(pending/paid)"`
	Shipping          map[string]interface{} `gorm:"serializer:json;type:json;comment:收货信息"`
	PaymentSessionRef string                 `gorm:"uniqueIndex;size:255;not null;comment:支付会话ID"`
	PaymentID         string                 `gorm:"size:255;comment:支付意图ID"`
	PaymentMethod     string                 `gorm:"size:50;comment:支付方式"`
	AmountPaid        decimal.NullDecimal    `gorm:"type:decimal(10,2);comment:实付金额"`
	PaidAt            *time.Time             `gorm:"comment:支付时间"`
	Items             []OrderItemModel       `gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time              `gorm:"index;comment:创建时间"`
	UpdatedAt         time.Time              `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型，记录下单时的图书快照
type OrderItemModel struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    uint            `gorm:"index;not null;comment:订单ID"`
	BookID     uint            `gorm:"index;not null;comment:图书ID"`
	Title      string          `gorm:"size:200;not null;comment:书名快照"`
	Author     string          `gorm:"size:100;comment:作者快照"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:下单时单价"`
	Quantity   int             `gorm:"not null;comment:购买数量"`
	CoverImage string          `gorm:"size:500;comment:封面快照"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// PaymentEventModel 已处理的支付事件，event_id主键保证至多处理一次
type PaymentEventModel struct {
	EventID     string    `gorm:"primaryKey;size:255;comment:支付事件ID"`
	Type        string    `gorm:"size:100;not null;comment:事件类型"`
	SessionID   string    `gorm:"index;size:255;comment:支付会话ID"`
	ProcessedAt time.Time `gorm:"not null;comment:处理时间"`
}

// TableName 指定表名
func (PaymentEventModel) TableName() string {
	return "payment_events"
}
