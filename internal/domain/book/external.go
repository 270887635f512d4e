package book

import "context"

// ExternalSellerName 外部条目统一展示的卖家
const ExternalSellerName = "BookTreasure Store"

// ExternalListing 外部书目中的条目，ID为0，Key为外部标识
type ExternalListing struct {
	Key string
	Book
}

// ExternalCatalog 外部书目检索
type ExternalCatalog interface {
	// Search 返回条目与外部结果总数
	Search(ctx context.Context, query string, page, limit int) ([]*ExternalListing, int64, error)
}
