// shopper 命令行购物车
//
//	shopper list [关键词]
//	shopper add <图书ID> [-n 数量]
//	shopper set <图书ID> <数量>
//	shopper remove <图书ID>
//	shopper show
//	shopper clear
//	shopper checkout --token <access token>
//
// 购物车保存在本地JSON文件，只有list、add、checkout访问服务端
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	appbook "github.com/xiebiao/bookmarket/internal/application/book"
	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	"github.com/xiebiao/bookmarket/internal/domain/cart"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/localfile"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	"github.com/xiebiao/bookmarket/pkg/client"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// catalogAPI 命令行用到的服务端接口
type catalogAPI interface {
	GetBook(ctx context.Context, id uint) (*appbook.BookResponse, error)
	ListBooks(ctx context.Context, query url.Values) (*client.BookPage, error)
	Checkout(ctx context.Context, req dto.CheckoutRequest) (*apporder.CheckoutResponse, error)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("shopper", pflag.ContinueOnError)
	apiURL := fs.String("api", envOr("BOOKMARKET_API", "http://localhost:8080"), "服务地址")
	token := fs.String("token", os.Getenv("BOOKMARKET_TOKEN"), "Access Token（checkout需要）")
	cartPath := fs.String("cart", "", "购物车文件，默认为用户配置目录下的bookmarket/cart.json")
	quantity := fs.IntP("quantity", "n", 1, "add的数量")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *cartPath
	if path == "" {
		p, err := localfile.DefaultCartPath()
		if err != nil {
			return err
		}
		path = p
	}

	store, err := cart.NewStore(localfile.NewCartFile(path))
	if err != nil {
		return err
	}

	s := &shopper{store: store, api: client.New(*apiURL, *token), out: out}
	return s.dispatch(ctx, fs.Args(), *quantity)
}

type shopper struct {
	store *cart.Store
	api   catalogAPI
	out   io.Writer
}

func (s *shopper) dispatch(ctx context.Context, args []string, quantity int) error {
	if len(args) == 0 {
		return errors.New("缺少命令：list | add | set | remove | show | clear | checkout")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "list":
		q := url.Values{}
		if len(rest) > 0 {
			q.Set("q", rest[0])
		}
		return s.list(ctx, q)
	case "add":
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		return s.add(ctx, id, quantity)
	case "set":
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return errors.New("用法：set <图书ID> <数量>")
		}
		qty, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("无效的数量: %s", rest[1])
		}
		if err := s.store.UpdateQuantity(id, qty); err != nil {
			return err
		}
		return s.show()
	case "remove":
		id, err := argID(rest, 0)
		if err != nil {
			return err
		}
		if err := s.store.RemoveFromCart(id); err != nil {
			return err
		}
		return s.show()
	case "show":
		return s.show()
	case "clear":
		return s.store.ClearCart()
	case "checkout":
		return s.checkout(ctx)
	default:
		return fmt.Errorf("未知命令: %s", cmd)
	}
}

func (s *shopper) list(ctx context.Context, q url.Values) error {
	page, err := s.api.ListBooks(ctx, q)
	if err != nil {
		return err
	}
	for _, b := range page.List {
		fmt.Fprintf(s.out, "%4d  %-40s  %-20s  $%s  [%s] x%d\n", b.ID, b.Title, b.Author, b.Price.StringFixed(2), b.Condition, b.Quantity)
	}
	fmt.Fprintf(s.out, "共%d本\n", page.Total)
	return nil
}

func (s *shopper) add(ctx context.Context, id uint, qty int) error {
	b, err := s.api.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.AddToCart(cart.BookSnapshot{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Price:      b.Price,
		CoverImage: b.CoverImage,
		Condition:  b.Condition,
		SellerName: b.Seller.Name,
		Quantity:   b.Quantity,
	}, qty); err != nil {
		return err
	}
	return s.show()
}

func (s *shopper) show() error {
	items := s.store.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "购物车为空")
		return nil
	}
	for _, it := range items {
		fmt.Fprintf(s.out, "%4d  %-40s  %d × $%s = $%s\n", it.Book.ID, it.Book.Title, it.Quantity, it.Book.Price.StringFixed(2), it.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(s.out, "合计(%d件): $%s\n", s.store.Count(), s.store.Total().StringFixed(2))
	return nil
}

// checkout 成功拿到支付地址后清空购物车
func (s *shopper) checkout(ctx context.Context) error {
	items := s.store.Items()
	req := dto.CheckoutRequest{Items: make([]dto.CheckoutItemRequest, len(items))}
	for i, it := range items {
		req.Items[i] = dto.CheckoutItemRequest{BookID: it.Book.ID, Quantity: it.Quantity}
	}

	resp, err := s.api.Checkout(ctx, req)
	if err != nil {
		return err
	}
	if err := s.store.ClearCart(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "订单 %s 已创建，请在浏览器中完成支付：\n%s\n", resp.OrderNo, resp.URL)
	return nil
}

func argID(args []string, i int) (uint, error) {
	if len(args) <= i {
		return 0, errors.New("缺少图书ID")
	}
	id, err := strconv.ParseUint(args[i], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("无效的图书ID: %s", args[i])
	}
	return uint(id), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
