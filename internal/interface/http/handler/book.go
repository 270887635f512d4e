package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookmarket/internal/application/book"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publishBookUseCase   *appbook.PublishBookUseCase
	listBooksUseCase     *appbook.ListBooksUseCase
	manageBookUseCase    *appbook.ManageBookUseCase
	searchCatalogUseCase *appbook.SearchCatalogUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishBookUseCase *appbook.PublishBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	manageBookUseCase *appbook.ManageBookUseCase,
	searchCatalogUseCase *appbook.SearchCatalogUseCase,
) *BookHandler {
	return &BookHandler{
		publishBookUseCase:   publishBookUseCase,
		listBooksUseCase:     listBooksUseCase,
		manageBookUseCase:    manageBookUseCase,
		searchCatalogUseCase: searchCatalogUseCase,
	}
}

// PublishBook 图书上架
// @Summary      图书上架
// @Description  卖家或管理员上架二手书，原价缺省为1.2倍售价
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookResponse} "上架成功"
// @Failure      400 {object} response.Response "缺少必填字段"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "不是卖家"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.publishBookUseCase.Execute(c.Request.Context(), middleware.Subject(c), req.Fields())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  关键词、分类、品相、价格区间筛选，支持排序与分页
// @Tags         图书
// @Produce      json
// @Param        q         query string false "关键词（标题、作者、简介）"
// @Param        category  query string false "分类"
// @Param        condition query string false "品相"
// @Param        minPrice  query number false "最低价"
// @Param        maxPrice  query number false "最高价"
// @Param        sortBy    query string false "排序" Enums(newest, price-low, price-high, title)
// @Param        page      query int    false "页码" default(1)
// @Param        page_size query int    false "每页数量（最大50）" default(50)
// @Success      200 {object} response.Response{data=response.PageData{list=[]appbook.BookResponse}}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	req, ok := bindListQuery(c)
	if !ok {
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.manageBookUseCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBook 更新图书，只修改提交的字段
// @Summary      更新图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int             true "图书ID"
// @Param        request body dto.BookRequest true "修改的字段"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      403 {object} response.Response "不是该书的卖家"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageBookUseCase.Update(c.Request.Context(), middleware.Subject(c), id, req.Fields())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 下架图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "不是该书的卖家"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.manageBookUseCase.Delete(c.Request.Context(), middleware.Subject(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Book deleted successfully"})
}

// SearchExternal 本地与外部书目合并检索
// @Summary      书目检索
// @Description  本地结果不足limit时由Open Library补齐，外部失败时只返回本地结果
// @Tags         图书
// @Produce      json
// @Param        q         query string false "关键词"
// @Param        category  query string false "分类"
// @Param        condition query string false "品相"
// @Param        minPrice  query number false "最低价"
// @Param        maxPrice  query number false "最高价"
// @Param        sortBy    query string false "排序" Enums(newest, price-low, price-high, title)
// @Param        page      query int    false "页码" default(1)
// @Param        limit     query int    false "数量（最大50）" default(10)
// @Success      200 {object} response.Response{data=appbook.SearchCatalogResponse}
// @Router       /api/v1/books/external [get]
func (h *BookHandler) SearchExternal(c *gin.Context) {
	req, ok := bindListQuery(c)
	if !ok {
		return
	}

	result, err := h.searchCatalogUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListSellerBooks 当前卖家的图书
// @Summary      我的图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appbook.BookResponse}
// @Failure      403 {object} response.Response "不是卖家"
// @Router       /api/v1/seller/books [get]
func (h *BookHandler) ListSellerBooks(c *gin.Context) {
	result, err := h.manageBookUseCase.ListMine(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func bindListQuery(c *gin.Context) (appbook.ListBooksRequest, bool) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return appbook.ListBooksRequest{}, false
	}
	req, err := q.Request()
	if err != nil {
		response.Error(c, err)
		return appbook.ListBooksRequest{}, false
	}
	return req, true
}
