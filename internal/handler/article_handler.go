package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mchow01/marketnews/internal/model"
)

const (
	perPage         = 30
	tickersPerRow   = 5
	createdAtLayout = time.RFC3339
)

type ArticleStore interface {
	ListArticles(ctx context.Context, search string, limit, offset int) ([]model.Article, error)
	CountArticles(ctx context.Context, search string) (int, error)
	GetArticle(ctx context.Context, id int64) (*model.ArticleDetail, error)
	GetTopTickers(ctx context.Context, ids []int64, perArticle int) (map[int64][]string, error)
	Ping(ctx context.Context) error
}

type ArticleHandler struct {
	repository ArticleStore
	logger     *slog.Logger
	now        func() time.Time
}

func NewArticleHandler(repository ArticleStore, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{repository: repository, logger: logger, now: time.Now}
}

type articlePage struct {
	Items []model.ArticleListItem
	Query string
	Page  int
	Total int
}

func (p articlePage) offset() int {
	return (p.Page - 1) * perPage
}

func (p articlePage) hasNext() bool {
	return p.offset()+len(p.Items) < p.Total
}

func (h *ArticleHandler) loadPage(c *gin.Context) (articlePage, error) {
	p := articlePage{
		Query: strings.TrimSpace(c.Query("q")),
		Page:  h.getQueryPage(c),
	}
	ctx := c.Request.Context()

	articles, err := h.repository.ListArticles(ctx, p.Query, perPage, p.offset())
	if err != nil {
		h.logger.Error("error fetching articles", "error", err, "query", p.Query, "page", p.Page)
		return p, err
	}

	p.Total, err = h.repository.CountArticles(ctx, p.Query)
	if err != nil {
		h.logger.Error("error counting articles", "error", err, "query", p.Query)
		return p, err
	}

	ids := make([]int64, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}

	tickerMap, err := h.repository.GetTopTickers(ctx, ids, tickersPerRow)
	if err != nil {
		h.logger.Error("error fetching tickers", "error", err)
		return p, err
	}

	for _, a := range articles {
		p.Items = append(p.Items, model.ArticleListItem{Article: a, Tickers: tickerMap[a.ID]})
	}

	return p, nil
}

// Index renders the article list, newest first.
func (h *ArticleHandler) Index(c *gin.Context) {
	p, err := h.loadPage(c)
	if err != nil {
		c.String(http.StatusInternalServerError, "Database error")
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Articles": p.Items,
		"Query":    p.Query,
		"Page":     p.Page,
		"Offset":   p.offset(),
		"HasNext":  p.hasNext(),
	})
}

func (h *ArticleHandler) ArticleDetail(c *gin.Context) {
	article, status := h.loadArticle(c)
	if article == nil {
		c.String(status, http.StatusText(status))
		return
	}

	c.HTML(http.StatusOK, "article.html", gin.H{"Article": article})
}

func (h *ArticleHandler) APIList(c *gin.Context) {
	p, err := h.loadPage(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	now := h.now()
	articles := make([]ArticleResponse, 0, len(p.Items))
	for _, item := range p.Items {
		articles = append(articles, toArticleResponse(item.Article, item.Tickers, now))
	}

	c.JSON(http.StatusOK, ArticleListResponse{
		Articles: articles,
		Total:    p.Total,
		Page:     p.Page,
		PerPage:  perPage,
		Query:    p.Query,
	})
}

func (h *ArticleHandler) APIGet(c *gin.Context) {
	article, status := h.loadArticle(c)
	if article == nil {
		c.JSON(status, gin.H{"error": errorMessage(status)})
		return
	}

	tickers := make([]string, 0, len(article.Sentiments))
	sentiments := make([]SentimentResponse, 0, len(article.Sentiments))
	for _, s := range article.Sentiments {
		tickers = append(tickers, s.Ticker)
		sentiments = append(sentiments, SentimentResponse{
			Ticker:    s.Ticker,
			Label:     s.Label,
			Score:     s.Score,
			Relevance: s.Relevance,
		})
	}

	c.JSON(http.StatusOK, ArticleDetailResponse{
		ArticleResponse: toArticleResponse(article.Article, tickers, h.now()),
		Sentiments:      sentiments,
	})
}

func (h *ArticleHandler) GetHealth(c *gin.Context) {
	err := h.repository.Ping(c.Request.Context())
	if err != nil {
		h.logger.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

// loadArticle returns the article for the :id parameter, or nil and the
// status code to answer with.
func (h *ArticleHandler) loadArticle(c *gin.Context) (*model.ArticleDetail, int) {
	id := c.Param("id")

	articleID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || articleID < 1 {
		h.logger.Warn("invalid article id", "id", id)
		return nil, http.StatusBadRequest
	}

	article, err := h.repository.GetArticle(c.Request.Context(), articleID)
	if err != nil {
		h.logger.Error("error fetching article", "error", err, "article_id", articleID)
		return nil, http.StatusInternalServerError
	}

	if article == nil {
		return nil, http.StatusNotFound
	}

	return article, http.StatusOK
}

func toArticleResponse(a model.Article, tickers []string, now time.Time) ArticleResponse {
	if tickers == nil {
		tickers = []string{}
	}
	return ArticleResponse{
		ID:            a.ID,
		Title:         a.Title,
		Summary:       a.Summary,
		URL:           a.URL,
		Source:        a.Source,
		PublishedTime: a.PublishedTime,
		PublishedAgo:  timeAgo(a.PublishedTime, now),
		CreatedAt:     a.CreatedAt.Format(createdAtLayout),
		Tickers:       tickers,
	}
}

func errorMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid article id"
	case http.StatusNotFound:
		return "Article not found"
	default:
		return "Database error"
	}
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	param := c.Query(name)

	if param == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(param)
	if err != nil {
		return defaultValue
	}

	return parsedValue
}

func (h *ArticleHandler) getQueryPage(c *gin.Context) int {
	page := getQueryInt("page", 1, c)
	if page < 1 {
		h.logger.Warn("invalid query parameter, using default", "param", "page", "value", c.Query("page"), "default", 1)
		return 1
	}
	return page
}
