package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mchow01/marketnews/internal/model"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

type ArticleRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewArticleRepository(db *sql.DB, timeout time.Duration) *ArticleRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ArticleRepository{db: db, timeout: timeout}
}

func (r *ArticleRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// SaveArticle inserts one article and sets its generated ID and CreatedAt.
// On error nothing is written and the article ID is left untouched.
func (r *ArticleRepository) SaveArticle(ctx context.Context, article *model.Article) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin article insert: %w", err)
	}
	defer tx.Rollback()

	var id int64
	var createdAt time.Time
	err = tx.QueryRowContext(ctx, `
		INSERT INTO market_news(title, summary, url, source, published_time)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, article.Title, article.Summary, article.URL, article.Source, article.PublishedTime).Scan(&id, &createdAt)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit article insert: %w", err)
	}

	article.ID = id
	article.CreatedAt = createdAt
	return nil
}

// SaveSentiments writes all sentiments of an article in one transaction.
// Either every row is stored or none is.
func (r *ArticleRepository) SaveSentiments(ctx context.Context, articleID int64, sentiments []model.TickerSentiment) (int, error) {
	if len(sentiments) == 0 {
		return 0, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tickers := make([]string, len(sentiments))
	labels := make([]string, len(sentiments))
	scores := make([]string, len(sentiments))
	relevances := make([]string, len(sentiments))
	for i, s := range sentiments {
		tickers[i] = s.Ticker
		labels[i] = s.Label
		scores[i] = s.Score.String()
		relevances[i] = s.Relevance.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin sentiment insert: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO ticker_sentiments(article_id, ticker, sentiment_label, sentiment_score, relevance_score)
		SELECT $1, t.ticker, t.label, t.score, t.relevance
		FROM unnest($2::text[], $3::text[], $4::numeric[], $5::numeric[]) AS t(ticker, label, score, relevance)
	`, articleID, pq.Array(tickers), pq.Array(labels), pq.Array(scores), pq.Array(relevances))
	if err != nil {
		return 0, fmt.Errorf("insert ticker sentiments: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert ticker sentiments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sentiment insert: %w", err)
	}

	for i := range sentiments {
		sentiments[i].ArticleID = articleID
	}

	return int(n), nil
}

// ListArticles returns the newest articles first. A non-empty search limits
// the result to articles with a ticker containing it, case-insensitively.
func (r *ArticleRepository) ListArticles(ctx context.Context, search string, limit, offset int) ([]model.Article, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		rows *sql.Rows
		err  error
	)
	if search = strings.TrimSpace(search); search != "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT m.id, m.title, m.summary, m.url, m.source, m.published_time, m.created_at
			FROM market_news m
			WHERE EXISTS (
				SELECT 1 FROM ticker_sentiments t
				WHERE t.article_id = m.id AND t.ticker ILIKE $1
			)
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT $2 OFFSET $3
		`, likePattern(search), limit, offset)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, title, summary, url, source, published_time, created_at
			FROM market_news
			ORDER BY created_at DESC, id DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}

func (r *ArticleRepository) CountArticles(ctx context.Context, search string) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	var err error
	if search = strings.TrimSpace(search); search != "" {
		err = r.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM market_news m
			WHERE EXISTS (
				SELECT 1 FROM ticker_sentiments t
				WHERE t.article_id = m.id AND t.ticker ILIKE $1
			)
		`, likePattern(search)).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM market_news`).Scan(&total)
	}
	return total, err
}

// GetArticle returns nil, nil when no article has the given id.
func (r *ArticleRepository) GetArticle(ctx context.Context, id int64) (*model.ArticleDetail, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, summary, url, source, published_time, created_at
		FROM market_news
		WHERE id = $1
	`, id)

	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, article_id, ticker, COALESCE(sentiment_label, ''), sentiment_score, relevance_score
		FROM ticker_sentiments
		WHERE article_id = $1
		ORDER BY relevance_score DESC NULLS LAST, id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	detail := &model.ArticleDetail{Article: a, Sentiments: []model.TickerSentiment{}}
	for rows.Next() {
		var s model.TickerSentiment
		var score, relevance decimal.NullDecimal
		if err := rows.Scan(&s.ID, &s.ArticleID, &s.Ticker, &s.Label, &score, &relevance); err != nil {
			return nil, err
		}
		s.Score = score.Decimal
		s.Relevance = relevance.Decimal
		detail.Sentiments = append(detail.Sentiments, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detail, nil
}

// GetTopTickers returns, per article, up to perArticle tickers ordered by
// relevance, highest first.
func (r *ArticleRepository) GetTopTickers(ctx context.Context, ids []int64, perArticle int) (map[int64][]string, error) {
	result := make(map[int64][]string)
	if len(ids) == 0 {
		return result, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT article_id, ticker FROM (
			SELECT article_id, ticker,
				ROW_NUMBER() OVER (PARTITION BY article_id ORDER BY relevance_score DESC NULLS LAST, id ASC) AS rn
			FROM ticker_sentiments
			WHERE article_id = ANY($1)
		) ranked
		WHERE rn <= $2
		ORDER BY article_id, rn
	`, pq.Array(ids), perArticle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var ticker string
		if err := rows.Scan(&id, &ticker); err != nil {
			return nil, err
		}
		result[id] = append(result[id], ticker)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ArticleRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (model.Article, error) {
	var a model.Article
	var summary, url, source, published sql.NullString
	err := row.Scan(&a.ID, &a.Title, &summary, &url, &source, &published, &a.CreatedAt)
	a.Summary = summary.String
	a.URL = url.String
	a.Source = source.String
	a.PublishedTime = published.String
	return a, err
}

// likePattern escapes LIKE wildcards so the search matches literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
