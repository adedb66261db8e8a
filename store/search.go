package store

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// searchDialect adds the full-text match and relevance order for one database.
// filter expects users to be joined on posts.author_id. rank sets the whole
// ORDER BY, id descending included, since gorm drops an expression order when
// plain columns are merged after it.
type searchDialect interface {
	filter(tx *gorm.DB, text string) *gorm.DB
	rank(tx *gorm.DB, text string) *gorm.DB
}

func dialectFor(name string) searchDialect {
	switch name {
	case "postgres":
		return postgresSearch{}
	case "mysql":
		return mysqlSearch{}
	default:
		return likeSearch{}
	}
}

// postgresSearch relies on the GIN expression indexes from the goose migrations.
type postgresSearch struct{}

const pgQuery = "plainto_tsquery('simple', ?)"

func (postgresSearch) filter(tx *gorm.DB, text string) *gorm.DB {
	return tx.Where(
		"to_tsvector('simple', posts.caption) @@ "+pgQuery+
			" OR to_tsvector('simple', COALESCE(users.name, '')) @@ "+pgQuery+
			" OR to_tsvector('simple', users.username) @@ "+pgQuery,
		text, text, text,
	)
}

func (postgresSearch) rank(tx *gorm.DB, text string) *gorm.DB {
	return tx.Order(clause.OrderBy{Expression: clause.Expr{
		SQL:                "ts_rank(to_tsvector('simple', posts.caption), " + pgQuery + ") DESC, posts.id DESC",
		Vars:               []interface{}{text},
		WithoutParentheses: true,
	}})
}

// mysqlSearch relies on the FULLTEXT indexes from the goose migrations.
type mysqlSearch struct{}

const mysqlAgainst = "AGAINST (? IN NATURAL LANGUAGE MODE)"

func (mysqlSearch) filter(tx *gorm.DB, text string) *gorm.DB {
	return tx.Where(
		"MATCH(posts.caption) "+mysqlAgainst+
			" OR MATCH(users.name) "+mysqlAgainst+
			" OR MATCH(users.username) "+mysqlAgainst,
		text, text, text,
	)
}

func (mysqlSearch) rank(tx *gorm.DB, text string) *gorm.DB {
	return tx.Order(clause.OrderBy{Expression: clause.Expr{
		SQL:                "MATCH(posts.caption) " + mysqlAgainst + " DESC, posts.id DESC",
		Vars:               []interface{}{text},
		WithoutParentheses: true,
	}})
}

// likeSearch is a case-insensitive substring fallback for stores without a
// full-text index. Caption hits rank above author-only hits.
type likeSearch struct{}

func (likeSearch) filter(tx *gorm.DB, text string) *gorm.DB {
	pattern := likePattern(text)
	return tx.Where(
		"LOWER(posts.caption) LIKE ? ESCAPE '\\' OR LOWER(users.name) LIKE ? ESCAPE '\\' OR LOWER(users.username) LIKE ? ESCAPE '\\'",
		pattern, pattern, pattern,
	)
}

func (likeSearch) rank(tx *gorm.DB, text string) *gorm.DB {
	return tx.Order(clause.OrderBy{Expression: clause.Expr{
		SQL:                "CASE WHEN LOWER(posts.caption) LIKE ? ESCAPE '\\' THEN 1 ELSE 0 END DESC, posts.id DESC",
		Vars:               []interface{}{likePattern(text)},
		WithoutParentheses: true,
	}})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(text string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
}
