package repository

import (
	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/matricula-api/internal/models"
)

// psql builds statements with PostgreSQL $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func orDB(exec sqlx.ExtContext, db *sqlx.DB) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

func paginate(builder squirrel.SelectBuilder, page, size int) squirrel.SelectBuilder {
	page, size = models.NormalizePage(page, size)
	return builder.Limit(uint64(size)).Offset(uint64((page - 1) * size))
}
