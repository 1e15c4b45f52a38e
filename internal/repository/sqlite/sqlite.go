package sqlite

import (
	"io"
	"time"

	"log/slog"

	"github.com/slrhq/hireops/internal/db"
	"github.com/slrhq/hireops/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.CandidateRepo = (*SQLiteRepo)(nil)
var _ repository.CommentRepo = (*SQLiteRepo)(nil)
var _ repository.OpeningRepo = (*SQLiteRepo)(nil)
var _ repository.OpeningRequestRepo = (*SQLiteRepo)(nil)
var _ repository.OfferRepo = (*SQLiteRepo)(nil)
var _ repository.PersonRepo = (*SQLiteRepo)(nil)
var _ repository.SchemaRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
