package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// LikerRow 点赞用户查询结果
type LikerRow struct {
	UserID      string    `db:"user_id"`
	Handle      string    `db:"handle"`
	DisplayName string    `db:"display_name"`
	Role        string    `db:"role"`
	Verified    bool      `db:"verified"`
	LikedAt     time.Time `db:"liked_at"`
}

// LikersQuery 点赞用户列表的只读查询，直接写 SQL 连表
type LikersQuery interface {
	ListLikers(ctx context.Context, postID string, offset, limit int) ([]LikerRow, int64, error)
}

type likersQuery struct {
	db *sqlx.DB
}

func NewLikersQuery(db *sqlx.DB) LikersQuery {
	return &likersQuery{db: db}
}

const (
	// 总数与实时点赞数同源，只统计 likes 表
	countLikersSQL = `SELECT COUNT(*) FROM likes l WHERE l.post_id = ?`

	// users 由身份子系统维护，缺失的用户仍然列出，只是没有展示信息
	listLikersSQL = `SELECT l.user_id AS user_id,
       COALESCE(u.handle, '') AS handle,
       COALESCE(u.display_name, '') AS display_name,
       COALESCE(u.role, '') AS role,
       COALESCE(u.verified, FALSE) AS verified,
       l.created_at AS liked_at
FROM likes l
LEFT JOIN users u ON u.id = l.user_id
WHERE l.post_id = ?
ORDER BY l.created_at DESC, l.user_id ASC
LIMIT ? OFFSET ?`
)

// ListLikers 按点赞时间倒序分页
func (q *likersQuery) ListLikers(ctx context.Context, postID string, offset, limit int) ([]LikerRow, int64, error) {
	var total int64
	if err := q.db.GetContext(ctx, &total, q.db.Rebind(countLikersSQL), postID); err != nil {
		return nil, 0, err
	}
	// 超出最后一页时不再查询
	if total == 0 || int64(offset) >= total {
		return []LikerRow{}, total, nil
	}

	rows := []LikerRow{}
	if err := q.db.SelectContext(ctx, &rows, q.db.Rebind(listLikersSQL), postID, limit, offset); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
