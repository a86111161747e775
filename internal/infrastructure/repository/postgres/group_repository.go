package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	groupdomain "github.com/riskibarqy/football-brain/internal/domain/group"
)

type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

type groupRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	InviteCode string    `db:"invite_code"`
	CreatedBy  string    `db:"created_by"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r groupRow) toDomain() groupdomain.Group {
	return groupdomain.Group{ID: r.ID, Name: r.Name, InviteCode: r.InviteCode, CreatedBy: r.CreatedBy, CreatedAt: r.CreatedAt}
}

func (r *GroupRepository) Create(ctx context.Context, g groupdomain.Group) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertGroup = `INSERT INTO leaderboard_groups (id, name, invite_code, created_by) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, insertGroup, g.ID, g.Name, g.InviteCode, g.CreatedBy); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invite code collision")
		}
		return fmt.Errorf("insert group: %w", err)
	}

	const insertMember = `INSERT INTO leaderboard_group_members (group_id, user_id, role) VALUES ($1, $2, 'admin')`
	if _, err := tx.ExecContext(ctx, insertMember, g.ID, g.CreatedBy); err != nil {
		return fmt.Errorf("insert creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create group: %w", err)
	}
	return nil
}

func (r *GroupRepository) GetByInviteCode(ctx context.Context, inviteCode string) (groupdomain.Group, bool, error) {
	const query = `SELECT id, name, invite_code, created_by, created_at FROM leaderboard_groups WHERE invite_code = $1`
	var row groupRow
	if err := r.db.GetContext(ctx, &row, query, inviteCode); err != nil {
		if isNotFound(err) {
			return groupdomain.Group{}, false, nil
		}
		return groupdomain.Group{}, false, fmt.Errorf("get group by invite code: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (groupdomain.Group, bool, error) {
	const query = `SELECT id, name, invite_code, created_by, created_at FROM leaderboard_groups WHERE id = $1`
	var row groupRow
	if err := r.db.GetContext(ctx, &row, query, groupID); err != nil {
		if isNotFound(err) {
			return groupdomain.Group{}, false, nil
		}
		return groupdomain.Group{}, false, fmt.Errorf("get group: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM leaderboard_group_members WHERE group_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, groupID, userID); err != nil {
		return false, fmt.Errorf("check group membership: %w", err)
	}
	return exists, nil
}

func (r *GroupRepository) AddMember(ctx context.Context, m groupdomain.Member) error {
	const query = `INSERT INTO leaderboard_group_members (group_id, user_id, role) VALUES ($1, $2, $3) ON CONFLICT (group_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, m.GroupID, m.UserID, string(m.Role)); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	const query = `DELETE FROM leaderboard_group_members WHERE group_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	return nil
}

func (r *GroupRepository) ListByUser(ctx context.Context, userID string) ([]groupdomain.Group, error) {
	const query = `
SELECT g.id, g.name, g.invite_code, g.created_by, g.created_at
FROM leaderboard_groups g
JOIN leaderboard_group_members m ON m.group_id = g.id
WHERE m.user_id = $1
ORDER BY g.created_at`
	var rows []groupRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}
	out := make([]groupdomain.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]groupdomain.Member, error) {
	const query = `SELECT group_id, user_id, role, joined_at FROM leaderboard_group_members WHERE group_id = $1 ORDER BY joined_at`
	var rows []struct {
		GroupID  string    `db:"group_id"`
		UserID   string    `db:"user_id"`
		Role     string    `db:"role"`
		JoinedAt time.Time `db:"joined_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	out := make([]groupdomain.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, groupdomain.Member{GroupID: row.GroupID, UserID: row.UserID, Role: groupdomain.Role(row.Role), JoinedAt: row.JoinedAt})
	}
	return out, nil
}
