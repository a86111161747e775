package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	squaddomain "github.com/riskibarqy/football-brain/internal/domain/squad"
)

type SquadRepository struct {
	db *sqlx.DB
}

func NewSquadRepository(db *sqlx.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

type squadRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Tag           string    `db:"tag"`
	Description   string    `db:"description"`
	LeaderUserID  string    `db:"leader_user_id"`
	Privacy       string    `db:"privacy"`
	TotalPoints   int       `db:"total_points"`
	UnspentPoints int       `db:"unspent_points"`
	Level         int       `db:"level"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r squadRow) toDomain() squaddomain.Squad {
	return squaddomain.Squad{
		ID: r.ID, Name: r.Name, Tag: r.Tag, Description: r.Description,
		LeaderUserID: r.LeaderUserID, Privacy: squaddomain.Privacy(r.Privacy),
		TotalPoints: r.TotalPoints, UnspentPoints: r.UnspentPoints, Level: r.Level,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const squadColumns = `id, name, tag, description, leader_user_id, privacy, total_points, unspent_points, level, created_at, updated_at`

func (r *SquadRepository) Create(ctx context.Context, s squaddomain.Squad) (squaddomain.Squad, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return squaddomain.Squad{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var tag any
	if s.Tag != "" {
		tag = s.Tag
	}

	var row squadRow
	const insertQuery = `
INSERT INTO coaching_squads (id, name, tag, description, leader_user_id, privacy, level)
VALUES ($1, $2, $3, $4, $5, $6, 1)
RETURNING ` + squadColumns
	if err := tx.GetContext(ctx, &row, insertQuery, s.ID, s.Name, tag, s.Description, s.LeaderUserID, string(s.Privacy)); err != nil {
		if isUniqueViolation(err) {
			return squaddomain.Squad{}, fmt.Errorf("tag already taken")
		}
		return squaddomain.Squad{}, fmt.Errorf("insert squad: %w", err)
	}

	for _, facilityType := range squaddomain.AllFacilityTypes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO squad_facilities (squad_id, facility_type, level) VALUES ($1, $2, 0)`, row.ID, string(facilityType)); err != nil {
			return squaddomain.Squad{}, fmt.Errorf("init facility %s: %w", facilityType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return squaddomain.Squad{}, fmt.Errorf("commit create squad: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SquadRepository) GetByID(ctx context.Context, squadID string) (squaddomain.Squad, bool, error) {
	return r.getByID(ctx, r.db, squadID)
}

func (r *SquadRepository) GetByIDForUpdate(ctx context.Context, squadID string) (squaddomain.Squad, bool, error) {
	var row squadRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+squadColumns+` FROM coaching_squads WHERE id = $1 FOR UPDATE`, squadID); err != nil {
		if isNotFound(err) {
			return squaddomain.Squad{}, false, nil
		}
		return squaddomain.Squad{}, false, fmt.Errorf("lock squad: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SquadRepository) getByID(ctx context.Context, q sqlx.QueryerContext, squadID string) (squaddomain.Squad, bool, error) {
	var row squadRow
	if err := sqlx.GetContext(ctx, q, &row, `SELECT `+squadColumns+` FROM coaching_squads WHERE id = $1`, squadID); err != nil {
		if isNotFound(err) {
			return squaddomain.Squad{}, false, nil
		}
		return squaddomain.Squad{}, false, fmt.Errorf("get squad: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SquadRepository) GetActiveMembershipByUser(ctx context.Context, userID string) (squaddomain.Member, bool, error) {
	const query = `SELECT squad_id, user_id, role, points_contributed, status, joined_at FROM squad_members WHERE user_id = $1 AND status = 'active'`
	var row memberRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return squaddomain.Member{}, false, nil
		}
		return squaddomain.Member{}, false, fmt.Errorf("get active membership: %w", err)
	}
	return row.toDomain(), true, nil
}

type memberRow struct {
	SquadID           string    `db:"squad_id"`
	UserID            string    `db:"user_id"`
	Role              string    `db:"role"`
	PointsContributed int       `db:"points_contributed"`
	Status            string    `db:"status"`
	JoinedAt          time.Time `db:"joined_at"`
}

func (r memberRow) toDomain() squaddomain.Member {
	return squaddomain.Member{
		SquadID: r.SquadID, UserID: r.UserID, Role: squaddomain.Role(r.Role),
		PointsContributed: r.PointsContributed, Status: squaddomain.MemberStatus(r.Status), JoinedAt: r.JoinedAt,
	}
}

func (r *SquadRepository) ListMembers(ctx context.Context, squadID string) ([]squaddomain.Member, error) {
	const query = `SELECT squad_id, user_id, role, points_contributed, status, joined_at FROM squad_members WHERE squad_id = $1 ORDER BY joined_at`
	var rows []memberRow
	if err := r.db.SelectContext(ctx, &rows, query, squadID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out := make([]squaddomain.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SquadRepository) UpsertMember(ctx context.Context, m squaddomain.Member) error {
	const query = `
INSERT INTO squad_members (squad_id, user_id, role, points_contributed, status)
VALUES (:squad_id, :user_id, :role, :points_contributed, :status)
ON CONFLICT (squad_id, user_id) DO UPDATE SET
    role = EXCLUDED.role, status = EXCLUDED.status, points_contributed = EXCLUDED.points_contributed`
	return namedExec(ctx, r.db, query, map[string]any{
		"squad_id": m.SquadID, "user_id": m.UserID, "role": string(m.Role),
		"points_contributed": m.PointsContributed, "status": string(m.Status),
	})
}

func (r *SquadRepository) GetMember(ctx context.Context, squadID, userID string) (squaddomain.Member, bool, error) {
	const query = `SELECT squad_id, user_id, role, points_contributed, status, joined_at FROM squad_members WHERE squad_id = $1 AND user_id = $2`
	var row memberRow
	if err := r.db.GetContext(ctx, &row, query, squadID, userID); err != nil {
		if isNotFound(err) {
			return squaddomain.Member{}, false, nil
		}
		return squaddomain.Member{}, false, fmt.Errorf("get member: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SquadRepository) GetMemberForUpdate(ctx context.Context, squadID, userID string) (squaddomain.Member, bool, error) {
	const query = `SELECT squad_id, user_id, role, points_contributed, status, joined_at FROM squad_members WHERE squad_id = $1 AND user_id = $2 FOR UPDATE`
	var row memberRow
	if err := r.db.GetContext(ctx, &row, query, squadID, userID); err != nil {
		if isNotFound(err) {
			return squaddomain.Member{}, false, nil
		}
		return squaddomain.Member{}, false, fmt.Errorf("lock member: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SquadRepository) SetMemberStatus(ctx context.Context, squadID, userID string, status squaddomain.MemberStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE squad_members SET status = $3 WHERE squad_id = $1 AND user_id = $2`, squadID, userID, string(status))
	if err != nil {
		return fmt.Errorf("set member status: %w", err)
	}
	return nil
}

func (r *SquadRepository) SetMemberRole(ctx context.Context, squadID, userID string, role squaddomain.Role) error {
	_, err := r.db.ExecContext(ctx, `UPDATE squad_members SET role = $3 WHERE squad_id = $1 AND user_id = $2`, squadID, userID, string(role))
	if err != nil {
		return fmt.Errorf("set member role: %w", err)
	}
	return nil
}

func (r *SquadRepository) CountActiveLeadersOrCoLeaders(ctx context.Context, squadID string, excludeUserID string) (int, error) {
	const query = `SELECT COUNT(*) FROM squad_members WHERE squad_id = $1 AND status = 'active' AND role IN ('leader', 'co_leader') AND user_id <> $2`
	var n int
	if err := r.db.GetContext(ctx, &n, query, squadID, excludeUserID); err != nil {
		return 0, fmt.Errorf("count leaders: %w", err)
	}
	return n, nil
}

func (r *SquadRepository) CountActiveMembers(ctx context.Context, squadID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM squad_members WHERE squad_id = $1 AND status = 'active'`, squadID); err != nil {
		return 0, fmt.Errorf("count active members: %w", err)
	}
	return n, nil
}

func (r *SquadRepository) ListFacilities(ctx context.Context, squadID string) ([]squaddomain.Facility, error) {
	const query = `SELECT squad_id, facility_type, level FROM squad_facilities WHERE squad_id = $1`
	var rows []struct {
		SquadID      string `db:"squad_id"`
		FacilityType string `db:"facility_type"`
		Level        int    `db:"level"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, squadID); err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	out := make([]squaddomain.Facility, 0, len(rows))
	for _, row := range rows {
		out = append(out, squaddomain.Facility{SquadID: row.SquadID, FacilityType: squaddomain.FacilityType(row.FacilityType), Level: row.Level})
	}
	return out, nil
}

func (r *SquadRepository) GetFacilityForUpdate(ctx context.Context, squadID string, facilityType squaddomain.FacilityType) (squaddomain.Facility, error) {
	const query = `SELECT squad_id, facility_type, level FROM squad_facilities WHERE squad_id = $1 AND facility_type = $2 FOR UPDATE`
	var row struct {
		SquadID      string `db:"squad_id"`
		FacilityType string `db:"facility_type"`
		Level        int    `db:"level"`
	}
	if err := r.db.GetContext(ctx, &row, query, squadID, string(facilityType)); err != nil {
		return squaddomain.Facility{}, fmt.Errorf("lock facility: %w", err)
	}
	return squaddomain.Facility{SquadID: row.SquadID, FacilityType: squaddomain.FacilityType(row.FacilityType), Level: row.Level}, nil
}

func (r *SquadRepository) SetFacilityLevel(ctx context.Context, squadID string, facilityType squaddomain.FacilityType, level int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE squad_facilities SET level = $3 WHERE squad_id = $1 AND facility_type = $2`, squadID, string(facilityType), level)
	if err != nil {
		return fmt.Errorf("set facility level: %w", err)
	}
	return nil
}

func (r *SquadRepository) CreateJoinRequest(ctx context.Context, jr squaddomain.JoinRequest) (squaddomain.JoinRequest, error) {
	const query = `
INSERT INTO squad_join_requests (id, squad_id, user_id, status)
VALUES ($1, $2, $3, $4)
RETURNING id, squad_id, user_id, status, created_at, resolved_at, resolved_by`
	var row joinRequestRow
	if err := r.db.GetContext(ctx, &row, query, jr.ID, jr.SquadID, jr.UserID, string(jr.Status)); err != nil {
		return squaddomain.JoinRequest{}, fmt.Errorf("insert join request: %w", err)
	}
	return row.toDomain(), nil
}

type joinRequestRow struct {
	ID         string     `db:"id"`
	SquadID    string     `db:"squad_id"`
	UserID     string     `db:"user_id"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at"`
	ResolvedBy *string    `db:"resolved_by"`
}

func (r joinRequestRow) toDomain() squaddomain.JoinRequest {
	return squaddomain.JoinRequest{
		ID: r.ID, SquadID: r.SquadID, UserID: r.UserID, Status: squaddomain.RequestStatus(r.Status),
		CreatedAt: r.CreatedAt, ResolvedAt: r.ResolvedAt, ResolvedBy: r.ResolvedBy,
	}
}

func (r *SquadRepository) GetPendingJoinRequest(ctx context.Context, squadID, userID string) (squaddomain.JoinRequest, bool, error) {
	const query = `SELECT id, squad_id, user_id, status, created_at, resolved_at, resolved_by FROM squad_join_requests WHERE squad_id = $1 AND user_id = $2 AND status = 'pending'`
	var row joinRequestRow
	if err := r.db.GetContext(ctx, &row, query, squadID, userID); err != nil {
		if isNotFound(err) {
			return squaddomain.JoinRequest{}, false, nil
		}
		return squaddomain.JoinRequest{}, false, fmt.Errorf("get pending join request: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SquadRepository) GetJoinRequestForUpdate(ctx context.Context, requestID string) (squaddomain.JoinRequest, bool, error) {
	const query = `SELECT id, squad_id, user_id, status, created_at, resolved_at, resolved_by FROM squad_join_requests WHERE id = $1 FOR UPDATE`
	var row joinRequestRow
	if err := r.db.GetContext(ctx, &row, query, requestID); err != nil {
		if isNotFound(err) {
			return squaddomain.JoinRequest{}, false, nil
		}
		return squaddomain.JoinRequest{}, false, fmt.Errorf("lock join request: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SquadRepository) ResolveJoinRequest(ctx context.Context, requestID string, status squaddomain.RequestStatus, resolvedBy string, resolvedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE squad_join_requests SET status = $2, resolved_by = $3, resolved_at = $4 WHERE id = $1`, requestID, string(status), resolvedBy, resolvedAt)
	if err != nil {
		return fmt.Errorf("resolve join request: %w", err)
	}
	return nil
}

func (r *SquadRepository) ListJoinRequestsBySquad(ctx context.Context, squadID string) ([]squaddomain.JoinRequest, error) {
	const query = `SELECT id, squad_id, user_id, status, created_at, resolved_at, resolved_by FROM squad_join_requests WHERE squad_id = $1 ORDER BY created_at DESC`
	var rows []joinRequestRow
	if err := r.db.SelectContext(ctx, &rows, query, squadID); err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	out := make([]squaddomain.JoinRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SquadRepository) AddSquadPoints(ctx context.Context, squadID string, delta int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE coaching_squads SET total_points = total_points + $2, unspent_points = unspent_points + $2, updated_at = now() WHERE id = $1`, squadID, delta)
	if err != nil {
		return fmt.Errorf("add squad points: %w", err)
	}
	return nil
}

func (r *SquadRepository) InsertPointEvent(ctx context.Context, e squaddomain.PointEvent) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO squad_point_events (squad_id, user_id, points, reason) VALUES ($1, $2, $3, $4)`, e.SquadID, e.UserID, e.Points, e.Reason)
	if err != nil {
		return fmt.Errorf("insert point event: %w", err)
	}
	return nil
}

func (r *SquadRepository) InsertSpendTransaction(ctx context.Context, t squaddomain.SpendTransaction) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO squad_spend_transactions (squad_id, user_id, facility_type, cost, new_level) VALUES ($1, $2, $3, $4, $5)`,
		t.SquadID, t.UserID, string(t.FacilityType), t.Cost, t.NewLevel)
	if err != nil {
		return fmt.Errorf("insert spend transaction: %w", err)
	}
	return nil
}

func (r *SquadRepository) SetSquadLevel(ctx context.Context, squadID string, level int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE coaching_squads SET level = $2, updated_at = now() WHERE id = $1`, squadID, level)
	if err != nil {
		return fmt.Errorf("set squad level: %w", err)
	}
	return nil
}

func (r *SquadRepository) DeductUnspentPoints(ctx context.Context, squadID string, cost int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE coaching_squads SET unspent_points = unspent_points - $2, updated_at = now() WHERE id = $1`, squadID, cost)
	if err != nil {
		return fmt.Errorf("deduct unspent points: %w", err)
	}
	return nil
}

func (r *SquadRepository) TouchUpdatedAt(ctx context.Context, squadID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE coaching_squads SET updated_at = now() WHERE id = $1`, squadID)
	if err != nil {
		return fmt.Errorf("touch squad updated_at: %w", err)
	}
	return nil
}

func (r *SquadRepository) Search(ctx context.Context, query string, limit int) ([]squaddomain.Squad, error) {
	const q = `SELECT ` + squadColumns + ` FROM coaching_squads WHERE name ILIKE $1 OR tag ILIKE $1 ORDER BY total_points DESC LIMIT $2`
	var rows []squadRow
	if err := r.db.SelectContext(ctx, &rows, q, "%"+query+"%", limit); err != nil {
		return nil, fmt.Errorf("search squads: %w", err)
	}
	out := make([]squaddomain.Squad, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SquadRepository) Leaderboard(ctx context.Context, limit int) ([]squaddomain.Squad, error) {
	const q = `SELECT ` + squadColumns + ` FROM coaching_squads ORDER BY total_points DESC, level DESC, updated_at ASC LIMIT $1`
	var rows []squadRow
	if err := r.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, fmt.Errorf("squad leaderboard: %w", err)
	}
	out := make([]squaddomain.Squad, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
