package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/belmonts/belix/internal/repository"
	"github.com/belmonts/belix/internal/telemetry"
)

const tracerName = "belix/repository"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func dateParam(t time.Time) string {
	return t.Format(time.DateOnly)
}

func traced(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, op, attribute.String("db.system", "postgresql"))
	defer span.End()
	err := fn(ctx)
	telemetry.RecordError(span, err)
	return err
}

const memberColumns = `member_id, username, display_name, COALESCE(discord_username, ''), role, birthday, joined_at, belmonts_points, created_at, updated_at`

func scanMember(row pgx.Row) (*repository.Member, error) {
	var m repository.Member
	if err := row.Scan(&m.MemberID, &m.Username, &m.DisplayName, &m.DiscordUsername, &m.Role, &m.Birthday, &m.JoinedAt, &m.BelmontsPoints, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) getMemberWhere(ctx context.Context, op, where string, arg any) (*repository.Member, error) {
	var out *repository.Member
	err := traced(ctx, op, func(ctx context.Context) error {
		m, err := scanMember(r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE `+where+` LIMIT 1`, arg))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		out = m
		return nil
	})
	return out, err
}

func (r *PostgresRepository) SyncMember(ctx context.Context, input repository.SyncMemberInput) error {
	return traced(ctx, "SyncMember", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO members (member_id, username, display_name, discord_username, role, joined_at, created_at, updated_at)
			 VALUES ($1, $2, $3, $2, $4, $5, NOW(), NOW())
			 ON CONFLICT (member_id) DO UPDATE SET
			   username = EXCLUDED.username,
			   display_name = EXCLUDED.display_name,
			   discord_username = COALESCE(members.discord_username, EXCLUDED.discord_username),
			   role = EXCLUDED.role,
			   joined_at = COALESCE(EXCLUDED.joined_at, members.joined_at),
			   updated_at = NOW()`,
			input.MemberID, input.Username, input.DisplayName, input.Role, input.JoinedAt)
		return err
	})
}

func (r *PostgresRepository) InsertMember(ctx context.Context, input repository.InsertMemberInput) error {
	return traced(ctx, "InsertMember", func(ctx context.Context) error {
		var birthday any
		if input.Birthday != nil {
			birthday = dateParam(*input.Birthday)
		}
		_, err := r.pool.Exec(ctx,
			`INSERT INTO members (member_id, username, display_name, discord_username, role, birthday, joined_at, belmonts_points)
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6::date, $7, $8)
			 ON CONFLICT (member_id) DO NOTHING`,
			input.MemberID, input.Username, input.DisplayName, input.DiscordUsername, input.Role, birthday, input.JoinedAt, input.BelmontsPoints)
		return err
	})
}

func (r *PostgresRepository) GetMember(ctx context.Context, memberID string) (*repository.Member, error) {
	return r.getMemberWhere(ctx, "GetMember", "member_id = $1", memberID)
}

func (r *PostgresRepository) GetMemberByUsername(ctx context.Context, username string) (*repository.Member, error) {
	return r.getMemberWhere(ctx, "GetMemberByUsername", "LOWER(username) = LOWER($1)", username)
}

func (r *PostgresRepository) GetMemberByDiscordUsername(ctx context.Context, discordUsername string) (*repository.Member, error) {
	return r.getMemberWhere(ctx, "GetMemberByDiscordUsername", "discord_username = $1", discordUsername)
}

func (r *PostgresRepository) UpdateMemberRole(ctx context.Context, memberID, role string) error {
	return traced(ctx, "UpdateMemberRole", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, `UPDATE members SET role = $2, updated_at = NOW() WHERE member_id = $1`, memberID, role)
		return err
	})
}

func (r *PostgresRepository) UpdateMemberBirthday(ctx context.Context, memberID string, birthday *time.Time) error {
	return traced(ctx, "UpdateMemberBirthday", func(ctx context.Context) error {
		var value any
		if birthday != nil {
			value = dateParam(*birthday)
		}
		_, err := r.pool.Exec(ctx, `UPDATE members SET birthday = $2::date, updated_at = NOW() WHERE member_id = $1`, memberID, value)
		return err
	})
}

func (r *PostgresRepository) listMembers(ctx context.Context, op, query string) ([]repository.Member, error) {
	var list []repository.Member
	err := traced(ctx, op, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			m, err := scanMember(rows)
			if err != nil {
				return err
			}
			list = append(list, *m)
		}
		return rows.Err()
	})
	return list, err
}

func (r *PostgresRepository) ListMembers(ctx context.Context) ([]repository.Member, error) {
	return r.listMembers(ctx, "ListMembers", `SELECT `+memberColumns+` FROM members ORDER BY username ASC`)
}

func (r *PostgresRepository) ListMembersWithBirthday(ctx context.Context) ([]repository.Member, error) {
	return r.listMembers(ctx, "ListMembersWithBirthday", `SELECT `+memberColumns+` FROM members WHERE birthday IS NOT NULL ORDER BY username ASC`)
}

func (r *PostgresRepository) AddBelmontsPointsByDiscordUsername(ctx context.Context, discordUsername string, points int) (*int, error) {
	var out *int
	err := traced(ctx, "AddBelmontsPointsByDiscordUsername", func(ctx context.Context) error {
		var total int
		err := r.pool.QueryRow(ctx,
			`UPDATE members SET belmonts_points = belmonts_points + $2, updated_at = NOW()
			 WHERE discord_username = $1 RETURNING belmonts_points`,
			discordUsername, points).Scan(&total)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		out = &total
		return nil
	})
	return out, err
}

func (r *PostgresRepository) InitializePoints(ctx context.Context, memberID string) error {
	return traced(ctx, "InitializePoints", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, `INSERT INTO points (member_id, points) VALUES ($1, 0) ON CONFLICT (member_id) DO NOTHING`, memberID)
		return err
	})
}

func (r *PostgresRepository) AddPoints(ctx context.Context, memberID string, points int) (int, error) {
	var total int
	err := traced(ctx, "AddPoints", func(ctx context.Context) error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO points (member_id, points, last_update) VALUES ($1, $2, NOW())
			 ON CONFLICT (member_id) DO UPDATE SET
			   points = points.points + EXCLUDED.points,
			   last_update = NOW(),
			   updated_at = NOW()
			 RETURNING points`,
			memberID, points).Scan(&total)
	})
	return total, err
}

func (r *PostgresRepository) GetPoints(ctx context.Context, memberID string) (*repository.Points, error) {
	var out *repository.Points
	err := traced(ctx, "GetPoints", func(ctx context.Context) error {
		var p repository.Points
		err := r.pool.QueryRow(ctx, `SELECT member_id, points, last_update FROM points WHERE member_id = $1`, memberID).
			Scan(&p.MemberID, &p.Points, &p.LastUpdate)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *PostgresRepository) SetPoints(ctx context.Context, memberID string, points int) error {
	return traced(ctx, "SetPoints", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO points (member_id, points, last_update) VALUES ($1, $2, NOW())
			 ON CONFLICT (member_id) DO UPDATE SET points = EXCLUDED.points, last_update = NOW(), updated_at = NOW()`,
			memberID, points)
		return err
	})
}

// GetLeaderboard orders by points with member id as the stable tie breaker.
func (r *PostgresRepository) GetLeaderboard(ctx context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	var list []repository.LeaderboardEntry
	err := traced(ctx, "GetLeaderboard", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx,
			`SELECT p.member_id, COALESCE(m.username, ''), COALESCE(m.display_name, ''), COALESCE(m.role, ''), p.points
			 FROM points p LEFT JOIN members m ON m.member_id = p.member_id
			 ORDER BY p.points DESC, p.created_at ASC, p.member_id ASC
			 LIMIT $1`,
			limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var e repository.LeaderboardEntry
			if err := rows.Scan(&e.MemberID, &e.Username, &e.DisplayName, &e.Role, &e.Points); err != nil {
				return err
			}
			list = append(list, e)
		}
		return rows.Err()
	})
	return list, err
}

func (r *PostgresRepository) GrantDailyAward(ctx context.Context, memberID, reason string, day time.Time, points int) (int, bool, error) {
	var (
		total   int
		granted bool
	)
	err := traced(ctx, "GrantDailyAward", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx,
				`INSERT INTO point_awards (member_id, reason, award_date) VALUES ($1, $2, $3::date)
				 ON CONFLICT DO NOTHING`,
				memberID, reason, dateParam(day))
			if err != nil {
				return fmt.Errorf("insert award: %w", err)
			}
			if tag.RowsAffected() != 1 {
				return nil
			}
			if err := tx.QueryRow(ctx,
				`INSERT INTO points (member_id, points, last_update) VALUES ($1, $2, NOW())
				 ON CONFLICT (member_id) DO UPDATE SET
				   points = points.points + EXCLUDED.points,
				   last_update = NOW(),
				   updated_at = NOW()
				 RETURNING points`,
				memberID, points).Scan(&total); err != nil {
				return fmt.Errorf("add points: %w", err)
			}
			granted = true
			return nil
		})
	})
	if err != nil {
		return 0, false, err
	}
	return total, granted, nil
}

func (r *PostgresRepository) CreateMeeting(ctx context.Context, input repository.CreateMeetingInput) (*repository.Meeting, error) {
	var out *repository.Meeting
	err := traced(ctx, "CreateMeeting", func(ctx context.Context) error {
		var m repository.Meeting
		var sessionID *string
		if input.SessionID != "" {
			sessionID = &input.SessionID
		}
		err := r.pool.QueryRow(ctx,
			`INSERT INTO meetings (session_id, title, meeting_date, meeting_time, scheduled_time, total_members)
			 VALUES ($1, $2, $3::date, $4, $5, $6)
			 RETURNING meeting_id, COALESCE(session_id::text, ''), title, meeting_date, meeting_time, scheduled_time, total_members, created_at`,
			sessionID, input.Title, dateParam(input.MeetingDate), input.MeetingTime, input.ScheduledTime, input.TotalMembers).
			Scan(&m.ID, &m.SessionID, &m.Title, &m.MeetingDate, &m.MeetingTime, &m.ScheduledTime, &m.TotalMembers, &m.CreatedAt)
		if err != nil {
			return err
		}
		out = &m
		return nil
	})
	return out, err
}

func (r *PostgresRepository) UpdateMeetingEnd(ctx context.Context, input repository.UpdateMeetingEndInput) error {
	return traced(ctx, "UpdateMeetingEnd", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`UPDATE meetings SET end_time = $2, duration_minutes = $3, attended_members = $4 WHERE meeting_id = $1`,
			input.MeetingID, input.EndTime, input.DurationMinutes, input.AttendedMembers)
		return err
	})
}

func (r *PostgresRepository) RecordAttendance(ctx context.Context, meetingID int64, records []repository.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	return traced(ctx, "RecordAttendance", func(ctx context.Context) error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(
				`INSERT INTO meeting_attendance (meeting_id, member_id, username, display_name, total_duration_minutes, attendance_percentage, points_awarded)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (meeting_id, member_id) DO UPDATE SET
				   total_duration_minutes = EXCLUDED.total_duration_minutes,
				   attendance_percentage = EXCLUDED.attendance_percentage,
				   points_awarded = EXCLUDED.points_awarded`,
				meetingID, rec.MemberID, rec.Username, rec.DisplayName, rec.TotalDurationMinutes, rec.AttendancePercentage, rec.PointsAwarded)
		}
		br := r.pool.SendBatch(ctx, batch)
		for range records {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert attendance: %w", err)
			}
		}
		return br.Close()
	})
}

func (r *PostgresRepository) ConfirmGathering(ctx context.Context, day time.Time, confirmedByID, confirmedBy string) error {
	return traced(ctx, "ConfirmGathering", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO gathering_confirmations (gathering_date, status, confirmed_by_id, confirmed_by, updated_at)
			 VALUES ($1::date, 'confirmed', $2, $3, NOW())
			 ON CONFLICT (gathering_date) DO UPDATE SET
			   status = 'confirmed', confirmed_by_id = EXCLUDED.confirmed_by_id,
			   confirmed_by = EXCLUDED.confirmed_by, updated_at = NOW()`,
			dateParam(day), confirmedByID, confirmedBy)
		return err
	})
}

func (r *PostgresRepository) CancelGathering(ctx context.Context, day time.Time) error {
	return traced(ctx, "CancelGathering", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO gathering_confirmations (gathering_date, status, updated_at)
			 VALUES ($1::date, 'cancelled', NOW())
			 ON CONFLICT (gathering_date) DO UPDATE SET status = 'cancelled', updated_at = NOW()`,
			dateParam(day))
		return err
	})
}

func (r *PostgresRepository) GetGatheringStatus(ctx context.Context, day time.Time) (*repository.GatheringConfirmation, error) {
	var out *repository.GatheringConfirmation
	err := traced(ctx, "GetGatheringStatus", func(ctx context.Context) error {
		var g repository.GatheringConfirmation
		err := r.pool.QueryRow(ctx,
			`SELECT gathering_date, status, COALESCE(confirmed_by_id, ''), COALESCE(confirmed_by, ''), updated_at
			 FROM gathering_confirmations WHERE gathering_date = $1::date`,
			dateParam(day)).Scan(&g.GatheringDate, &g.Status, &g.ConfirmedByID, &g.ConfirmedBy, &g.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		out = &g
		return nil
	})
	return out, err
}

func (r *PostgresRepository) TrackActivity(ctx context.Context, input repository.TrackActivityInput) error {
	if input.DiscordUsername == "" || input.ActivityType == "" {
		return fmt.Errorf("discord username and activity type are required")
	}
	return traced(ctx, "TrackActivity", func(ctx context.Context) error {
		at := input.At
		if at.IsZero() {
			at = time.Now()
		}
		var metadata []byte
		if input.Metadata != nil {
			b, err := json.Marshal(input.Metadata)
			if err != nil {
				return fmt.Errorf("marshal activity metadata: %w", err)
			}
			metadata = b
		}
		_, err := r.pool.Exec(ctx,
			`INSERT INTO discord_activity (member_id, discord_username, display_name, activity_type, channel_id, channel_name,
			   message_count, voice_duration_minutes, reaction_count, activity_date, activity_timestamp, metadata)
			 VALUES (NULLIF($1, ''), $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10::date, $11, $12)`,
			input.MemberID, input.DiscordUsername, input.DisplayName, input.ActivityType, input.ChannelID, input.ChannelName,
			input.MessageCount, input.VoiceDurationMinutes, input.ReactionCount, dateParam(at), at, metadata)
		return err
	})
}

func (r *PostgresRepository) ListActivity(ctx context.Context, memberID string, from, to *time.Time) ([]repository.Activity, error) {
	var list []repository.Activity
	err := traced(ctx, "ListActivity", func(ctx context.Context) error {
		var fromParam, toParam any
		if from != nil {
			fromParam = dateParam(*from)
		}
		if to != nil {
			toParam = dateParam(*to)
		}
		rows, err := r.pool.Query(ctx,
			`SELECT id, COALESCE(member_id, ''), discord_username, COALESCE(display_name, ''), activity_type,
			   COALESCE(channel_id, ''), COALESCE(channel_name, ''), message_count, voice_duration_minutes,
			   reaction_count, activity_date, activity_timestamp, metadata
			 FROM discord_activity
			 WHERE member_id = $1
			   AND ($2::date IS NULL OR activity_date >= $2::date)
			   AND ($3::date IS NULL OR activity_date <= $3::date)
			 ORDER BY activity_timestamp DESC`,
			memberID, fromParam, toParam)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var a repository.Activity
			var metadata []byte
			if err := rows.Scan(&a.ID, &a.MemberID, &a.DiscordUsername, &a.DisplayName, &a.ActivityType,
				&a.ChannelID, &a.ChannelName, &a.MessageCount, &a.VoiceDurationMinutes,
				&a.ReactionCount, &a.ActivityDate, &a.ActivityTimestamp, &metadata); err != nil {
				return err
			}
			if len(metadata) > 0 {
				if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
					return fmt.Errorf("decode activity metadata: %w", err)
				}
			}
			list = append(list, a)
		}
		return rows.Err()
	})
	return list, err
}

func (r *PostgresRepository) SummarizeActivity(ctx context.Context, memberID string, since time.Time) (*repository.ActivitySummary, error) {
	list, err := r.ListActivity(ctx, memberID, &since, nil)
	if err != nil {
		return nil, err
	}
	summary := repository.Summarize(list)
	return &summary, nil
}
