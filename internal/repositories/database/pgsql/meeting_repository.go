package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	"github.com/smart-chama/chama_backend/internal/models"
	"github.com/smart-chama/chama_backend/internal/utils/mapping"
	"github.com/smart-chama/chama_backend/internal/utils/pagination"
)

const meetingColumns = `meeting_id, title, agenda, location, scheduled_at, duration_minutes, status,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxMeetingRepository struct {
	BaseRepository
}

func newPgxMeetingRepository(pool *pgxpool.Pool) portsrepo.MeetingRepositoryFacade {
	return &PgxMeetingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxMeetingRepository implements portsrepo.MeetingRepositoryFacade
var _ portsrepo.MeetingRepositoryFacade = (*PgxMeetingRepository)(nil)

func scanMeeting(row pgx.Row) (*models.Meeting, error) {
	var m models.Meeting
	err := row.Scan(
		&m.MeetingID,
		&m.Title,
		&m.Agenda,
		&m.Location,
		&m.ScheduledAt,
		&m.DurationMinutes,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveMeeting inserts the meeting and its attendee roster in one transaction.
func (r *PgxMeetingRepository) SaveMeeting(ctx context.Context, meeting domain.Meeting) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelMeeting(meeting)
	meetingQuery := `
		INSERT INTO meetings (` + meetingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	if _, err := tx.Exec(ctx, meetingQuery,
		m.MeetingID, m.Title, m.Agenda, m.Location, m.ScheduledAt, m.DurationMinutes, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	); err != nil {
		return fmt.Errorf("failed to insert meeting %s: %w", m.MeetingID, err)
	}

	batch := &pgx.Batch{}
	attendeeQuery := `
		INSERT INTO meeting_attendees (meeting_id, user_id, rsvp, responded_at)
		VALUES ($1, $2, $3, $4);
	`
	for _, attendee := range meeting.Attendees {
		ma := mapping.ToModelMeetingAttendee(attendee)
		batch.Queue(attendeeQuery, ma.MeetingID, ma.UserID, ma.RSVP, ma.RespondedAt)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert attendees for meeting %s: %w", m.MeetingID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxMeetingRepository) FindMeetingByID(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE meeting_id = $1 AND deleted_at IS NULL;`
	m, err := scanMeeting(r.Pool.QueryRow(ctx, query, meetingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find meeting %s: %w", meetingID, err)
	}

	attendees, err := r.findAttendees(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	meeting := mapping.ToDomainMeeting(*m)
	meeting.Attendees = attendees
	return &meeting, nil
}

func (r *PgxMeetingRepository) findAttendees(ctx context.Context, meetingID string) ([]domain.MeetingAttendee, error) {
	query := `
		SELECT ma.meeting_id, ma.user_id, u.name, ma.rsvp, ma.responded_at
		FROM meeting_attendees ma
		JOIN users u ON u.user_id = ma.user_id
		WHERE ma.meeting_id = $1
		ORDER BY u.name;
	`
	rows, err := r.Pool.Query(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendees for meeting %s: %w", meetingID, err)
	}
	defer rows.Close()

	attendees := []models.MeetingAttendee{}
	for rows.Next() {
		var ma models.MeetingAttendee
		if err := rows.Scan(&ma.MeetingID, &ma.UserID, &ma.UserName, &ma.RSVP, &ma.RespondedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendee row: %w", err)
		}
		attendees = append(attendees, ma)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating attendee rows: %w", rows.Err())
	}
	return mapping.ToDomainMeetingAttendeeSlice(attendees), nil
}

// ListMeetings retrieves a paginated list of meetings, most recent first.
func (r *PgxMeetingRepository) ListMeetings(ctx context.Context, limit int, nextToken *string, status *domain.MeetingStatus) ([]domain.Meeting, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + meetingColumns + ` FROM meetings WHERE deleted_at IS NULL`
	args := []interface{}{}

	if status != nil {
		args = append(args, string(*status))
		baseQuery += " AND status = $" + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastScheduledAt, decodeErr := pagination.DecodeDateBasedToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastScheduledAt)
		baseQuery += " AND scheduled_at < $" + strconv.Itoa(len(args))
	}

	args = append(args, fetchLimit)
	query := baseQuery + " ORDER BY scheduled_at DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()

	meetings := []models.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan meeting row: %w", err)
		}
		meetings = append(meetings, *m)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating meeting rows: %w", rows.Err())
	}

	var nextTokenVal *string
	if len(meetings) > limit {
		last := meetings[limit-1]
		token := pagination.EncodeDateBasedToken(last.ScheduledAt)
		nextTokenVal = &token
		meetings = meetings[:limit]
	}
	return mapping.ToDomainMeetingSlice(meetings), nextTokenVal, nil
}

// ListMeetingsBetween retrieves scheduled meetings within the window, soonest first.
func (r *PgxMeetingRepository) ListMeetingsBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings
		WHERE status = $1 AND scheduled_at >= $2 AND scheduled_at < $3 AND deleted_at IS NULL
		ORDER BY scheduled_at;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.MeetingScheduled), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings between %s and %s: %w", from, to, err)
	}
	defer rows.Close()

	meetings := []models.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting row: %w", err)
		}
		meetings = append(meetings, *m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating meeting rows: %w", rows.Err())
	}
	return mapping.ToDomainMeetingSlice(meetings), nil
}

func (r *PgxMeetingRepository) UpdateMeeting(ctx context.Context, meeting domain.Meeting) error {
	m := mapping.ToModelMeeting(meeting)
	query := `
		UPDATE meetings
		SET title = $1, agenda = $2, location = $3, scheduled_at = $4, duration_minutes = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE meeting_id = $8 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.Title, m.Agenda, m.Location, m.ScheduledAt, m.DurationMinutes,
		m.LastUpdatedAt, m.LastUpdatedBy, m.MeetingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update meeting %s: %w", m.MeetingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("meeting not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxMeetingRepository) UpdateMeetingStatus(ctx context.Context, meetingID string, status domain.MeetingStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE meetings
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE meeting_id = $4 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, string(status), updatedAt, updatedBy, meetingID)
	if err != nil {
		return fmt.Errorf("failed to update status for meeting %s: %w", meetingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("meeting not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxMeetingRepository) UpsertAttendee(ctx context.Context, attendee domain.MeetingAttendee) error {
	ma := mapping.ToModelMeetingAttendee(attendee)
	query := `
		INSERT INTO meeting_attendees (meeting_id, user_id, rsvp, responded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (meeting_id, user_id) DO UPDATE SET
			rsvp = EXCLUDED.rsvp,
			responded_at = EXCLUDED.responded_at;
	`
	_, err := r.Pool.Exec(ctx, query, ma.MeetingID, ma.UserID, ma.RSVP, ma.RespondedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert attendee %s for meeting %s: %w", ma.UserID, ma.MeetingID, err)
	}
	return nil
}

func (r *PgxMeetingRepository) MarkMeetingDeleted(ctx context.Context, meetingID string, deletedAt time.Time, deletedBy string) error {
	query := `
		UPDATE meetings
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE meeting_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, deletedAt, deletedBy, meetingID)
	if err != nil {
		return fmt.Errorf("failed to mark meeting as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("meeting not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}
