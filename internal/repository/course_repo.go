package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/groovegrid/groovegrid/internal/model"
)

// CourseRepo manages courses and course enrollments.
type CourseRepo struct {
	db *sql.DB
}

// NewCourseRepo returns a new CourseRepo bound to the given database.
func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{db: db} }

const courseColumns = `id, organization_id, title, description, instructor, level, duration_weeks,
	start_date, schedule_days, schedule_time, max_students, price, status, created_at`

func scanCourse(sc interface{ Scan(...any) error }) (*model.Course, error) {
	var c model.Course
	err := sc.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.Title,
		&c.Description,
		&c.Instructor,
		&c.Level,
		&c.DurationWeeks,
		&c.StartDate,
		&c.ScheduleDays,
		&c.ScheduleTime,
		&c.MaxStudents,
		&c.Price,
		&c.Status,
		&c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new course.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	const q = `INSERT INTO courses
	           (organization_id, title, description, instructor, level, duration_weeks,
	            start_date, schedule_days, schedule_time, max_students, price, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		c.OrganizationID, c.Title, c.Description, c.Instructor, c.Level, c.DurationWeeks,
		c.StartDate, c.ScheduleDays, c.ScheduleTime, c.MaxStudents, c.Price, c.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	got, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// GetByID fetches a course by primary key.
func (r *CourseRepo) GetByID(ctx context.Context, id uint64) (*model.Course, error) {
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE id = ?`
	return scanCourse(r.db.QueryRowContext(ctx, q, id))
}

// GetTx fetches a course inside the caller's transaction.
func (r *CourseRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Course, error) {
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE id = ?`
	return scanCourse(tx.QueryRowContext(ctx, q, id))
}

// ListByOrganization returns the tenant's courses. publishedOnly limits the
// result to publicly visible courses.
func (r *CourseRepo) ListByOrganization(ctx context.Context, orgID uint64, publishedOnly bool) ([]model.Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses WHERE organization_id = ?`
	if publishedOnly {
		q += ` AND status = 'published'`
	}
	q += ` ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Title, &c.Description, &c.Instructor,
			&c.Level, &c.DurationWeeks, &c.StartDate, &c.ScheduleDays, &c.ScheduleTime,
			&c.MaxStudents, &c.Price, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a course owned by orgID.
func (r *CourseRepo) Update(ctx context.Context, orgID uint64, c *model.Course) error {
	const q = `UPDATE courses
	           SET title = ?, description = ?, instructor = ?, level = ?, duration_weeks = ?,
	               start_date = ?, schedule_days = ?, schedule_time = ?, max_students = ?, price = ?, status = ?
	           WHERE id = ? AND organization_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		c.Title, c.Description, c.Instructor, c.Level, c.DurationWeeks,
		c.StartDate, c.ScheduleDays, c.ScheduleTime, c.MaxStudents, c.Price, c.Status,
		c.ID, orgID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// CreateEnrollmentTx inserts one course enrollment grant within the
// caller's transaction.
func (r *CourseRepo) CreateEnrollmentTx(ctx context.Context, tx *sql.Tx, e *model.Enrollment) error {
	const q = `INSERT INTO enrollments (order_id, course_id, buyer_email, status, enrollment_date)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, e.OrderID, e.CourseID, e.BuyerEmail, e.Status, e.EnrollmentDate.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// CountEnrollmentsTx counts active enrollments for a course inside the
// caller's transaction. Fulfillment compares the result against
// max_students before granting a seat.
func (r *CourseRepo) CountEnrollmentsTx(ctx context.Context, tx *sql.Tx, courseID uint64) (uint32, error) {
	const q = `SELECT COUNT(*) FROM enrollments WHERE course_id = ? AND status = 'active'`
	var n uint32
	if err := tx.QueryRowContext(ctx, q, courseID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListEnrollmentsByEmail returns a buyer's course enrollments for the portal.
func (r *CourseRepo) ListEnrollmentsByEmail(ctx context.Context, email string) ([]model.Enrollment, error) {
	const q = `SELECT id, order_id, course_id, buyer_email, status, enrollment_date, created_at
	           FROM enrollments WHERE buyer_email = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.OrderID, &e.CourseID, &e.BuyerEmail, &e.Status, &e.EnrollmentDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
