package fulfillment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/payments"
)

// ErrCourseFull is returned when a course has reached max_students by the
// time the payment settles. The order stays; the operator resolves it.
var ErrCourseFull = errors.New("course is full")

// CourseStore resolves courses and writes enrollment grants.
type CourseStore interface {
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Course, error)
	CountEnrollmentsTx(ctx context.Context, tx *sql.Tx, courseID uint64) (uint32, error)
	CreateEnrollmentTx(ctx context.Context, tx *sql.Tx, e *model.Enrollment) error
}

// CourseHandler grants one active enrollment per course item. Course items
// always have quantity 1; one buyer enrolls once.
type CourseHandler struct {
	courses CourseStore
}

// NewCourseHandler returns a handler for course_enrollment orders.
func NewCourseHandler(courses CourseStore) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// Fulfill enrolls the buyer, rechecking capacity inside the transaction.
func (h *CourseHandler) Fulfill(ctx context.Context, tx *sql.Tx, order *model.Order, items []payments.LineItem) error {
	now := timeNow().UTC()
	for _, it := range items {
		if it.CourseID == 0 {
			return fmt.Errorf("course item missing course_id")
		}
		course, err := h.courses.GetTx(ctx, tx, it.CourseID)
		if err != nil {
			return fmt.Errorf("load course %d: %w", it.CourseID, err)
		}
		if course.MaxStudents != nil {
			enrolled, err := h.courses.CountEnrollmentsTx(ctx, tx, course.ID)
			if err != nil {
				return err
			}
			if enrolled >= *course.MaxStudents {
				return fmt.Errorf("course %d: %w", course.ID, ErrCourseFull)
			}
		}
		e := &model.Enrollment{
			OrderID:        order.ID,
			CourseID:       course.ID,
			BuyerEmail:     order.BuyerEmail,
			Status:         "active",
			EnrollmentDate: now,
		}
		if err := h.courses.CreateEnrollmentTx(ctx, tx, e); err != nil {
			return fmt.Errorf("enroll in course %d: %w", course.ID, err)
		}
	}
	return nil
}
