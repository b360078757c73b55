package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course is a scheduled multi-week class offering. ScheduleDays is a
// comma-separated list of weekday names as entered by the organizer.
type Course struct {
	ID             uint64          `json:"id"`              // courses.id
	OrganizationID uint64          `json:"organization_id"` // courses.organization_id
	Title          string          `json:"title"`           // courses.title
	Description    *string         `json:"description"`     // courses.description (nullable)
	Instructor     *string         `json:"instructor"`      // courses.instructor (nullable)
	Level          *string         `json:"level"`           // courses.level (nullable)
	DurationWeeks  *uint32         `json:"duration_weeks"`  // courses.duration_weeks (nullable)
	StartDate      *time.Time      `json:"start_date"`      // courses.start_date (nullable)
	ScheduleDays   *string         `json:"schedule_days"`   // courses.schedule_days (nullable)
	ScheduleTime   *string         `json:"schedule_time"`   // courses.schedule_time (nullable)
	MaxStudents    *uint32         `json:"max_students"`    // courses.max_students (nullable)
	Price          decimal.Decimal `json:"price"`           // courses.price
	Status         string          `json:"status"`          // courses.status
	CreatedAt      time.Time       `json:"created_at"`      // courses.created_at
}

// Enrollment records one buyer's seat in a course, created by course
// fulfillment with status active.
type Enrollment struct {
	ID             uint64    `json:"id"`              // enrollments.id
	OrderID        uint64    `json:"order_id"`        // enrollments.order_id
	CourseID       uint64    `json:"course_id"`       // enrollments.course_id
	BuyerEmail     string    `json:"buyer_email"`     // enrollments.buyer_email
	Status         string    `json:"status"`          // enrollments.status
	EnrollmentDate time.Time `json:"enrollment_date"` // enrollments.enrollment_date
	CreatedAt      time.Time `json:"created_at"`      // enrollments.created_at
}
