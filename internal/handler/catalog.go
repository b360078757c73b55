package handler

import (
	"context"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/repository"
)

// RepoCatalog adapts the repositories to the CheckoutCatalog interface.
type RepoCatalog struct {
	Events      *repository.EventRepo
	TicketTypes *repository.TicketTypeRepo
	PassTypes   *repository.PassTypeRepo
	Packages    *repository.PackageRepo
	Courses     *repository.CourseRepo
}

func (r *RepoCatalog) TicketType(ctx context.Context, id uint64) (*model.TicketType, error) {
	return r.TicketTypes.GetByID(ctx, id)
}

func (r *RepoCatalog) Event(ctx context.Context, id uint64) (*model.Event, error) {
	return r.Events.GetByID(ctx, id)
}

func (r *RepoCatalog) PassType(ctx context.Context, id uint64) (*model.PassType, error) {
	return r.PassTypes.GetByID(ctx, id)
}

func (r *RepoCatalog) Package(ctx context.Context, id uint64) (*model.ClassPackage, error) {
	return r.Packages.GetByID(ctx, id)
}

func (r *RepoCatalog) Course(ctx context.Context, id uint64) (*model.Course, error) {
	return r.Courses.GetByID(ctx, id)
}
