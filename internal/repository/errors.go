// Package repository contains the data access layer. Each repository wraps
// one table (or a tight cluster of tables) and exposes plain methods plus
// ...Tx variants that participate in a caller-owned transaction. Sentinel
// errors defined here let handlers and the fulfillment dispatcher translate
// failures without inspecting driver error strings.
package repository

import "errors"

// ErrOrganizationNotFound indicates the organization row does not exist or
// is inactive.
var ErrOrganizationNotFound = errors.New("organization not found")

// ErrEventNotFound indicates an event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// ErrTicketTypeNotFound indicates a ticket type was not located in the DB.
var ErrTicketTypeNotFound = errors.New("ticket type not found")

// ErrPassTypeNotFound indicates a pass type was not located in the DB.
var ErrPassTypeNotFound = errors.New("pass type not found")

// ErrPackageNotFound indicates a class package was not located in the DB.
var ErrPackageNotFound = errors.New("class package not found")

// ErrCourseNotFound indicates a course was not located in the DB.
var ErrCourseNotFound = errors.New("course not found")

// ErrOrderNotFound indicates an order was not located in the DB.
var ErrOrderNotFound = errors.New("order not found")

// ErrCampaignNotFound indicates a campaign was not located in the DB.
var ErrCampaignNotFound = errors.New("campaign not found")

// ErrPendingOrderNotFound indicates no pending order exists for the session.
var ErrPendingOrderNotFound = errors.New("pending order not found")

// ErrDuplicateSession is returned when an order insert collides with the
// UNIQUE key on orders.stripe_session_id. The webhook dispatcher treats it
// as "already fulfilled" and acknowledges without side effects.
var ErrDuplicateSession = errors.New("order already exists for session")

// ErrSoldOut is returned when the conditional quantity update on a ticket
// type matches no rows, meaning the requested quantity would exceed
// quantity_available.
var ErrSoldOut = errors.New("ticket type sold out")

// ErrForbidden is returned when the caller attempts an operation on a
// resource belonging to another organization. Handlers translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrNoChange indicates an UPDATE matched a row but changed nothing.
var ErrNoChange = errors.New("no change")
