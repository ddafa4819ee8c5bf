package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ssizenet/intranet-api/internal/middleware"
	"github.com/ssizenet/intranet-api/internal/model"
	"github.com/ssizenet/intranet-api/internal/queue"
	"github.com/ssizenet/intranet-api/internal/repository"
)

// RentStore is the persistence capability consumed by RentHandler.
type RentStore interface {
	Create(ctx context.Context, rent model.Rent) error
	List(ctx context.Context, page, count int) ([]model.Rent, error)
	ListMonth(ctx context.Context, year, month int) ([]model.Rent, error)
	GetByID(ctx context.Context, id string) (model.Rent, error)
	Update(ctx context.Context, rent model.Rent) error
	SetApproved(ctx context.Context, id string, approved int) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher emits rental lifecycle events. Publishing is best-effort;
// failures are logged by the publisher and never fail the request.
type EventPublisher interface {
	PublishRentEvent(ctx context.Context, ev queue.RentEvent) error
}

// RentHandler implements the equipment rental endpoints.
type RentHandler struct {
	Rents  RentStore
	Events EventPublisher
	// now is swappable for tests of the time gates.
	now func() time.Time
}

func NewRentHandler(r RentStore, ev EventPublisher) *RentHandler {
	return &RentHandler{Rents: r, Events: ev, now: func() time.Time { return time.Now().UTC() }}
}

// ----- DTOs -----

type applyRentReq struct {
	StartDate     string            `json:"startDate"`
	EndDate       string            `json:"endDate"`
	Team          string            `json:"team"`
	Title         string            `json:"title"`
	EquipmentList []model.Equipment `json:"equipmentList"`
}

type updateRentReq struct {
	StartDate     *string            `json:"startDate"`
	EndDate       *string            `json:"endDate"`
	Team          *string            `json:"team"`
	Title         *string            `json:"title"`
	EquipmentList *[]model.Equipment `json:"equipmentList"`
}

type approveRentReq struct {
	ID       string `json:"id"`
	Approved int    `json:"approved"`
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (h *RentHandler) publish(ev queue.RentEvent) {
	if h.Events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Events.PublishRentEvent(ctx, ev)
	}()
}

func rentEvent(kind string, r model.Rent) queue.RentEvent {
	cats := make([]string, 0, len(r.EquipmentList))
	for _, eq := range r.EquipmentList {
		cats = append(cats, eq.Category)
	}
	return queue.RentEvent{
		Kind:          kind,
		RentID:        r.ID,
		Title:         r.Title,
		Team:          r.Team,
		ApplicantID:   r.ApplicantID,
		ApplicantName: r.ApplicantName,
		StartDate:     r.StartDate.Format(time.RFC3339),
		EndDate:       r.EndDate.Format(time.RFC3339),
		Categories:    cats,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

// Apply: create a rental booking. Fails with 409 when any stored booking
// overlaps the requested window and shares equipment.
func (h *RentHandler) Apply(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	var req applyRentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err1 := parseInstant(req.StartDate)
	end, err2 := parseInstant(req.EndDate)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate/endDate must be RFC3339"})
	}
	if !start.Before(end) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate must precede endDate"})
	}
	if strings.TrimSpace(req.Title) == "" || len(req.EquipmentList) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/equipmentList required"})
	}

	rent := model.Rent{
		ID:            uuid.NewString(),
		StartDate:     start,
		EndDate:       end,
		Team:          req.Team,
		Title:         req.Title,
		ApplicantID:   ident.ID,
		ApplicantName: ident.Name,
		Approved:      model.ApprovalPending,
		EquipmentList: req.EquipmentList,
		CombinedDate:  model.CombinedDate(start, end),
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Rents.Create(ctx, rent); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "equipment already rented in an overlapping window"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create rent failed"})
	}
	log.Printf("rent: applied %q by %s (%s)", rent.Title, rent.ApplicantName, rent.ID)
	h.publish(rentEvent(queue.RentEventApplied, rent))
	return c.JSON(http.StatusCreated, echo.Map{"message": "rent applied", "rent": rent})
}

// List: paginated listing, newest start date first. 204 when the page is
// empty.
func (h *RentHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	count, _ := strconv.Atoi(c.QueryParam("count"))
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = 10
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rents, err := h.Rents.List(ctx, page, count)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(rents) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, rents)
}

// Month: rentals overlapping one calendar month. 204 when none exist.
func (h *RentHandler) Month(c echo.Context) error {
	year, err1 := strconv.Atoi(c.QueryParam("year"))
	month, err2 := strconv.Atoi(c.QueryParam("month"))
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "year/month required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rents, err := h.Rents.ListMonth(ctx, year, month)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(rents) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, rents)
}

// GetByID: one rental, 404 when absent.
func (h *RentHandler) GetByID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rent, err := h.Rents.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rent not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, rent)
}

// canMutateRent: equipment admins may touch any rental, everyone else only
// their own.
func canMutateRent(ident middleware.Identity, r model.Rent) bool {
	return ident.HasAuthority(model.AuthorityEquipmentAdmin) || r.ApplicantID == ident.ID
}

// Update: modify a rental. Forbidden once the rental has started (old or
// new start date), and any successful update resets approval to pending.
func (h *RentHandler) Update(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	var req updateRentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rent, err := h.Rents.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rent not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canMutateRent(ident, rent) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the applicant may modify this rent"})
	}

	newStart, newEnd := rent.StartDate, rent.EndDate
	if req.StartDate != nil {
		if newStart, err = parseInstant(*req.StartDate); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate must be RFC3339"})
		}
	}
	if req.EndDate != nil {
		if newEnd, err = parseInstant(*req.EndDate); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "endDate must be RFC3339"})
		}
	}
	if !newStart.Before(newEnd) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate must precede endDate"})
	}
	now := h.now()
	if rent.StartDate.Before(now) || newStart.Before(now) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "rent already started"})
	}

	rent.StartDate, rent.EndDate = newStart, newEnd
	if req.Team != nil {
		rent.Team = *req.Team
	}
	if req.Title != nil {
		rent.Title = *req.Title
	}
	if req.EquipmentList != nil {
		rent.EquipmentList = *req.EquipmentList
	}
	rent.CombinedDate = model.CombinedDate(rent.StartDate, rent.EndDate)

	if err := h.Rents.Update(ctx, rent); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rent not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	log.Printf("rent: updated %q by %s (%s)", rent.Title, ident.ID, rent.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "rent updated"})
}

// Approve: record the approval decision. Forbidden once the rental window
// has already ended.
func (h *RentHandler) Approve(c echo.Context) error {
	var req approveRentReq
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rent, err := h.Rents.GetByID(ctx, req.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rent not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if rent.EndDate.Before(h.now()) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "rent already ended"})
	}

	if err := h.Rents.SetApproved(ctx, req.ID, req.Approved); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rent not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	log.Printf("rent: approval %d for %q (%s)", req.Approved, rent.Title, rent.ID)
	kind := queue.RentEventApproved
	if req.Approved != model.ApprovalApproved {
		kind = queue.RentEventDenied
	}
	h.publish(rentEvent(kind, rent))
	return c.JSON(http.StatusOK, echo.Map{"message": "rent approval updated"})
}

// Delete: remove a rental. Ownership-gated like Update but deliberately
// without a time gate.
func (h *RentHandler) Delete(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	rent, err := h.Rents.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rent not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canMutateRent(ident, rent) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the applicant may delete this rent"})
	}
	if err := h.Rents.Delete(ctx, rent.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	log.Printf("rent: deleted %q by %s (%s)", rent.Title, ident.ID, rent.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "rent deleted"})
}
