package services

import (
	"context"
	"errors"
	"testing"

	"assetverse-http-service/internal/domain/models"
)

func TestSubmitKeepsDuplicatePendingRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	emp := f.employee(t, "ana@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 1)

	first := f.submit(t, emp, laptop.ID)
	second := f.submit(t, emp, laptop.ID)
	if first.ID == second.ID {
		t.Fatal("duplicate submissions must be stored separately")
	}
	if first.HREmail != hr.Email || first.CompanyName != "Acme" || first.AssetType != models.AssetReturnable {
		t.Fatalf("request snapshot = %+v", first)
	}

	page, err := f.requests.ListMyRequests(ctx, emp, RequestQuery{Status: models.RequestPending})
	if err != nil {
		t.Fatalf("ListMyRequests: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("pending total = %d, want 2", page.Total)
	}
	if got := f.reloadAsset(t, laptop.ID).AvailableQuantity; got != 1 {
		t.Fatalf("submission must not reserve stock, available = %d", got)
	}
	if n := f.events.count(models.EventRequestSubmitted); n != 2 {
		t.Fatalf("request.submitted events = %d, want 2", n)
	}
}

func TestSubmitRequiresEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 1)

	tests := []struct {
		name    string
		session Session
		want    error
	}{
		{"guest", Session{Role: RoleGuest}, ErrForbidden},
		{"unresolved", Session{Email: "x@y.io", Role: RoleUnresolved}, ErrRoleUnresolved},
		{"hr", hr, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.requests.SubmitRequest(ctx, tt.session, laptop.ID, ""); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	emp := f.employee(t, "ana@acme.io")
	if _, err := f.requests.SubmitRequest(ctx, emp, 9999, ""); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("missing asset err = %v, want ErrAssetNotFound", err)
	}
}

func TestCancelOnlyWhenPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	emp := f.employee(t, "ana@acme.io")
	other := f.employee(t, "bo@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 2)

	pending := f.submit(t, emp, laptop.ID)
	if _, err := f.requests.CancelRequest(ctx, other, pending.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cancel by other employee err = %v, want ErrForbidden", err)
	}
	cancelled, err := f.requests.CancelRequest(ctx, emp, pending.ID)
	if err != nil {
		t.Fatalf("CancelRequest: %v", err)
	}
	if cancelled.Status != models.RequestCancelled || cancelled.Version != 2 {
		t.Fatalf("cancelled = %+v, want cancelled at version 2", cancelled)
	}
	if _, err := f.requests.CancelRequest(ctx, emp, pending.ID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("second cancel err = %v, want ErrPreconditionFailed", err)
	}

	approved := f.assign(t, hr, emp, laptop.ID)
	if _, err := f.requests.CancelRequest(ctx, emp, approved.Request.ID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("cancel approved err = %v, want ErrPreconditionFailed", err)
	}
}

func TestTransitionRequestDetectsStaleVersion(t *testing.T) {
	f := newFixture(t)
	hr := f.hr(t, "hr@acme.io", "Acme")
	emp := f.employee(t, "ana@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 1)
	req := f.submit(t, emp, laptop.ID)

	stale := *req
	if err := transitionRequest(f.db, req, models.RequestRejected, nil); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	if err := transitionRequest(f.db, &stale, models.RequestCancelled, nil); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale transition err = %v, want ErrConflict", err)
	}
}

func TestListHRRequestsFiltersAndVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	other := f.hr(t, "hr@globex.io", "Globex")
	emp := f.employee(t, "ana@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 5)
	mouse := f.asset(t, hr, "Mouse", models.AssetReturnable, 5)
	stapler := f.asset(t, other, "Stapler", models.AssetNonReturnable, 5)

	f.submit(t, emp, laptop.ID)
	f.submit(t, emp, mouse.ID)
	f.submit(t, emp, stapler.ID)

	page, err := f.requests.ListHRRequests(ctx, hr, RequestQuery{Search: "LAP"})
	if err != nil {
		t.Fatalf("ListHRRequests: %v", err)
	}
	if page.Total != 1 || page.Items[0].AssetName != "Laptop" {
		t.Fatalf("search result = %+v", page)
	}

	page, err = f.requests.ListHRRequests(ctx, hr, RequestQuery{PaginationQuery: models.PaginationQuery{PageSize: 1}})
	if err != nil {
		t.Fatalf("ListHRRequests: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 1 || page.TotalPages != 2 {
		t.Fatalf("page = %+v, want 2 total over 2 pages", page)
	}

	stranger := f.employee(t, "eve@acme.io")
	first := page.Items[0]
	if _, err := f.requests.GetRequest(ctx, stranger, first.ID); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("stranger GetRequest err = %v, want ErrRequestNotFound", err)
	}
	if _, err := f.requests.GetRequest(ctx, hr, first.ID); err != nil {
		t.Fatalf("hr GetRequest: %v", err)
	}

	ecran := f.asset(t, hr, "Écran 27", models.AssetReturnable, 5)
	f.submit(t, emp, ecran.ID)
	page, err = f.requests.ListHRRequests(ctx, hr, RequestQuery{Search: "écran"})
	if err != nil {
		t.Fatalf("ListHRRequests: %v", err)
	}
	if page.Total != 1 || page.Items[0].AssetName != "Écran 27" {
		t.Fatalf("folded search result = %+v", page)
	}
}
