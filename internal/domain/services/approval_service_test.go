package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"assetverse-http-service/internal/domain/models"
)

func TestApproveCreatesAffiliationOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	emp := f.employee(t, "ana@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 3)
	chair := f.asset(t, hr, "Chair", models.AssetNonReturnable, 3)

	first := f.assign(t, hr, emp, laptop.ID)
	if !first.AffiliationCreated {
		t.Fatal("first approval should create the affiliation")
	}
	second := f.assign(t, hr, emp, chair.ID)
	if second.AffiliationCreated {
		t.Fatal("second approval must reuse the affiliation")
	}

	if n := f.count(t, &models.Affiliation{}, "employee_email = ? AND hr_email = ?", emp.Email, hr.Email); n != 1 {
		t.Fatalf("affiliations = %d, want 1", n)
	}
	if got := f.reloadUser(t, hr.Email).CurrentEP; got != 1 {
		t.Fatalf("current_ep = %d, want 1", got)
	}
	if got := f.reloadAsset(t, laptop.ID).AvailableQuantity; got != 2 {
		t.Fatalf("laptop available = %d, want 2", got)
	}
	if f.events.count(models.EventAffiliationCreated) != 1 {
		t.Fatalf("affiliation.created events = %d, want 1", f.events.count(models.EventAffiliationCreated))
	}

	req, err := f.requests.GetRequest(ctx, emp, first.Request.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if req.Status != models.RequestApproved || req.ApprovalDate == nil {
		t.Fatalf("request = %+v, want approved with approval date", req)
	}
}

func TestApproveReplayReturnsExistingAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	emp := f.employee(t, "ana@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 2)

	first := f.assign(t, hr, emp, laptop.ID)
	again, err := f.approvals.Approve(ctx, hr, first.Request.ID)
	if err != nil {
		t.Fatalf("replayed Approve: %v", err)
	}
	if !again.Replayed || again.Assignment.ID != first.Assignment.ID {
		t.Fatalf("replay = %+v, want existing assignment %d", again, first.Assignment.ID)
	}
	if n := f.count(t, &models.Assignment{}, "request_id = ?", first.Request.ID); n != 1 {
		t.Fatalf("assignments = %d, want 1", n)
	}
	if got := f.reloadAsset(t, laptop.ID).AvailableQuantity; got != 1 {
		t.Fatalf("available = %d, want 1", got)
	}
	if n := f.events.count(models.EventRequestApproved); n != 1 {
		t.Fatalf("request.approved events = %d, want 1", n)
	}
}

func TestApproveLimitReachedWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	pens := f.asset(t, hr, "Pen", models.AssetNonReturnable, 20)

	for i := 0; i < f.cfg.DefaultPackageLimit; i++ {
		emp := f.employee(t, fmt.Sprintf("emp%d@acme.io", i))
		f.assign(t, hr, emp, pens.ID)
	}
	reached, err := f.packages.IsLimitReached(ctx, hr.Email)
	if err != nil || !reached {
		t.Fatalf("IsLimitReached = %v, %v; want true", reached, err)
	}

	late := f.employee(t, "late@acme.io")
	req := f.submit(t, late, pens.ID)
	before := f.reloadAsset(t, pens.ID).AvailableQuantity

	_, err = f.approvals.Approve(ctx, hr, req.ID)
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("Approve err = %v, want ErrLimitReached", err)
	}
	if n := f.count(t, &models.Affiliation{}, "employee_email = ?", late.Email); n != 0 {
		t.Fatalf("affiliations for late employee = %d, want 0", n)
	}
	if n := f.count(t, &models.Assignment{}, "request_id = ?", req.ID); n != 0 {
		t.Fatalf("assignments = %d, want 0", n)
	}
	if got := f.reloadAsset(t, pens.ID).AvailableQuantity; got != before {
		t.Fatalf("available = %d, want %d", got, before)
	}
	stored, _ := f.requests.GetRequest(ctx, late, req.ID)
	if stored.Status != models.RequestPending {
		t.Fatalf("status = %s, want pending", stored.Status)
	}
}

func TestApproveExistingEmployeeAtLimit(t *testing.T) {
	f := newFixture(t)
	hr := f.hr(t, "hr@acme.io", "Acme")
	pens := f.asset(t, hr, "Pen", models.AssetNonReturnable, 20)

	var emps []Session
	for i := 0; i < f.cfg.DefaultPackageLimit; i++ {
		emp := f.employee(t, fmt.Sprintf("emp%d@acme.io", i))
		f.assign(t, hr, emp, pens.ID)
		emps = append(emps, emp)
	}

	// 已关联的员工不占用新名额
	if result := f.assign(t, hr, emps[0], pens.ID); result.AffiliationCreated {
		t.Fatal("existing employee should not create a new affiliation")
	}
}

func TestApproveOutOfStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	a := f.employee(t, "a@acme.io")
	b := f.employee(t, "b@acme.io")
	monitor := f.asset(t, hr, "Monitor", models.AssetReturnable, 1)

	reqA := f.submit(t, a, monitor.ID)
	reqB := f.submit(t, b, monitor.ID)
	if _, err := f.approvals.Approve(ctx, hr, reqA.ID); err != nil {
		t.Fatalf("Approve A: %v", err)
	}
	_, err := f.approvals.Approve(ctx, hr, reqB.ID)
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("Approve B err = %v, want ErrOutOfStock", err)
	}
	if n := f.count(t, &models.Affiliation{}, "employee_email = ?", b.Email); n != 0 {
		t.Fatalf("out-of-stock approval left %d affiliations", n)
	}
	if got := f.reloadAsset(t, monitor.ID).AvailableQuantity; got != 0 {
		t.Fatalf("available = %d, want 0", got)
	}
}

func TestApproveConcurrentSingleAssignment(t *testing.T) {
	f := newFixture(t)
	hr := f.hr(t, "hr@acme.io", "Acme")
	emp := f.employee(t, "ana@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 5)
	req := f.submit(t, emp, laptop.ID)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.approvals.Approve(context.Background(), hr, req.ID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil && !errors.Is(err, ErrConflict) {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	if n := f.count(t, &models.Assignment{}, "request_id = ?", req.ID); n != 1 {
		t.Fatalf("assignments = %d, want 1", n)
	}
	if got := f.reloadAsset(t, laptop.ID).AvailableQuantity; got != 4 {
		t.Fatalf("available = %d, want 4", got)
	}
}

func TestRejectCreatesNoAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	emp := f.employee(t, "ana@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 1)
	req := f.submit(t, emp, laptop.ID)

	rejected, err := f.approvals.Reject(ctx, hr, req.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.RequestRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}
	if n := f.count(t, &models.Assignment{}, "request_id = ?", req.ID); n != 0 {
		t.Fatalf("assignments = %d, want 0", n)
	}
	if got := f.reloadAsset(t, laptop.ID).AvailableQuantity; got != 1 {
		t.Fatalf("available = %d, want 1", got)
	}
	if _, err := f.approvals.Approve(ctx, hr, req.ID); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("approve after reject err = %v, want ErrPreconditionFailed", err)
	}
}

func TestApprovalRequiresOwningHR(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	other := f.hr(t, "hr@globex.io", "Globex")
	emp := f.employee(t, "ana@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 1)
	req := f.submit(t, emp, laptop.ID)

	if _, err := f.approvals.Approve(ctx, other, req.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Approve by other HR err = %v, want ErrForbidden", err)
	}
	if _, err := f.approvals.Approve(ctx, emp, req.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Approve by employee err = %v, want ErrForbidden", err)
	}
	unresolved := Session{Email: "ghost@acme.io", Role: RoleUnresolved}
	if _, err := f.approvals.Reject(ctx, unresolved, req.ID); !errors.Is(err, ErrRoleUnresolved) {
		t.Fatalf("Reject by unresolved err = %v, want ErrRoleUnresolved", err)
	}
	if _, err := f.approvals.Approve(ctx, hr, 9999); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("Approve missing err = %v, want ErrRequestNotFound", err)
	}
}
