package services

import (
	"context"
	"errors"
	"testing"

	"assetverse-http-service/internal/domain/models"
)

func TestRemoveEmployeeClosesAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.hr(t, "hr@acme.io", "Acme")
	emp := f.employee(t, "ana@acme.io")
	stay := f.employee(t, "bo@acme.io")
	laptop := f.asset(t, hr, "Laptop", models.AssetReturnable, 2)
	monitor := f.asset(t, hr, "Monitor", models.AssetReturnable, 1)
	pen := f.asset(t, hr, "Pen", models.AssetNonReturnable, 5)

	f.assign(t, hr, emp, laptop.ID)
	onReturn := f.assign(t, hr, emp, monitor.ID)
	f.assign(t, hr, emp, pen.ID)
	f.assign(t, hr, stay, laptop.ID)
	if _, err := f.returns.InitiateReturn(ctx, emp, onReturn.Assignment.ID); err != nil {
		t.Fatalf("InitiateReturn: %v", err)
	}

	page, err := f.affiliations.ListEmployees(ctx, hr, models.PaginationQuery{})
	if err != nil {
		t.Fatalf("ListEmployees: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("employees = %d, want 2", page.Total)
	}
	var target models.Affiliation
	for _, item := range page.Items {
		if item.EmployeeEmail == emp.Email {
			target = item.Affiliation
			if item.AssetCount != 3 {
				t.Fatalf("asset count = %d, want 3", item.AssetCount)
			}
		}
	}

	other := f.hr(t, "hr@globex.io", "Globex")
	if _, err := f.affiliations.RemoveEmployee(ctx, other, target.ID); !errors.Is(err, ErrAffiliationNotFound) {
		t.Fatalf("remove by other HR err = %v, want ErrAffiliationNotFound", err)
	}

	removed, err := f.affiliations.RemoveEmployee(ctx, hr, target.ID)
	if err != nil {
		t.Fatalf("RemoveEmployee: %v", err)
	}
	if removed.ClosedAssignments != 3 || removed.Restocked != 2 {
		t.Fatalf("removal = %+v, want 3 closed and 2 restocked", removed)
	}
	if n := f.count(t, &models.Assignment{}, "employee_email = ? AND status IN ?", emp.Email, openAssignmentStatuses); n != 0 {
		t.Fatalf("open assignments = %d, want 0", n)
	}
	if n := f.count(t, &models.ReturnRequest{}, "employee_email = ? AND status = ?", emp.Email, models.ReturnPending); n != 0 {
		t.Fatalf("pending returns = %d, want 0", n)
	}
	if got := f.reloadAsset(t, laptop.ID).AvailableQuantity; got != 1 {
		t.Fatalf("laptop available = %d, want 1", got)
	}
	if got := f.reloadAsset(t, monitor.ID).AvailableQuantity; got != 1 {
		t.Fatalf("monitor available = %d, want 1", got)
	}
	if got := f.reloadAsset(t, pen.ID).AvailableQuantity; got != 4 {
		t.Fatalf("pen available = %d, want 4", got)
	}
	if got := f.reloadUser(t, hr.Email).CurrentEP; got != 1 {
		t.Fatalf("current_ep = %d, want 1", got)
	}
	if f.events.count(models.EventAffiliationRemoved) != 1 {
		t.Fatal("expected one affiliation.removed event")
	}
}

func TestListTeamGroupsByCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.hr(t, "hr@acme.io", "Acme")
	globex := f.hr(t, "hr@globex.io", "Globex")
	ana := f.employee(t, "ana@acme.io")
	bo := f.employee(t, "bo@acme.io")

	f.assign(t, acme, ana, f.asset(t, acme, "Laptop", models.AssetReturnable, 5).ID)
	f.assign(t, acme, bo, f.asset(t, acme, "Pen", models.AssetNonReturnable, 5).ID)
	f.assign(t, globex, ana, f.asset(t, globex, "Badge", models.AssetNonReturnable, 5).ID)

	teams, err := f.affiliations.ListTeam(ctx, ana)
	if err != nil {
		t.Fatalf("ListTeam: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(teams))
	}
	sizes := map[string]int{}
	for _, team := range teams {
		sizes[team.CompanyName] = len(team.Members)
		if team.Members[0].Role != string(models.RoleHR) {
			t.Fatalf("first member of %s = %+v, want the HR", team.CompanyName, team.Members[0])
		}
	}
	if sizes["Acme"] != 3 || sizes["Globex"] != 2 {
		t.Fatalf("team sizes = %v", sizes)
	}

	if _, err := f.affiliations.ListTeam(ctx, acme); !errors.Is(err, ErrForbidden) {
		t.Fatalf("hr ListTeam err = %v, want ErrForbidden", err)
	}
}
