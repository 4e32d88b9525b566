package services

import (
	"context"
	"sync"
	"testing"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/test/testdb"

	"gorm.io/gorm"
)

const testPassword = "Secret1x"

// recorder 记录发布的事件
type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Publish(_ context.Context, event models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	db           *gorm.DB
	cfg          *config.Config
	events       *recorder
	sessions     InterfaceSessionService
	users        InterfaceUserService
	assets       InterfaceAssetService
	requests     InterfaceRequestService
	approvals    InterfaceApprovalService
	returns      InterfaceReturnService
	affiliations InterfaceAffiliationService
	packages     InterfacePackageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	cfg := testdb.Config()
	events := &recorder{}
	notifier := NewNotificationService(events)
	cache := NewRedisService(cfg)
	sessions := NewSessionService(db, cfg, cache)

	return &fixture{
		db:           db,
		cfg:          cfg,
		events:       events,
		sessions:     sessions,
		users:        NewUserService(db, cfg, sessions),
		assets:       NewAssetService(db, cfg),
		requests:     NewRequestService(db, cfg, notifier),
		approvals:    NewApprovalService(db, cfg, notifier),
		returns:      NewReturnService(db, cfg, notifier),
		affiliations: NewAffiliationService(db, cfg, notifier),
		packages:     NewPackageService(db, cfg, cache, sessions, notifier),
	}
}

func (f *fixture) session(t *testing.T, email string) Session {
	t.Helper()
	s, err := f.sessions.Resolve(context.Background(), email, true)
	if err != nil {
		t.Fatalf("resolve session %s: %v", email, err)
	}
	return s
}

func (f *fixture) hr(t *testing.T, email, company string) Session {
	t.Helper()
	_, err := f.users.RegisterHR(context.Background(), RegisterInput{
		Name:        "HR " + company,
		Email:       email,
		Password:    testPassword,
		CompanyName: company,
	})
	if err != nil {
		t.Fatalf("register hr %s: %v", email, err)
	}
	return f.session(t, email)
}

func (f *fixture) employee(t *testing.T, email string) Session {
	t.Helper()
	_, err := f.users.RegisterEmployee(context.Background(), RegisterInput{
		Name:        "Employee " + email,
		Email:       email,
		Password:    testPassword,
		DateOfBirth: "1995-04-12",
	})
	if err != nil {
		t.Fatalf("register employee %s: %v", email, err)
	}
	return f.session(t, email)
}

func (f *fixture) asset(t *testing.T, hr Session, name string, typ models.AssetType, qty int) *models.Asset {
	t.Helper()
	asset, err := f.assets.CreateAsset(context.Background(), hr, AssetInput{Name: name, Type: typ, Quantity: qty})
	if err != nil {
		t.Fatalf("create asset %s: %v", name, err)
	}
	return asset
}

func (f *fixture) submit(t *testing.T, employee Session, assetID uint) *models.AssetRequest {
	t.Helper()
	req, err := f.requests.SubmitRequest(context.Background(), employee, assetID, "")
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	return req
}

// assign 提交并批准一个申请
func (f *fixture) assign(t *testing.T, hr, employee Session, assetID uint) *ApprovalResult {
	t.Helper()
	req := f.submit(t, employee, assetID)
	result, err := f.approvals.Approve(context.Background(), hr, req.ID)
	if err != nil {
		t.Fatalf("approve request %d: %v", req.ID, err)
	}
	return result
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (f *fixture) reloadAsset(t *testing.T, id uint) models.Asset {
	t.Helper()
	var asset models.Asset
	if err := f.db.First(&asset, id).Error; err != nil {
		t.Fatalf("reload asset %d: %v", id, err)
	}
	return asset
}

func (f *fixture) reloadUser(t *testing.T, email string) models.User {
	t.Helper()
	var user models.User
	if err := f.db.Where("email = ?", email).First(&user).Error; err != nil {
		t.Fatalf("reload user %s: %v", email, err)
	}
	return user
}
