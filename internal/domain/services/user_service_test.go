package services

import (
	"context"
	"errors"
	"testing"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/test/testdb"
)

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
		hr    bool
		want  error
	}{
		{"short password", RegisterInput{Name: "A", Email: "a@x.io", Password: "Ab1"}, false, ErrInvalidInput},
		{"no upper case", RegisterInput{Name: "A", Email: "a@x.io", Password: "secret1"}, false, ErrInvalidInput},
		{"no lower case", RegisterInput{Name: "A", Email: "a@x.io", Password: "SECRET1"}, false, ErrInvalidInput},
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: testPassword}, false, ErrInvalidInput},
		{"missing name", RegisterInput{Email: "a@x.io", Password: testPassword}, false, ErrInvalidInput},
		{"hr without company", RegisterInput{Name: "A", Email: "a@x.io", Password: testPassword}, true, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.hr {
				_, err = f.users.RegisterHR(ctx, tt.input)
			} else {
				_, err = f.users.RegisterEmployee(ctx, tt.input)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegisterHRDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.RegisterHR(ctx, RegisterInput{Name: " Hana ", Email: " HR@Acme.io ", Password: testPassword, CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("RegisterHR: %v", err)
	}
	if user.Email != "hr@acme.io" || user.Name != "Hana" || user.Role != models.RoleHR {
		t.Fatalf("user = %+v", user)
	}
	if user.PackageLimit != 5 || user.CurrentEP != 0 || user.Subscription != "basic" {
		t.Fatalf("package defaults = limit %d ep %d sub %q", user.PackageLimit, user.CurrentEP, user.Subscription)
	}

	if _, err := f.users.RegisterEmployee(ctx, RegisterInput{Name: "Dup", Email: "hr@acme.io", Password: testPassword}); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("duplicate err = %v, want ErrUserAlreadyExists", err)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.employee(t, "ana@acme.io")
	jwtService := NewJWTService(testdb.Config(), f.db)

	result, err := jwtService.Login(ctx, "ANA@acme.io", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := jwtService.ExtractClaims(result.Token)
	if err != nil {
		t.Fatalf("ExtractClaims: %v", err)
	}
	if claims.Email != "ana@acme.io" || claims.Role != models.RoleEmployee {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := jwtService.Login(ctx, "ana@acme.io", "Wrong1x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := jwtService.Login(ctx, "nobody@acme.io", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}
