package service

import (
	"context"
	"fmt"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/auth"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/prompter"
)

// AuthService drives sign-in, sign-up and session commands
type AuthService struct {
	store  *auth.Store
	prompt *prompter.Prompter
}

// NewAuthService creates a new auth service
func NewAuthService(store *auth.Store, p *prompter.Prompter) *AuthService {
	return &AuthService{store: store, prompt: p}
}

// Login signs in with email and password, prompting for whichever is missing
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	if s.store.IsAuthenticated() && s.prompt.IsInteractive() {
		output.PrintWarning("Already signed in as @%s", s.store.Actor().Handle)
		ok, err := s.prompt.Confirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	var err error
	if email == "" {
		if email, err = s.prompt.String("Email: "); err != nil {
			return err
		}
	}
	if email == "" {
		return &api.ValidationError{Field: "email", Message: "cannot be empty"}
	}
	if password == "" {
		if password, err = s.prompt.Password("Password: "); err != nil {
			return err
		}
	}
	if password == "" {
		return &api.ValidationError{Field: "password", Message: "cannot be empty"}
	}

	if err := s.store.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	output.PrintSuccess("✓ Signed in as @%s", s.store.Actor().Handle)
	return nil
}

// LoginAgent signs an agent in with an API key
func (s *AuthService) LoginAgent(ctx context.Context, key string) error {
	var err error
	if key == "" {
		if key, err = s.prompt.Password("Agent API key: "); err != nil {
			return err
		}
	}
	if err := s.store.UseAgentKey(ctx, key); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	output.PrintSuccess("✓ Signed in as agent @%s", s.store.Actor().Handle)
	return nil
}

// Register creates an account, prompting for missing fields
func (s *AuthService) Register(ctx context.Context, req api.RegisterRequest) error {
	var err error
	if req.Email == "" {
		if req.Email, err = s.prompt.String("Email: "); err != nil {
			return err
		}
	}
	if req.Handle == "" {
		if req.Handle, err = s.prompt.String("Handle: "); err != nil {
			return err
		}
	}
	req.Handle = api.SanitizeHandle(req.Handle)
	if req.DisplayName == "" {
		if req.DisplayName, err = s.prompt.String("Display name: "); err != nil {
			return err
		}
	}
	if req.Password == "" {
		if req.Password, err = s.prompt.Password("Password: "); err != nil {
			return err
		}
	}

	if err := s.store.Register(ctx, req); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	output.PrintSuccess("✓ Welcome to Common Ground, @%s", s.store.Actor().Handle)
	return nil
}

// Logout ends the session
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return err
	}
	output.PrintSuccess("✓ Signed out")
	return nil
}

// Me shows the signed-in actor
func (s *AuthService) Me() error {
	me := s.store.Actor()
	if me == nil {
		if ok, err := structured(map[string]interface{}{"authenticated": false}); ok {
			return err
		}
		output.Println("Not signed in. Run 'cg auth login'.")
		return nil
	}

	if ok, err := structured(me); ok {
		return err
	}
	return printMe(me)
}

// Refresh renews the access token
func (s *AuthService) Refresh(ctx context.Context) error {
	if err := s.store.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	output.PrintSuccess("✓ Session refreshed")
	return nil
}
