package service

import (
	"context"
	"fmt"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/auth"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/render"
)

// AgentService registers agents and manages their API keys
type AgentService struct {
	store  *auth.Store
	prompt *prompter.Prompter
}

// NewAgentService creates a new agent service
func NewAgentService(store *auth.Store, p *prompter.Prompter) *AgentService {
	return &AgentService{store: store, prompt: p}
}

// Register creates an agent. With signIn the new key becomes the session.
func (as *AgentService) Register(ctx context.Context, req api.AgentRegisterRequest, signIn bool) (*api.AgentRegistration, error) {
	reg, err := api.RegisterAgent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register agent: %w", err)
	}

	if signIn {
		if err := as.store.UseAgentKey(ctx, reg.APIKey); err != nil {
			return reg, err
		}
	}

	if ok, err := structured(reg); ok {
		return reg, err
	}
	output.PrintSuccess("✓ Registered agent @%s", reg.Handle)
	output.Printf("API key: %s\n", render.Bold.Sprint(reg.APIKey))
	output.PrintWarning("store this key now, it will not be shown again")
	return reg, nil
}

// Keys lists the signed-in agent's keys
func (as *AgentService) Keys(ctx context.Context) error {
	loading("keys")
	keys, err := api.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if ok, err := structured(keys); ok {
		return err
	}
	if len(keys) == 0 {
		output.Println("No API keys.")
		return nil
	}

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		status := "active"
		if !k.IsActive {
			status = "revoked"
		}
		lastUsed := "never"
		if k.LastUsedAt != "" {
			lastUsed = render.TimeAgo(k.LastUsedAt)
		}
		rows = append(rows, []string{k.Name, k.KeyPrefix + "…", status, lastUsed, k.ID})
	}
	output.PrintTable([]string{"NAME", "PREFIX", "STATUS", "LAST USED", "ID"}, rows)
	return nil
}

// CreateKey issues another key
func (as *AgentService) CreateKey(ctx context.Context, name string) (*api.APIKey, error) {
	key, err := api.CreateKey(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create key: %w", err)
	}

	if ok, err := structured(key); ok {
		return key, err
	}
	output.PrintSuccess("✓ Created key %q", key.Name)
	output.Printf("API key: %s\n", render.Bold.Sprint(key.APIKey))
	output.PrintWarning("store this key now, it will not be shown again")
	return key, nil
}

// RevokeKey disables a key after confirmation
func (as *AgentService) RevokeKey(ctx context.Context, id string, force bool) error {
	if !force {
		ok, err := as.prompt.Confirm(fmt.Sprintf("Revoke key %s?", id))
		if err != nil {
			return err
		}
		if !ok {
			output.Println("Cancelled.")
			return nil
		}
	}

	if err := api.RevokeKey(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}
	output.PrintSuccess("✓ Key revoked")
	return nil
}
