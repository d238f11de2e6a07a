package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

// AdminAccount is a desired administrative identity.
type AdminAccount struct {
	Username string
	Password string
}

// PlanProvisioning returns the desired accounts whose username is not in
// existing, preserving order and dropping duplicates within desired.
func PlanProvisioning(desired []AdminAccount, existing map[string]struct{}) []AdminAccount {
	seen := make(map[string]struct{}, len(desired))
	var missing []AdminAccount
	for _, acc := range desired {
		if _, ok := existing[acc.Username]; ok {
			continue
		}
		if _, ok := seen[acc.Username]; ok {
			continue
		}
		seen[acc.Username] = struct{}{}
		missing = append(missing, acc)
	}
	return missing
}

// Provisioner makes sure a fixed set of admin accounts exists. It is meant to
// run once during startup and is idempotent.
type Provisioner struct {
	credentials *CredentialStore
	log         zerolog.Logger
}

func NewProvisioner(credentials *CredentialStore, log zerolog.Logger) *Provisioner {
	return &Provisioner{credentials: credentials, log: log}
}

// Provision creates the missing accounts and returns how many were created.
func (p *Provisioner) Provision(ctx context.Context, desired []AdminAccount) (int, error) {
	if len(desired) == 0 {
		p.log.Warn().Msg("no admin accounts configured, set SEED_ADMINS to provision one")
		return 0, nil
	}
	existing := make(map[string]struct{}, len(desired))
	for _, acc := range desired {
		_, err := p.credentials.FindByUsername(ctx, acc.Username)
		switch {
		case err == nil:
			existing[acc.Username] = struct{}{}
		case errors.Is(err, domain.ErrUserNotFound):
		default:
			return 0, fmt.Errorf("provision %s: %w", acc.Username, err)
		}
	}

	created := 0
	for _, acc := range PlanProvisioning(desired, existing) {
		_, err := p.credentials.Create(ctx, acc.Username, acc.Password, domain.RoleAdmin)
		if errors.Is(err, domain.ErrUserExists) {
			// another instance won the race
			continue
		}
		if err != nil {
			return created, fmt.Errorf("provision %s: %w", acc.Username, err)
		}
		created++
		p.log.Info().Str("username", acc.Username).Msg("admin account provisioned")
	}
	return created, nil
}
