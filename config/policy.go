package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/permissions"
)

// RegistrationPolicy is the YAML-configurable registration ruleset: the
// password policy new credentials must satisfy and the default grants
// applied to fresh identities.
//
// Example:
//
//	password:
//	  min_length: 8
//	  min_digits: 1
//	  min_special: 1
//	defaults:
//	  everyone: [VIEW]
//	  admin_extra: [ADD, CHANGE, DELETE]
type RegistrationPolicy struct {
	Password struct {
		MinLength  int `yaml:"min_length"`
		MinDigits  int `yaml:"min_digits"`
		MinSpecial int `yaml:"min_special"`
	} `yaml:"password"`

	Defaults struct {
		Everyone   []string `yaml:"everyone"`
		AdminExtra []string `yaml:"admin_extra"`
	} `yaml:"defaults"`
}

// DefaultRegistrationPolicy returns the stock policy matching
// identity.DefaultPasswordPolicy and permissions.DefaultGrants.
func DefaultRegistrationPolicy() *RegistrationPolicy {
	p := &RegistrationPolicy{}
	p.Password.MinLength = 8
	p.Password.MinDigits = 1
	p.Password.MinSpecial = 1
	p.Defaults.Everyone = []string{"VIEW"}
	p.Defaults.AdminExtra = []string{"ADD", "CHANGE", "DELETE"}
	return p
}

// LoadRegistrationPolicy reads a RegistrationPolicy from a YAML file.
// A missing file is not an error; it yields the defaults.
func LoadRegistrationPolicy(path string) (*RegistrationPolicy, error) {
	if path == "" {
		return DefaultRegistrationPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRegistrationPolicy(), nil
		}
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}

	policy := DefaultRegistrationPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("policy %s: %w", path, err)
	}
	return policy, nil
}

// Validate checks that the policy's access names parse.
func (p *RegistrationPolicy) Validate() error {
	if p.Password.MinLength <= 0 {
		return fmt.Errorf("password min_length must be positive, got %d", p.Password.MinLength)
	}
	for _, name := range append(append([]string{}, p.Defaults.Everyone...), p.Defaults.AdminExtra...) {
		if _, err := permissions.ParseAccess(name); err != nil {
			return err
		}
	}
	return nil
}

// PasswordPolicy converts the YAML form to the identity package's policy.
func (p *RegistrationPolicy) PasswordPolicy() identity.PasswordPolicy {
	return identity.PasswordPolicy{
		MinLength:  p.Password.MinLength,
		MinDigits:  p.Password.MinDigits,
		MinSpecial: p.Password.MinSpecial,
	}
}

// GrantPolicy converts the YAML form to the permissions package's
// default-grant policy. Access names are normalized through ParseAccess,
// so the abstract aliases are accepted here too.
func (p *RegistrationPolicy) GrantPolicy() (permissions.DefaultGrantPolicy, error) {
	parse := func(names []string) ([]permissions.Access, error) {
		out := make([]permissions.Access, 0, len(names))
		for _, name := range names {
			access, err := permissions.ParseAccess(name)
			if err != nil {
				return nil, err
			}
			out = append(out, access)
		}
		return out, nil
	}

	everyone, err := parse(p.Defaults.Everyone)
	if err != nil {
		return permissions.DefaultGrantPolicy{}, err
	}
	adminExtra, err := parse(p.Defaults.AdminExtra)
	if err != nil {
		return permissions.DefaultGrantPolicy{}, err
	}
	return permissions.DefaultGrantPolicy{
		Everyone:   everyone,
		AdminExtra: adminExtra,
	}, nil
}
