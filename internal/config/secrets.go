package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretAccessor returns the payload of a secret version.
type SecretAccessor interface {
	Access(ctx context.Context, name string) (string, error)
}

// SecretManager reads secrets from Google Secret Manager.
type SecretManager struct {
	sm      *secretmanager.Client
	project string
}

func NewSecretManager(ctx context.Context, project string) (*SecretManager, error) {
	c, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secretmanager client: %w", err)
	}
	return &SecretManager{sm: c, project: project}, nil
}

func (s *SecretManager) Close() error { return s.sm.Close() }

// Access accepts a full version name or a bare secret id (latest version).
func (s *SecretManager) Access(ctx context.Context, name string) (string, error) {
	full := secretVersionName(s.project, name)
	resp, err := s.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: full})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", full, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("access secret %s: empty payload", full)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

func secretVersionName(project, name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "projects/") {
		return name
	}
	return "projects/" + project + "/secrets/" + name + "/versions/latest"
}

// credentials yang boleh diambil dari Secret Manager lewat <KEY>_SECRET
func (c *Config) secretTargets() map[string]*string {
	return map[string]*string{
		"PAYPAL_CLIENT_SECRET":  &c.PayPal.ClientSecret,
		"STRIPE_SECRET_KEY":     &c.Stripe.SecretKey,
		"COINREMITTER_API_KEY":  &c.Coinremitter.APIKey,
		"COINREMITTER_PASSWORD": &c.Coinremitter.Password,
		"MASTERCARD_PASSWORD":   &c.Mastercard.Password,
	}
}

// PendingSecrets lists credentials that are empty but name a secret.
func (c *Config) PendingSecrets() []string {
	var out []string
	for key, dst := range c.secretTargets() {
		if *dst == "" && os.Getenv(key+"_SECRET") != "" {
			out = append(out, key)
		}
	}
	return out
}

// ResolveSecrets fills empty credentials from <KEY>_SECRET references.
// Values already set in the environment win.
func (c *Config) ResolveSecrets(ctx context.Context, acc SecretAccessor) error {
	targets := c.secretTargets()
	for _, key := range c.PendingSecrets() {
		v, err := acc.Access(ctx, os.Getenv(key+"_SECRET"))
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		*targets[key] = v
	}
	return nil
}
