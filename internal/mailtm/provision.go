package mailtm

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
)

const provisionAttempts = 3

// ProvisionedAccount bundles a freshly created mailbox with its credentials
// and an already-authenticated session.
type ProvisionedAccount struct {
	Address  string
	Password string
	Session  *Session
}

// ProvisionAccount creates a disposable mailbox on the first active public
// domain and logs into it. Address collisions are retried with a fresh
// username, with a growing pause between attempts.
func (c *Client) ProvisionAccount(ctx context.Context) (*ProvisionedAccount, error) {
	domains, err := c.Domains(ctx)
	if err != nil {
		return nil, err
	}

	var domain string
	for _, d := range domains {
		if d.IsActive && !d.IsPrivate {
			domain = d.Domain
			break
		}
	}
	if domain == "" {
		return nil, &TransportError{Op: "create account", Err: fmt.Errorf("no active public domain offered")}
	}

	password := randomPassword()

	var account *Account
	for attempt := 1; attempt <= provisionAttempts; attempt++ {
		username := randomUsername()
		account, err = c.CreateAccount(ctx, username, domain, password)
		if err == nil {
			break
		}
		c.logger.Warn("account creation failed",
			zap.Int("attempt", attempt),
			zap.String("domain", domain),
			zap.Error(err))
		if attempt < provisionAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 10 * time.Second):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("provision account after %d attempts: %w", provisionAttempts, err)
	}

	session, err := c.Login(ctx, account.Address, password)
	if err != nil {
		return nil, err
	}

	c.logger.Info("provisioned mailbox", zap.String("address", account.Address))
	return &ProvisionedAccount{Address: account.Address, Password: password, Session: session}, nil
}

var usernameWords = []string{
	"swift", "calm", "bright", "bold", "quiet", "sharp",
	"fox", "owl", "wolf", "hawk", "seal", "lynx",
}

func randomUsername() string {
	nano := time.Now().UnixNano()
	adj := usernameWords[nano%6]
	noun := usernameWords[6+(nano/1000)%6]
	return fmt.Sprintf("%s%s%05d", adj, noun, nano%100000)
}

const passwordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%"

func randomPassword() string {
	out := make([]byte, 14)
	for i := range out {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		out[i] = passwordChars[n.Int64()]
	}
	return string(out)
}
